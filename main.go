package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saurabh-7797/landnft/config"
	"github.com/saurabh-7797/landnft/contract"
	"github.com/saurabh-7797/landnft/metrics"
)

var logger = flogging.MustGetLogger("landregistry.main")

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Error loading configuration: " + err.Error())
	}
	flogging.ActivateSpec(cfg.LogSpec)

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.MetricsAddress != "" {
		startMetricsServer(cfg.MetricsAddress)
	}

	cc, err := contractapi.NewChaincode(contract.NewLandRegistryContract(m))
	if err != nil {
		panic("Error creating LandRegistryContract: " + err.Error())
	}

	if !cfg.ServerMode() {
		if err := cc.Start(); err != nil {
			panic("Error starting chaincode: " + err.Error())
		}
		return
	}

	tlsProps, err := tlsProperties(cfg.TLS)
	if err != nil {
		panic("Error reading TLS material: " + err.Error())
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.CCID,
		Address:  cfg.ServerAddress,
		CC:       cc,
		TLSProps: tlsProps,
	}
	logger.Infof("Starting chaincode server %s on %s", cfg.CCID, cfg.ServerAddress)
	if err := server.Start(); err != nil {
		panic("Error starting chaincode server: " + err.Error())
	}
}

func newMetricsServer(addr string) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func startMetricsServer(addr string) {
	srv := newMetricsServer(addr)
	logger.Infof("Starting metric server on %s", addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Metric server stopped: %v", err)
		}
	}()
}

func tlsProperties(c config.TLSConfig) (shim.TLSProperties, error) {
	if c.Disabled {
		return shim.TLSProperties{Disabled: true}, nil
	}
	key, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return shim.TLSProperties{}, err
	}
	cert, err := os.ReadFile(c.CertFile)
	if err != nil {
		return shim.TLSProperties{}, err
	}
	props := shim.TLSProperties{Key: key, Cert: cert}
	if c.ClientCAFile != "" {
		ca, err := os.ReadFile(c.ClientCAFile)
		if err != nil {
			return shim.TLSProperties{}, err
		}
		props.ClientCACerts = ca
	}
	return props, nil
}
