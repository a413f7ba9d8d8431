package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every setting, e.g. CHAINCODE_ID.
const EnvPrefix = "CHAINCODE"

// Config is the process configuration of the chaincode binary. Nothing here
// changes ledger-visible behaviour; that lives on the ledger itself.
type Config struct {
	// CCID is the package id the peer knows this chaincode by. Required when
	// ServerAddress is set.
	CCID string
	// ServerAddress switches to chaincode-as-a-service mode when non-empty.
	ServerAddress string
	TLS           TLSConfig
	LogSpec       string
	// MetricsAddress serves /metrics when non-empty.
	MetricsAddress string
}

type TLSConfig struct {
	Disabled     bool
	KeyFile      string
	CertFile     string
	ClientCAFile string
}

// ServerMode reports whether the chaincode runs as an external service
// instead of being launched by the peer.
func (c *Config) ServerMode() bool {
	return c.ServerAddress != ""
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	if !c.ServerMode() {
		return nil
	}
	if c.CCID == "" {
		return errors.New("CHAINCODE_ID is required when CHAINCODE_SERVER_ADDRESS is set")
	}
	if !c.TLS.Disabled && (c.TLS.KeyFile == "" || c.TLS.CertFile == "") {
		return errors.New("CHAINCODE_TLS_KEY_FILE and CHAINCODE_TLS_CERT_FILE are required unless CHAINCODE_TLS_DISABLED is true")
	}
	return nil
}

// Load reads an optional .env file from the working directory and the
// environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit env file. A missing file is not an error,
// and variables already set in the environment win over the file.
func LoadFrom(envFile string) (*Config, error) {
	_ = godotenv.Load(envFile)

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		CCID:          strings.TrimSpace(v.GetString("ID")),
		ServerAddress: strings.TrimSpace(v.GetString("SERVER_ADDRESS")),
		TLS: TLSConfig{
			Disabled:     v.GetBool("TLS_DISABLED"),
			KeyFile:      v.GetString("TLS_KEY_FILE"),
			CertFile:     v.GetString("TLS_CERT_FILE"),
			ClientCAFile: v.GetString("TLS_CLIENT_CA_FILE"),
		},
		LogSpec:        v.GetString("LOG_SPEC"),
		MetricsAddress: strings.TrimSpace(v.GetString("METRICS_ADDRESS")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ID", "")
	v.SetDefault("SERVER_ADDRESS", "")
	v.SetDefault("TLS_DISABLED", true)
	v.SetDefault("TLS_KEY_FILE", "")
	v.SetDefault("TLS_CERT_FILE", "")
	v.SetDefault("TLS_CLIENT_CA_FILE", "")
	v.SetDefault("LOG_SPEC", "info")
	v.SetDefault("METRICS_ADDRESS", "")
}
