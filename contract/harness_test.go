package contract

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/saurabh-7797/landnft/metrics"
	"github.com/saurabh-7797/landnft/model"
)

const (
	admin     = "x509::CN=admin::CN=ca"
	patwari   = "x509::CN=patwari::CN=ca"
	clerk     = "x509::CN=clerk::CN=ca"
	tehsildar = "x509::CN=tehsildar::CN=ca"
	registrar = "x509::CN=registrar::CN=ca"
	seller    = "x509::CN=seller::CN=ca"
	buyer     = "x509::CN=buyer::CN=ca"
	outsider  = "x509::CN=outsider::CN=ca"
)

var (
	validHash  = "Qm" + strings.Repeat("a", 44)
	otherHash  = "Qm" + strings.Repeat("b", 44)
	allFlagsOK = model.VerificationFlags{
		NoLoan:              true,
		NoDispute:           true,
		NoMortgage:          true,
		TitleVerified:       true,
		DocumentsAuthentic:  true,
		NoOutstandingTaxes:  true,
		NoLegalEncumbrances: true,
	}
)

// fakeIdentity stands in for the X.509 client identity of an invoker.
type fakeIdentity struct {
	id string
}

func (f fakeIdentity) GetID() (string, error)    { return f.id, nil }
func (f fakeIdentity) GetMSPID() (string, error) { return "Org1MSP", nil }
func (f fakeIdentity) GetAttributeValue(string) (string, bool, error) {
	return "", false, nil
}
func (f fakeIdentity) AssertAttributeValue(string, string) error { return nil }
func (f fakeIdentity) GetX509Certificate() (*x509.Certificate, error) {
	return nil, nil
}

// pagedStub serves bookmark paging over partial composite keys, which the
// mock stub leaves unimplemented. The bookmark is the first key of the next
// page and is empty once the range is exhausted.
type pagedStub struct {
	*shimtest.MockStub
}

func (p pagedStub) GetStateByPartialCompositeKeyWithPagination(objectType string, attrs []string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *peer.QueryResponseMetadata, error) {
	it, err := p.GetStateByPartialCompositeKey(objectType, attrs)
	if err != nil {
		return nil, nil, err
	}
	defer it.Close()

	page := &kvIterator{}
	next := ""
	for it.HasNext() {
		kv, err := it.Next()
		if err != nil {
			return nil, nil, err
		}
		if kv.Key < bookmark {
			continue
		}
		if int32(len(page.kvs)) == pageSize {
			next = kv.Key
			break
		}
		page.kvs = append(page.kvs, kv)
	}
	return page, &peer.QueryResponseMetadata{FetchedRecordsCount: int32(len(page.kvs)), Bookmark: next}, nil
}

type kvIterator struct {
	kvs []*queryresult.KV
}

func (i *kvIterator) HasNext() bool { return len(i.kvs) > 0 }
func (i *kvIterator) Close() error  { return nil }
func (i *kvIterator) Next() (*queryresult.KV, error) {
	kv := i.kvs[0]
	i.kvs = i.kvs[1:]
	return kv, nil
}

type publishedEvent struct {
	name    string
	payload []byte
}

// registrySuite runs every test against a fresh mock ledger.
type registrySuite struct {
	suite.Suite
	stub      *shimtest.MockStub
	cc        *LandRegistryContract
	metrics   *metrics.Metrics
	txCount   int
	published []publishedEvent
	officials map[string]uint64
}

func (s *registrySuite) newLedger() {
	s.stub = shimtest.NewMockStub("landregistry", nil)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.cc = NewLandRegistryContract(s.metrics)
	s.txCount = 0
	s.published = nil
	s.officials = map[string]uint64{}
}

func (s *registrySuite) ctxFor(identity string) *contractapi.TransactionContext {
	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(s.stub)
	ctx.SetClientIdentity(fakeIdentity{id: identity})
	return ctx
}

// as runs fn as one transaction submitted by identity.
func (s *registrySuite) as(identity string, fn func(ctx contractapi.TransactionContextInterface) error) error {
	s.txCount++
	txID := fmt.Sprintf("tx-%d", s.txCount)
	s.stub.MockTransactionStart(txID)
	err := fn(s.ctxFor(identity))
	s.stub.MockTransactionEnd(txID)
	s.drainEvents()
	return err
}

// query returns a context for reads outside any transaction.
func (s *registrySuite) query() contractapi.TransactionContextInterface {
	return s.ctxFor(outsider)
}

// pagedQuery is query over a stub that supports paginated range reads.
func (s *registrySuite) pagedQuery() contractapi.TransactionContextInterface {
	ctx := s.ctxFor(outsider)
	ctx.SetStub(pagedStub{s.stub})
	return ctx
}

func (s *registrySuite) drainEvents() {
	for {
		select {
		case ev := <-s.stub.ChaincodeEventsChannel:
			s.published = append(s.published, publishedEvent{name: ev.EventName, payload: ev.Payload})
		default:
			return
		}
	}
}

func (s *registrySuite) lastPublished() ([]model.LedgerEvent, string) {
	s.Require().NotEmpty(s.published)
	last := s.published[len(s.published)-1]
	var events []model.LedgerEvent
	s.Require().NoError(json.Unmarshal(last.payload, &events))
	return events, last.name
}

// bootstrap sets up an admin, one official per role and two owners.
func (s *registrySuite) bootstrap(mode model.WorkflowMode) {
	s.Require().NoError(s.as(admin, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.BootstrapLedger(ctx, string(mode))
	}))
	for identity, role := range map[string]model.Role{
		patwari:   model.RolePatwari,
		clerk:     model.RoleClerk,
		tehsildar: model.RoleTehsildar,
		registrar: model.RoleRegistrar,
	} {
		s.officials[identity] = s.registerOfficial(identity, string(role))
	}
	s.registerOwner(seller, "Seller")
	s.registerOwner(buyer, "Buyer")
}

func (s *registrySuite) registerOfficial(identity, role string) uint64 {
	var id uint64
	s.Require().NoError(s.as(admin, func(ctx contractapi.TransactionContextInterface) error {
		var err error
		id, err = s.cc.RegisterOfficial(ctx, identity, role, validHash, "NID-"+role)
		return err
	}))
	return id
}

func (s *registrySuite) registerOwner(identity, name string) {
	s.Require().NoError(s.as(identity, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.RegisterOwner(ctx, name, "+91-0000", "NID-"+name, validHash)
	}))
}

func (s *registrySuite) createDraft(parcelID, owner string) (uint64, error) {
	var id uint64
	err := s.as(patwari, func(ctx contractapi.TransactionContextInterface) error {
		var err error
		id, err = s.cc.CreateLandDraft(ctx, "Punjab", "Ludhiana", "Khanna", parcelID, "1000", "AGRICULTURAL", owner, validHash)
		return err
	})
	return id, err
}

func (s *registrySuite) mustCreateDraft(parcelID, owner string) uint64 {
	id, err := s.createDraft(parcelID, owner)
	s.Require().NoError(err)
	return id
}

// mintTo drives a draft through the multi-step flow and returns the title id.
func (s *registrySuite) mintTo(parcelID, owner string) uint64 {
	draftID := s.mustCreateDraft(parcelID, owner)
	s.Require().NoError(s.as(owner, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.ApproveDraftAsOwner(ctx, draftID)
	}))
	s.Require().NoError(s.as(clerk, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.VerifyDraftAsClerk(ctx, draftID)
	}))
	s.Require().NoError(s.as(tehsildar, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.ApproveDraftAsTehsildar(ctx, draftID)
	}))
	var titleID uint64
	s.Require().NoError(s.as(registrar, func(ctx contractapi.TransactionContextInterface) error {
		var err error
		titleID, err = s.cc.MintTitle(ctx, draftID)
		return err
	}))
	return titleID
}

func (s *registrySuite) initiate(titleID uint64, from, to string, requireSeller, requireBuyer bool) (uint64, error) {
	var id uint64
	err := s.as(from, func(ctx contractapi.TransactionContextInterface) error {
		var err error
		id, err = s.cc.InitiateTransfer(ctx, titleID, to, "12 Mall Road", "RESIDENTIAL", otherHash, requireSeller, requireBuyer)
		return err
	})
	return id, err
}

func (s *registrySuite) mustInitiate(titleID uint64, from, to string, requireSeller, requireBuyer bool) uint64 {
	id, err := s.initiate(titleID, from, to, requireSeller, requireBuyer)
	s.Require().NoError(err)
	return id
}

func (s *registrySuite) verifyTransfer(transferID uint64, flags model.VerificationFlags) error {
	return s.as(clerk, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.VerifyTransfer(ctx, transferID, flags)
	})
}

func (s *registrySuite) getDraft(id uint64) *model.LandDraft {
	d, err := s.cc.GetDraft(s.query(), id)
	s.Require().NoError(err)
	return d
}

func (s *registrySuite) getTransfer(id uint64) *model.TransferRequest {
	t, err := s.cc.GetTransfer(s.query(), id)
	s.Require().NoError(err)
	return t
}

func (s *registrySuite) getOwner(identity string) *model.Owner {
	o, err := s.cc.GetOwner(s.query(), identity)
	s.Require().NoError(err)
	return o
}

func (s *registrySuite) getTitle(id uint64) *model.Title {
	t, err := s.cc.GetTitle(s.query(), id)
	s.Require().NoError(err)
	return t
}

// putRaw writes a record straight to the mock ledger, bypassing the contract.
func (s *registrySuite) putRaw(objectType string, attrs []string, v any) {
	k, err := s.stub.CreateCompositeKey(objectType, attrs)
	s.Require().NoError(err)
	b, err := json.Marshal(v)
	s.Require().NoError(err)
	s.stub.MockTransactionStart("raw")
	s.Require().NoError(s.stub.PutState(k, b))
	s.stub.MockTransactionEnd("raw")
}

func (s *registrySuite) counter(name string) string {
	k, err := s.stub.CreateCompositeKey(counterObjectType, []string{name})
	s.Require().NoError(err)
	b, err := s.stub.GetState(k)
	s.Require().NoError(err)
	return string(b)
}
