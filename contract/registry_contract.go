package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"

	"github.com/saurabh-7797/landnft/metrics"
)

var logger = flogging.MustGetLogger("landregistry.contract")

// Object types for composite keys, also stored as 'objectType' for CouchDB queries.
const (
	officialObjectType        = "Official"           // Attribute: zero-padded official id.
	officialByIdentityType    = "OfficialByIdentity" // Maps identity to official id.
	ownerObjectType           = "Owner"              // Attribute: identity.
	witnessObjectType         = "Witness"            // Attribute: identity.
	registeredObjectType      = "Registered"         // Maps identity to its ActorKind.
	capabilityObjectType      = "Capability"         // Attributes: identity, role.
	draftObjectType           = "Draft"              // Attribute: zero-padded draft id.
	officialDraftObjectType   = "OfficialDraft"      // Attributes: official id, action, draft id.
	parcelObjectType          = "Parcel"             // Maps parcel id to draft id, never released.
	titleObjectType           = "Title"              // Attribute: zero-padded title id.
	transferObjectType        = "Transfer"           // Attribute: zero-padded transfer id.
	witnessApprovalObjectType = "WitnessApproval"    // Attributes: transfer id, witness identity.
	liveTransferObjectType    = "LiveTransfer"       // Maps title id to its live transfer id.
	counterObjectType         = "Counter"            // Attribute: counter name.
	settingsObjectType        = "Settings"           // Singleton.
	eventObjectType           = "Event"              // Attribute: zero-padded event sequence.
)

// Counter names and their first values.
const (
	draftCounter    = "draft"
	titleCounter    = "title"
	transferCounter = "transfer"
	officialCounter = "official"
	eventCounter    = "event"

	firstOfficialID = 1
)

const (
	tokenURIPrefix     = "ipfs://"
	maxReasonLength    = 512
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
)

// LandRegistryContract implements land registration and title transfer.
// @contract:LandRegistryContract
type LandRegistryContract struct {
	contractapi.Contract
	metrics *metrics.Metrics
}

// NewLandRegistryContract wires the contract with optional metrics; m may be nil.
func NewLandRegistryContract(m *metrics.Metrics) *LandRegistryContract {
	c := &LandRegistryContract{metrics: m}
	c.Name = "LandRegistryContract"
	c.BeforeTransaction = c.beforeTransaction
	c.AfterTransaction = c.afterTransaction
	return c
}

// Instantiate is called during chaincode instantiation.
func (c *LandRegistryContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("LandRegistryContract Instantiated/Upgraded")
}
