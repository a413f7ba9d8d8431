// File: model/identities.go
package model

import "time"

// Role is a capability an identity can hold.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RolePatwari   Role = "PATWARI"
	RoleClerk     Role = "CLERK"
	RoleTehsildar Role = "TEHSILDAR"
	RoleRegistrar Role = "REGISTRAR"
	RoleWitness   Role = "WITNESS"
)

// OfficialRoles are the roles an Admin may assign through RegisterOfficial.
var OfficialRoles = map[Role]bool{
	RolePatwari:   true,
	RoleClerk:     true,
	RoleTehsildar: true,
	RoleRegistrar: true,
}

// ActorKind is the single actor category an identity is registered as.
type ActorKind string

const (
	ActorOwner    ActorKind = "OWNER"
	ActorOfficial ActorKind = "OFFICIAL"
	ActorWitness  ActorKind = "WITNESS"
)

// Official is a government functionary registered by an Admin.
type Official struct {
	ObjectType    string    `json:"objectType"`    // "Official"
	ID            uint64    `json:"id"`            // Starts at 1; 0 means "not an official"
	Identity      string    `json:"identity"`      // Caller identity (X.509 id)
	Role          Role      `json:"role"`          // PATWARI, CLERK, TEHSILDAR or REGISTRAR
	DocHash       string    `json:"docHash"`       // Content hash of supporting documents
	NationalIDRef string    `json:"nationalIdRef"` // Reference to the official's national id
	Active        bool      `json:"active"`        // Inactive officials cannot act in their role
	RegisteredBy  string    `json:"registeredBy"`  // Admin identity that registered this official
	RegisteredAt  time.Time `json:"registeredAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Owner is a self-registered landowner and their history.
type Owner struct {
	ObjectType   string    `json:"objectType"` // "Owner"
	Identity     string    `json:"identity"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact"`
	NationalID   string    `json:"nationalId"`
	DocHash      string    `json:"docHash"`
	RegisteredAt time.Time `json:"registeredAt"`
	LastActivity time.Time `json:"lastActivity"`
	TitleIDs     []uint64  `json:"titleIds"`    // Titles currently owned; order carries no meaning
	DraftIDs     []uint64  `json:"draftIds"`    // Drafts this owner is or was named on
	TransferIDs  []uint64  `json:"transferIds"` // Transfers this owner is a party to
}

// Witness is a self-registered witness and the transfers they approved.
type Witness struct {
	ObjectType           string    `json:"objectType"` // "Witness"
	Identity             string    `json:"identity"`
	Name                 string    `json:"name"`
	Contact              string    `json:"contact"`
	Relation             string    `json:"relation"` // Relation to the property or parties
	WitnessedTitleIDs    []uint64  `json:"witnessedTitleIds"`
	WitnessedTransferIDs []uint64  `json:"witnessedTransferIds"`
	RegisteredAt         time.Time `json:"registeredAt"`
	LastActivity         time.Time `json:"lastActivity"`
}

// WorkflowMode selects how draft approval reaches minting. It is fixed for
// the lifetime of a ledger at bootstrap.
type WorkflowMode string

const (
	// WorkflowMultiStep requires owner approval, Clerk verification,
	// Tehsildar approval and an explicit Registrar mint.
	WorkflowMultiStep WorkflowMode = "MULTI_STEP"
	// WorkflowSingleStep mints the title as soon as the owner approves.
	WorkflowSingleStep WorkflowMode = "SINGLE_STEP"
)

// LedgerSettings is written once by BootstrapLedger.
type LedgerSettings struct {
	ObjectType     string       `json:"objectType"` // "Settings"
	WorkflowMode   WorkflowMode `json:"workflowMode"`
	BootstrappedBy string       `json:"bootstrappedBy"`
	BootstrappedAt time.Time    `json:"bootstrappedAt"`
}
