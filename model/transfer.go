package model

import "time"

// TransferStatus is the lifecycle state of a transfer request.
type TransferStatus uint8

const (
	TransferPending   TransferStatus = iota // Initiated by the current owner
	TransferVerified                        // Verified by a Clerk
	TransferApproved                        // Approved by a Tehsildar
	TransferRejected                        // Rejected by a Tehsildar (terminal)
	TransferCompleted                       // Ownership handed over (terminal)
)

func (s TransferStatus) String() string {
	switch s {
	case TransferPending:
		return "PENDING"
	case TransferVerified:
		return "VERIFIED"
	case TransferApproved:
		return "APPROVED"
	case TransferRejected:
		return "REJECTED"
	case TransferCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// VerificationFlags are the legal and financial checks a Clerk attests to.
// All seven must be true for a transfer to be verified.
type VerificationFlags struct {
	NoLoan              bool `json:"noLoan"`
	NoDispute           bool `json:"noDispute"`
	NoMortgage          bool `json:"noMortgage"`
	TitleVerified       bool `json:"titleVerified"`
	DocumentsAuthentic  bool `json:"documentsAuthentic"`
	NoOutstandingTaxes  bool `json:"noOutstandingTaxes"`
	NoLegalEncumbrances bool `json:"noLegalEncumbrances"`
}

// WitnessSide tells which party named a witness.
type WitnessSide string

const (
	SellerSide WitnessSide = "SELLER"
	BuyerSide  WitnessSide = "BUYER"
)

// TransferRequest moves a title from its current owner to a new owner.
// Witness approvals are stored separately as WitnessApproval records.
type TransferRequest struct {
	ObjectType           string            `json:"objectType"` // "Transfer"
	ID                   uint64            `json:"id"`
	TitleID              uint64            `json:"titleId"`
	CurrentOwner         string            `json:"currentOwner"`
	NewOwner             string            `json:"newOwner"`
	PropertyAddress      string            `json:"propertyAddress"`
	PropertyType         string            `json:"propertyType"`
	DocHash              string            `json:"docHash"`
	SellerWitnesses      []string          `json:"sellerWitnesses"`
	BuyerWitnesses       []string          `json:"buyerWitnesses"`
	RequireSellerWitness bool              `json:"requireSellerWitness"`
	RequireBuyerWitness  bool              `json:"requireBuyerWitness"`
	Flags                VerificationFlags `json:"flags"`
	ClerkVerified        bool              `json:"clerkVerified"`
	TehsildarVerified    bool              `json:"tehsildarVerified"`
	Status               TransferStatus    `json:"status"`
	VerifiedBy           uint64            `json:"verifiedBy"`
	ApprovedBy           uint64            `json:"approvedBy"`
	RejectedBy           uint64            `json:"rejectedBy"`
	RejectionReason      string            `json:"rejectionReason"`
	InitiatedAt          time.Time         `json:"initiatedAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
	CompletedAt          time.Time         `json:"completedAt"`
	Superseded           bool              `json:"superseded"`   // A later request for the title replaced this one
	SupersededBy         uint64            `json:"supersededBy"` // Meaningful only when Superseded
}

// WitnessApproval records that one named witness approved one transfer.
// Approvals are never withdrawn.
type WitnessApproval struct {
	ObjectType string      `json:"objectType"` // "WitnessApproval"
	TransferID uint64      `json:"transferId"`
	Witness    string      `json:"witness"`
	Side       WitnessSide `json:"side"`
	Approved   bool        `json:"approved"`
	ApprovedAt time.Time   `json:"approvedAt"`
}
