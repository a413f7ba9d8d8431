package model

import "time"

// DraftStatus is the lifecycle state of a land draft.
type DraftStatus uint8

const (
	DraftPending  DraftStatus = iota // Created by a Patwari
	DraftVerified                    // Verified by a Clerk
	DraftApproved                    // Approved by a Tehsildar, ready to mint
	DraftRejected                    // Rejected by a Tehsildar (terminal)
	DraftMinted                      // Title minted (terminal)
)

func (s DraftStatus) String() string {
	switch s {
	case DraftPending:
		return "PENDING"
	case DraftVerified:
		return "VERIFIED"
	case DraftApproved:
		return "APPROVED"
	case DraftRejected:
		return "REJECTED"
	case DraftMinted:
		return "MINTED"
	default:
		return "UNKNOWN"
	}
}

// LandDraft is an unminted land-record claim.
type LandDraft struct {
	ObjectType      string      `json:"objectType"` // "Draft"
	ID              uint64      `json:"id"`
	Region          string      `json:"region"`
	SubRegion       string      `json:"subRegion"`
	Locality        string      `json:"locality"`
	ParcelID        string      `json:"parcelId"` // Survey/plot number, unique forever
	Area            string      `json:"area"`     // Decimal string, always positive
	LandType        string      `json:"landType"`
	Owner           string      `json:"owner"` // Claimed owner identity
	DocHash         string      `json:"docHash"`
	OwnerApproved   bool        `json:"ownerApproved"`
	Status          DraftStatus `json:"status"`
	CreatedBy       uint64      `json:"createdBy"`  // Official id of the Patwari
	VerifiedBy      uint64      `json:"verifiedBy"` // Official id of the Clerk, 0 if none
	ApprovedBy      uint64      `json:"approvedBy"` // Official id of the Tehsildar, 0 if none
	RejectedBy      uint64      `json:"rejectedBy"`
	RejectionReason string      `json:"rejectionReason"`
	Minted          bool        `json:"minted"`
	TitleID         uint64      `json:"titleId"` // Meaningful only when Minted
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Title is the minted, transferable record of ownership over a parcel.
type Title struct {
	ObjectType     string    `json:"objectType"` // "Title"
	ID             uint64    `json:"id"`
	DraftID        uint64    `json:"draftId"`
	ParcelID       string    `json:"parcelId"`
	Owner          string    `json:"owner"`
	DocHash        string    `json:"docHash"`
	TokenURI       string    `json:"tokenUri"` // ipfs://<docHash>
	MintedBy       string    `json:"mintedBy"` // Identity that triggered the mint
	MintedAt       time.Time `json:"mintedAt"`
	TransferCount  uint64    `json:"transferCount"`
	LastTransferID uint64    `json:"lastTransferId"` // Meaningful only when TransferCount > 0
}

// OfficialActivity aggregates the drafts an official appears on, by the audit
// field that names them.
type OfficialActivity struct {
	OfficialID uint64   `json:"officialId"`
	Created    []uint64 `json:"created"`
	Verified   []uint64 `json:"verified"`
	Approved   []uint64 `json:"approved"`
	Rejected   []uint64 `json:"rejected"`
}
