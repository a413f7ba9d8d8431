package model

// Input shapes validated with go-playground/validator before any ledger read.
// "notblank" rejects whitespace-only strings; "dochash" enforces the 46-char
// Qm-prefixed content hash.

type OfficialInput struct {
	Identity      string `validate:"notblank"`
	Role          string `validate:"notblank"`
	DocHash       string `validate:"dochash"`
	NationalIDRef string `validate:"max=256"`
}

type OwnerInput struct {
	Name       string `validate:"notblank,max=256"`
	Contact    string `validate:"max=256"`
	NationalID string `validate:"notblank,max=256"`
	DocHash    string `validate:"dochash"`
}

type OwnerProfileInput struct {
	Name    string `validate:"notblank,max=256"`
	Contact string `validate:"max=256"`
	DocHash string `validate:"dochash"`
}

type WitnessInput struct {
	Name     string `validate:"notblank,max=256"`
	Contact  string `validate:"max=256"`
	Relation string `validate:"max=256"`
}

type DraftInput struct {
	Region    string `validate:"notblank,max=256"`
	SubRegion string `validate:"notblank,max=256"`
	Locality  string `validate:"notblank,max=256"`
	ParcelID  string `validate:"notblank,max=256"`
	Area      string `validate:"notblank,max=32"`
	LandType  string `validate:"notblank,max=256"`
	Owner     string `validate:"notblank"`
	DocHash   string `validate:"dochash"`
}

type TransferInput struct {
	NewOwner        string `validate:"notblank"`
	PropertyAddress string `validate:"notblank,max=1024"`
	PropertyType    string `validate:"notblank,max=256"`
	DocHash         string `validate:"dochash"`
}
