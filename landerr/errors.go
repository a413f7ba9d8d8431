package landerr

// Authorization
var (
	ErrUnauthorized         = New(CodeUnauthorized, "Unauthorized")
	ErrOfficialInactive     = ErrUnauthorized.Sub("OfficialInactive")
	ErrNotDraftOwner        = ErrUnauthorized.Sub("NotDraftOwner")
	ErrNotTitleOwner        = ErrUnauthorized.Sub("NotTitleOwner")
	ErrNotSeller            = ErrUnauthorized.Sub("NotSeller")
	ErrNotBuyer             = ErrUnauthorized.Sub("NotBuyer")
	ErrNotAWitness          = ErrUnauthorized.Sub("NotAWitness")
	ErrNotRegisteredOwner   = ErrUnauthorized.Sub("NotRegisteredOwner")
	ErrNotRegisteredWitness = ErrUnauthorized.Sub("NotRegisteredWitness")
	ErrNoCallerIdentity     = ErrUnauthorized.Sub("NoCallerIdentity")
)

// State preconditions
var (
	ErrInvalidState         = New(CodeInvalidState, "InvalidState")
	ErrNotBootstrapped      = ErrInvalidState.Sub("NotBootstrapped")
	ErrDraftNotPending      = ErrInvalidState.Sub("DraftNotPending")
	ErrDraftNotVerified     = ErrInvalidState.Sub("DraftNotVerified")
	ErrDraftNotApproved     = ErrInvalidState.Sub("DraftNotApproved")
	ErrDraftNotRejectable   = ErrInvalidState.Sub("DraftNotRejectable")
	ErrAlreadyMinted        = ErrInvalidState.Sub("AlreadyMinted")
	ErrOwnerApprovalMissing = ErrInvalidState.Sub("OwnerApprovalMissing")
	ErrDocumentsMissing     = ErrInvalidState.Sub("DocumentsMissing")
	ErrTransferNotPending   = ErrInvalidState.Sub("TransferNotPending")
	ErrTransferNotVerified  = ErrInvalidState.Sub("TransferNotVerified")
	ErrTransferNotLive      = ErrInvalidState.Sub("TransferNotLive")
	ErrOwnershipMismatch    = ErrInvalidState.Sub("OwnershipMismatch")
)

// Uniqueness conflicts
var (
	ErrConflict               = New(CodeConflict, "Conflict")
	ErrAlreadyRegistered      = ErrConflict.Sub("AlreadyRegistered")
	ErrAlreadyBootstrapped    = ErrConflict.Sub("AlreadyBootstrapped")
	ErrDuplicateParcelID      = ErrConflict.Sub("DuplicateParcelId")
	ErrWitnessAlreadyAdded    = ErrConflict.Sub("WitnessAlreadyAdded")
	ErrWitnessAlreadyApproved = ErrConflict.Sub("WitnessAlreadyApproved")
	ErrAlreadyOwnerApproved   = ErrConflict.Sub("AlreadyOwnerApproved")
)

// Input validation
var (
	ErrInvalidInput              = New(CodeInvalidInput, "InvalidInput")
	ErrInvalidRole               = ErrInvalidInput.Sub("InvalidRole")
	ErrInvalidWorkflowMode       = ErrInvalidInput.Sub("InvalidWorkflowMode")
	ErrZeroIdentity              = ErrInvalidInput.Sub("ZeroIdentity")
	ErrEmptyName                 = ErrInvalidInput.Sub("EmptyName")
	ErrEmptyNationalID           = ErrInvalidInput.Sub("EmptyNationalId")
	ErrEmptyReason               = ErrInvalidInput.Sub("EmptyReason")
	ErrInvalidArea               = ErrInvalidInput.Sub("InvalidArea")
	ErrInvalidNewOwner           = ErrInvalidInput.Sub("InvalidNewOwner")
	ErrInvalidWitness            = ErrInvalidInput.Sub("InvalidWitness")
	ErrOwnerNotRegistered        = ErrInvalidInput.Sub("OwnerNotRegistered")
	ErrInvalidDocumentHash       = ErrInvalidInput.Sub("InvalidDocumentHash")
	ErrInvalidDocumentHashLength = ErrInvalidDocumentHash.Sub("InvalidDocumentHashLength")
	ErrInvalidDocumentHashPrefix = ErrInvalidDocumentHash.Sub("InvalidDocumentHashPrefix")
)

// Domain gates
var (
	ErrGateFailed                   = New(CodeGateFailed, "GateFailed")
	ErrWitnessRequirementNotMet     = ErrGateFailed.Sub("WitnessRequirementNotMet")
	ErrSellerWitnessApprovalPending = ErrWitnessRequirementNotMet.Sub("SellerWitnessApprovalPending")
	ErrBuyerWitnessApprovalPending  = ErrWitnessRequirementNotMet.Sub("BuyerWitnessApprovalPending")
	ErrVerificationFailed           = ErrGateFailed.Sub("VerificationFailed")
	ErrLoanExists                   = ErrVerificationFailed.Sub("LoanExists")
	ErrDisputeExists                = ErrVerificationFailed.Sub("DisputeExists")
	ErrMortgageExists               = ErrVerificationFailed.Sub("MortgageExists")
	ErrTitleNotVerified             = ErrVerificationFailed.Sub("TitleNotVerified")
	ErrDocumentsNotAuthentic        = ErrVerificationFailed.Sub("DocumentsNotAuthentic")
	ErrOutstandingTaxes             = ErrVerificationFailed.Sub("OutstandingTaxes")
	ErrLegalEncumbrances            = ErrVerificationFailed.Sub("LegalEncumbrances")
)

// Not found
var (
	ErrNotFound         = New(CodeNotFound, "NotFound")
	ErrOfficialNotFound = ErrNotFound.Sub("OfficialNotFound")
	ErrOwnerNotFound    = ErrNotFound.Sub("OwnerNotFound")
	ErrWitnessNotFound  = ErrNotFound.Sub("WitnessNotFound")
	ErrDraftNotFound    = ErrNotFound.Sub("DraftNotFound")
	ErrTitleNotFound    = ErrNotFound.Sub("TitleNotFound")
	ErrTransferNotFound = ErrNotFound.Sub("TransferNotFound")
)

// Unauthorized names the capability the caller lacked.
func Unauthorized(role string) *Error {
	return ErrUnauthorized.Withf("requires role %s", role)
}
