package contract

import (
	"strconv"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

func (c *LandRegistryContract) getTransfer(tx *ledgerTx, transferID uint64) (*model.TransferRequest, error) {
	k, err := tx.key(transferObjectType, idAttr(transferID))
	if err != nil {
		return nil, err
	}
	var t model.TransferRequest
	found, err := tx.getJSON(k, &t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, landerr.ErrTransferNotFound.Withf("transfer %d", transferID)
	}
	return &t, nil
}

func (c *LandRegistryContract) putTransfer(tx *ledgerTx, t *model.TransferRequest) error {
	k, err := tx.key(transferObjectType, idAttr(t.ID))
	if err != nil {
		return err
	}
	return tx.putJSON(k, t)
}

func transferRefs(t *model.TransferRequest) map[string]string {
	return map[string]string{
		"transferId":   strconv.FormatUint(t.ID, 10),
		"titleId":      strconv.FormatUint(t.TitleID, 10),
		"currentOwner": t.CurrentOwner,
		"newOwner":     t.NewOwner,
	}
}

// liveTransferID returns the id of the live transfer for a title, if any.
func (c *LandRegistryContract) liveTransferID(tx *ledgerTx, titleID uint64) (uint64, bool, error) {
	k, err := tx.key(liveTransferObjectType, idAttr(titleID))
	if err != nil {
		return 0, false, err
	}
	b, err := tx.getState(k)
	if err != nil || b == nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (c *LandRegistryContract) setLiveTransfer(tx *ledgerTx, titleID, transferID uint64) error {
	k, err := tx.key(liveTransferObjectType, idAttr(titleID))
	if err != nil {
		return err
	}
	tx.putState(k, []byte(strconv.FormatUint(transferID, 10)))
	return nil
}

// clearLiveTransfer drops the live pointer of t's title if it still names t.
func (c *LandRegistryContract) clearLiveTransfer(tx *ledgerTx, t *model.TransferRequest) error {
	live, ok, err := c.liveTransferID(tx, t.TitleID)
	if err != nil || !ok || live != t.ID {
		return err
	}
	k, err := tx.key(liveTransferObjectType, idAttr(t.TitleID))
	if err != nil {
		return err
	}
	tx.delState(k)
	return nil
}

// requireLive fails unless t is the most recently initiated transfer of its title.
func (c *LandRegistryContract) requireLive(tx *ledgerTx, t *model.TransferRequest) error {
	if t.Superseded {
		return landerr.ErrTransferNotLive.Withf("transfer %d was superseded by transfer %d", t.ID, t.SupersededBy)
	}
	live, ok, err := c.liveTransferID(tx, t.TitleID)
	if err != nil {
		return err
	}
	if !ok || live != t.ID {
		return landerr.ErrTransferNotLive.Withf("transfer %d is not the live request for title %d", t.ID, t.TitleID)
	}
	return nil
}

// getPendingTransfer loads a transfer that still accepts witness operations.
func (c *LandRegistryContract) getPendingTransfer(tx *ledgerTx, transferID uint64) (*model.TransferRequest, error) {
	t, err := c.getTransfer(tx, transferID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TransferPending {
		return nil, landerr.ErrTransferNotPending.Withf("transfer %d is %s", transferID, t.Status)
	}
	if err := c.requireLive(tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// InitiateTransfer opens a PENDING transfer of a title owned by the caller to
// a registered owner. The new request supersedes any earlier live request for
// the title. Returns the new transfer id.
func (c *LandRegistryContract) InitiateTransfer(ctx contractapi.TransactionContextInterface, titleID uint64, newOwner, propertyAddress, propertyType, docHash string, requireSellerWitness, requireBuyerWitness bool) (uint64, error) {
	var transferID uint64
	err := c.runInTx(ctx, "InitiateTransfer", func(tx *ledgerTx) error {
		title, err := c.getTitle(tx, titleID)
		if err != nil {
			return err
		}
		if title.Owner != tx.caller {
			return landerr.ErrNotTitleOwner.Withf("title %d", titleID)
		}
		in := model.TransferInput{
			NewOwner:        strings.TrimSpace(newOwner),
			PropertyAddress: strings.TrimSpace(propertyAddress),
			PropertyType:    strings.TrimSpace(propertyType),
			DocHash:         docHash,
		}
		if err := validateInput(in); err != nil {
			return err
		}
		if in.NewOwner == tx.caller {
			return landerr.ErrInvalidNewOwner.Withf("cannot transfer title %d to its current owner", titleID)
		}
		buyer, err := c.requireRegisteredOwner(tx, in.NewOwner, landerr.ErrOwnerNotRegistered)
		if err != nil {
			return err
		}
		seller, err := c.getOwner(tx, tx.caller)
		if err != nil {
			return err
		}

		id, err := tx.nextID(transferCounter, 0)
		if err != nil {
			return err
		}
		t := &model.TransferRequest{
			ObjectType:           transferObjectType,
			ID:                   id,
			TitleID:              titleID,
			CurrentOwner:         tx.caller,
			NewOwner:             in.NewOwner,
			PropertyAddress:      in.PropertyAddress,
			PropertyType:         in.PropertyType,
			DocHash:              in.DocHash,
			SellerWitnesses:      []string{},
			BuyerWitnesses:       []string{},
			RequireSellerWitness: requireSellerWitness,
			RequireBuyerWitness:  requireBuyerWitness,
			Status:               model.TransferPending,
			InitiatedAt:          tx.now,
			UpdatedAt:            tx.now,
		}
		if err := c.putTransfer(tx, t); err != nil {
			return err
		}

		prev, hadLive, err := c.liveTransferID(tx, titleID)
		if err != nil {
			return err
		}
		if hadLive {
			old, err := c.getTransfer(tx, prev)
			if err != nil {
				return err
			}
			old.Superseded = true
			old.SupersededBy = id
			old.UpdatedAt = tx.now
			if err := c.putTransfer(tx, old); err != nil {
				return err
			}
		}
		if err := c.setLiveTransfer(tx, titleID, id); err != nil {
			return err
		}

		appendTransferRef(seller, id)
		seller.LastActivity = tx.now
		appendTransferRef(buyer, id)
		buyer.LastActivity = tx.now
		if err := c.putOwner(tx, seller); err != nil {
			return err
		}
		if err := c.putOwner(tx, buyer); err != nil {
			return err
		}

		if hadLive {
			refs := map[string]string{"transferId": strconv.FormatUint(prev, 10), "titleId": strconv.FormatUint(titleID, 10), "supersededBy": strconv.FormatUint(id, 10)}
			if err := tx.emit("TransferSuperseded", refs, ""); err != nil {
				return err
			}
		}
		if err := tx.emit("TransferInitiated", transferRefs(t), ""); err != nil {
			return err
		}
		logger.Infof("InitiateTransfer: transfer %d of title %d from '%s' to '%s' initiated.", id, titleID, tx.caller, in.NewOwner)
		transferID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return transferID, nil
}

// UpdateWitnessRequirements changes which witness sides must approve before
// verification.
func (c *LandRegistryContract) UpdateWitnessRequirements(ctx contractapi.TransactionContextInterface, transferID uint64, requireSeller, requireBuyer bool) error {
	return c.runInTx(ctx, "UpdateWitnessRequirements", func(tx *ledgerTx) error {
		t, err := c.getTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if t.CurrentOwner != tx.caller {
			return landerr.ErrNotSeller.Withf("transfer %d", transferID)
		}
		if t, err = c.getPendingTransfer(tx, transferID); err != nil {
			return err
		}
		t.RequireSellerWitness = requireSeller
		t.RequireBuyerWitness = requireBuyer
		t.UpdatedAt = tx.now
		if err := c.putTransfer(tx, t); err != nil {
			return err
		}
		refs := transferRefs(t)
		refs["requireSeller"] = strconv.FormatBool(requireSeller)
		refs["requireBuyer"] = strconv.FormatBool(requireBuyer)
		if err := tx.emit("WitnessRequirementsUpdated", refs, ""); err != nil {
			return err
		}
		logger.Infof("UpdateWitnessRequirements: transfer %d now requires seller=%t buyer=%t.", transferID, requireSeller, requireBuyer)
		return nil
	})
}

// AddSellerWitness names a witness on the seller's side. Seller only.
func (c *LandRegistryContract) AddSellerWitness(ctx contractapi.TransactionContextInterface, transferID uint64, witness string) error {
	return c.runInTx(ctx, "AddSellerWitness", func(tx *ledgerTx) error {
		return c.addWitness(tx, transferID, witness, model.SellerSide)
	})
}

// AddBuyerWitness names a witness on the buyer's side. Buyer only.
func (c *LandRegistryContract) AddBuyerWitness(ctx contractapi.TransactionContextInterface, transferID uint64, witness string) error {
	return c.runInTx(ctx, "AddBuyerWitness", func(tx *ledgerTx) error {
		return c.addWitness(tx, transferID, witness, model.BuyerSide)
	})
}

func (c *LandRegistryContract) addWitness(tx *ledgerTx, transferID uint64, witness string, side model.WitnessSide) error {
	t, err := c.getTransfer(tx, transferID)
	if err != nil {
		return err
	}
	if side == model.SellerSide && t.CurrentOwner != tx.caller {
		return landerr.ErrNotSeller.Withf("transfer %d", transferID)
	}
	if side == model.BuyerSide && t.NewOwner != tx.caller {
		return landerr.ErrNotBuyer.Withf("transfer %d", transferID)
	}
	if t, err = c.getPendingTransfer(tx, transferID); err != nil {
		return err
	}

	witness = strings.TrimSpace(witness)
	if witness == "" {
		return landerr.ErrZeroIdentity.Withf("witness cannot be empty")
	}
	if witness == t.CurrentOwner || witness == t.NewOwner {
		return landerr.ErrInvalidWitness.Withf("'%s' is a party to transfer %d", witness, transferID)
	}
	for _, list := range [][]string{t.SellerWitnesses, t.BuyerWitnesses} {
		for _, w := range list {
			if w == witness {
				return landerr.ErrWitnessAlreadyAdded.Withf("'%s' on transfer %d", witness, transferID)
			}
		}
	}

	if side == model.SellerSide {
		t.SellerWitnesses = append(t.SellerWitnesses, witness)
	} else {
		t.BuyerWitnesses = append(t.BuyerWitnesses, witness)
	}
	t.UpdatedAt = tx.now
	if err := c.putTransfer(tx, t); err != nil {
		return err
	}
	refs := transferRefs(t)
	refs["witness"] = witness
	refs["side"] = string(side)
	if err := tx.emit("WitnessAdded", refs, ""); err != nil {
		return err
	}
	logger.Infof("addWitness: %s witness '%s' added to transfer %d.", side, witness, transferID)
	return nil
}

// ApproveAsSellerWitness records the caller's approval as a named seller witness.
func (c *LandRegistryContract) ApproveAsSellerWitness(ctx contractapi.TransactionContextInterface, transferID uint64) error {
	return c.runInTx(ctx, "ApproveAsSellerWitness", func(tx *ledgerTx) error {
		return c.approveAsWitness(tx, transferID, model.SellerSide)
	})
}

// ApproveAsBuyerWitness records the caller's approval as a named buyer witness.
func (c *LandRegistryContract) ApproveAsBuyerWitness(ctx contractapi.TransactionContextInterface, transferID uint64) error {
	return c.runInTx(ctx, "ApproveAsBuyerWitness", func(tx *ledgerTx) error {
		return c.approveAsWitness(tx, transferID, model.BuyerSide)
	})
}

func (c *LandRegistryContract) approveAsWitness(tx *ledgerTx, transferID uint64, side model.WitnessSide) error {
	t, err := c.getTransfer(tx, transferID)
	if err != nil {
		return err
	}
	list := t.SellerWitnesses
	if side == model.BuyerSide {
		list = t.BuyerWitnesses
	}
	if !contains(list, tx.caller) {
		return landerr.ErrNotAWitness.Withf("'%s' is not a %s witness on transfer %d", tx.caller, side, transferID)
	}
	if t, err = c.getPendingTransfer(tx, transferID); err != nil {
		return err
	}

	approved, err := c.hasWitnessApproved(tx, transferID, tx.caller)
	if err != nil {
		return err
	}
	if approved {
		return landerr.ErrWitnessAlreadyApproved.Withf("'%s' on transfer %d", tx.caller, transferID)
	}
	k, err := tx.key(witnessApprovalObjectType, idAttr(transferID), tx.caller)
	if err != nil {
		return err
	}
	approval := model.WitnessApproval{
		ObjectType: witnessApprovalObjectType,
		TransferID: transferID,
		Witness:    tx.caller,
		Side:       side,
		Approved:   true,
		ApprovedAt: tx.now,
	}
	if err := tx.putJSON(k, approval); err != nil {
		return err
	}
	if err := c.recordWitnessed(tx, tx.caller, transferID, t.TitleID); err != nil {
		return err
	}
	refs := transferRefs(t)
	refs["witness"] = tx.caller
	refs["side"] = string(side)
	if err := tx.emit("WitnessApproved", refs, ""); err != nil {
		return err
	}
	logger.Infof("approveAsWitness: %s witness '%s' approved transfer %d.", side, tx.caller, transferID)
	return nil
}

func (c *LandRegistryContract) hasWitnessApproved(tx *ledgerTx, transferID uint64, witness string) (bool, error) {
	k, err := tx.key(witnessApprovalObjectType, idAttr(transferID), witness)
	if err != nil {
		return false, err
	}
	var a model.WitnessApproval
	found, err := tx.getJSON(k, &a)
	if err != nil {
		return false, err
	}
	return found && a.Approved, nil
}

// checkWitnessGate fails unless, for every side whose requirement toggle is
// set, every named witness on that side has approved. VerifyTransfer and
// AreWitnessRequirementsMet both use it.
func (c *LandRegistryContract) checkWitnessGate(tx *ledgerTx, t *model.TransferRequest) error {
	sides := []struct {
		required bool
		list     []string
		pending  *landerr.Error
	}{
		{t.RequireSellerWitness, t.SellerWitnesses, landerr.ErrSellerWitnessApprovalPending},
		{t.RequireBuyerWitness, t.BuyerWitnesses, landerr.ErrBuyerWitnessApprovalPending},
	}
	for _, s := range sides {
		if !s.required {
			continue
		}
		for _, w := range s.list {
			ok, err := c.hasWitnessApproved(tx, t.ID, w)
			if err != nil {
				return err
			}
			if !ok {
				return s.pending.Withf("'%s' has not approved transfer %d", w, t.ID)
			}
		}
	}
	return nil
}

// checkVerificationFlags fails with the reason of the first false flag.
func checkVerificationFlags(f model.VerificationFlags) error {
	checks := []struct {
		ok   bool
		fail *landerr.Error
	}{
		{f.NoLoan, landerr.ErrLoanExists},
		{f.NoDispute, landerr.ErrDisputeExists},
		{f.NoMortgage, landerr.ErrMortgageExists},
		{f.TitleVerified, landerr.ErrTitleNotVerified},
		{f.DocumentsAuthentic, landerr.ErrDocumentsNotAuthentic},
		{f.NoOutstandingTaxes, landerr.ErrOutstandingTaxes},
		{f.NoLegalEncumbrances, landerr.ErrLegalEncumbrances},
	}
	for _, ch := range checks {
		if !ch.ok {
			return ch.fail
		}
	}
	return nil
}

// VerifyTransfer runs the Clerk's verification gate over a PENDING transfer
// and moves it to VERIFIED.
func (c *LandRegistryContract) VerifyTransfer(ctx contractapi.TransactionContextInterface, transferID uint64, flags model.VerificationFlags) error {
	return c.runInTx(ctx, "VerifyTransfer", func(tx *ledgerTx) error {
		clerk, err := NewIdentityManager(tx).RequireOfficial(model.RoleClerk)
		if err != nil {
			return err
		}
		t, err := c.getPendingTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if t.DocHash == "" {
			return landerr.ErrDocumentsMissing.Withf("transfer %d", transferID)
		}
		if err := c.checkWitnessGate(tx, t); err != nil {
			return err
		}
		if err := checkVerificationFlags(flags); err != nil {
			return err
		}
		t.Flags = flags
		t.ClerkVerified = true
		t.VerifiedBy = clerk.ID
		t.Status = model.TransferVerified
		t.UpdatedAt = tx.now
		if err := c.putTransfer(tx, t); err != nil {
			return err
		}
		if err := tx.emit("TransferVerified", transferRefs(t), ""); err != nil {
			return err
		}
		logger.Infof("VerifyTransfer: transfer %d verified by official %d.", transferID, clerk.ID)
		return nil
	})
}

// ApproveTransfer approves a VERIFIED transfer and completes the ownership
// handover in the same call.
func (c *LandRegistryContract) ApproveTransfer(ctx contractapi.TransactionContextInterface, transferID uint64) error {
	return c.runInTx(ctx, "ApproveTransfer", func(tx *ledgerTx) error {
		tehsildar, err := NewIdentityManager(tx).RequireOfficial(model.RoleTehsildar)
		if err != nil {
			return err
		}
		t, err := c.getTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != model.TransferVerified {
			return landerr.ErrTransferNotVerified.Withf("transfer %d is %s", transferID, t.Status)
		}
		if err := c.requireLive(tx, t); err != nil {
			return err
		}
		title, err := c.getTitle(tx, t.TitleID)
		if err != nil {
			return err
		}
		if title.Owner != t.CurrentOwner {
			return landerr.ErrOwnershipMismatch.Withf("title %d is held by '%s', not '%s'", title.ID, title.Owner, t.CurrentOwner)
		}

		t.TehsildarVerified = true
		t.ApprovedBy = tehsildar.ID
		t.Status = model.TransferApproved
		t.UpdatedAt = tx.now
		if err := tx.emit("TransferApproved", transferRefs(t), ""); err != nil {
			return err
		}
		if err := c.completeTransfer(tx, t, title); err != nil {
			return err
		}
		logger.Infof("ApproveTransfer: transfer %d approved by official %d; title %d now owned by '%s'.", transferID, tehsildar.ID, title.ID, t.NewOwner)
		return nil
	})
}

// completeTransfer hands the title over from the seller to the buyer.
func (c *LandRegistryContract) completeTransfer(tx *ledgerTx, t *model.TransferRequest, title *model.Title) error {
	seller, err := c.getOwner(tx, t.CurrentOwner)
	if err != nil {
		return err
	}
	buyer, err := c.getOwner(tx, t.NewOwner)
	if err != nil {
		return err
	}
	if !removeTitle(seller, title.ID) {
		return landerr.ErrOwnershipMismatch.Withf("title %d missing from '%s' owned titles", title.ID, seller.Identity)
	}
	appendTitle(buyer, title.ID)
	seller.LastActivity = tx.now
	buyer.LastActivity = tx.now
	if err := c.putOwner(tx, seller); err != nil {
		return err
	}
	if err := c.putOwner(tx, buyer); err != nil {
		return err
	}

	title.Owner = t.NewOwner
	title.TransferCount++
	title.LastTransferID = t.ID
	if err := c.putTitle(tx, title); err != nil {
		return err
	}

	t.Status = model.TransferCompleted
	t.CompletedAt = tx.now
	t.UpdatedAt = tx.now
	if err := c.putTransfer(tx, t); err != nil {
		return err
	}
	if err := c.clearLiveTransfer(tx, t); err != nil {
		return err
	}
	return tx.emit("TransferCompleted", transferRefs(t), "")
}

// RejectTransfer terminally rejects a VERIFIED transfer.
func (c *LandRegistryContract) RejectTransfer(ctx contractapi.TransactionContextInterface, transferID uint64, reason string) error {
	return c.runInTx(ctx, "RejectTransfer", func(tx *ledgerTx) error {
		tehsildar, err := NewIdentityManager(tx).RequireOfficial(model.RoleTehsildar)
		if err != nil {
			return err
		}
		r, err := validateReason(reason)
		if err != nil {
			return err
		}
		t, err := c.getTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != model.TransferVerified {
			return landerr.ErrTransferNotVerified.Withf("transfer %d is %s", transferID, t.Status)
		}
		t.Status = model.TransferRejected
		t.RejectedBy = tehsildar.ID
		t.RejectionReason = r
		t.UpdatedAt = tx.now
		if err := c.putTransfer(tx, t); err != nil {
			return err
		}
		if err := c.clearLiveTransfer(tx, t); err != nil {
			return err
		}
		if err := tx.emit("TransferRejected", transferRefs(t), r); err != nil {
			return err
		}
		logger.Infof("RejectTransfer: transfer %d rejected by official %d: %s", transferID, tehsildar.ID, r)
		return nil
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
