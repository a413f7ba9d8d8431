package contract

import (
	"strconv"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

func (c *LandRegistryContract) getDraft(tx *ledgerTx, draftID uint64) (*model.LandDraft, error) {
	k, err := tx.key(draftObjectType, idAttr(draftID))
	if err != nil {
		return nil, err
	}
	var d model.LandDraft
	found, err := tx.getJSON(k, &d)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, landerr.ErrDraftNotFound.Withf("draft %d", draftID)
	}
	return &d, nil
}

func (c *LandRegistryContract) putDraft(tx *ledgerTx, d *model.LandDraft) error {
	k, err := tx.key(draftObjectType, idAttr(d.ID))
	if err != nil {
		return err
	}
	return tx.putJSON(k, d)
}

// draftAction names the audit field an official is recorded under.
type draftAction string

const (
	actionCreated  draftAction = "CREATED"
	actionVerified draftAction = "VERIFIED"
	actionApproved draftAction = "APPROVED"
	actionRejected draftAction = "REJECTED"
)

// recordOfficialAction indexes draftID under the official that acted on it so
// GetDraftsByOfficial reads only that official's keys.
func recordOfficialAction(tx *ledgerTx, officialID uint64, action draftAction, draftID uint64) error {
	k, err := tx.key(officialDraftObjectType, idAttr(officialID), string(action), idAttr(draftID))
	if err != nil {
		return err
	}
	tx.putState(k, []byte(strconv.FormatUint(draftID, 10)))
	return nil
}

func draftRefs(d *model.LandDraft) map[string]string {
	return map[string]string{
		"draftId":  strconv.FormatUint(d.ID, 10),
		"parcelId": d.ParcelID,
		"owner":    d.Owner,
	}
}

// CreateLandDraft records a new land claim for a registered owner and reserves
// its parcel id forever. Returns the new draft id.
func (c *LandRegistryContract) CreateLandDraft(ctx contractapi.TransactionContextInterface, region, subRegion, locality, parcelID, area, landType, owner, docHash string) (uint64, error) {
	var draftID uint64
	err := c.runInTx(ctx, "CreateLandDraft", func(tx *ledgerTx) error {
		patwari, err := NewIdentityManager(tx).RequireOfficial(model.RolePatwari)
		if err != nil {
			return err
		}
		in := model.DraftInput{
			Region:    strings.TrimSpace(region),
			SubRegion: strings.TrimSpace(subRegion),
			Locality:  strings.TrimSpace(locality),
			ParcelID:  strings.TrimSpace(parcelID),
			Area:      area,
			LandType:  strings.TrimSpace(landType),
			Owner:     strings.TrimSpace(owner),
			DocHash:   docHash,
		}
		if err := validateInput(in); err != nil {
			return err
		}
		normalisedArea, err := parseArea(in.Area)
		if err != nil {
			return err
		}
		ownerRec, err := c.requireRegisteredOwner(tx, in.Owner, landerr.ErrOwnerNotRegistered)
		if err != nil {
			return err
		}

		parcelKey, err := tx.key(parcelObjectType, in.ParcelID)
		if err != nil {
			return err
		}
		existing, err := tx.getState(parcelKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return landerr.ErrDuplicateParcelID.Withf("parcel '%s' is already reserved by draft %s", in.ParcelID, string(existing))
		}

		id, err := tx.nextID(draftCounter, 0)
		if err != nil {
			return err
		}
		draft := &model.LandDraft{
			ObjectType: draftObjectType,
			ID:         id,
			Region:     in.Region,
			SubRegion:  in.SubRegion,
			Locality:   in.Locality,
			ParcelID:   in.ParcelID,
			Area:       normalisedArea,
			LandType:   in.LandType,
			Owner:      in.Owner,
			DocHash:    in.DocHash,
			Status:     model.DraftPending,
			CreatedBy:  patwari.ID,
			CreatedAt:  tx.now,
			UpdatedAt:  tx.now,
		}
		if err := c.putDraft(tx, draft); err != nil {
			return err
		}
		tx.putState(parcelKey, []byte(strconv.FormatUint(id, 10)))
		if err := recordOfficialAction(tx, patwari.ID, actionCreated, id); err != nil {
			return err
		}

		appendDraftRef(ownerRec, id)
		ownerRec.LastActivity = tx.now
		if err := c.putOwner(tx, ownerRec); err != nil {
			return err
		}
		if err := tx.emit("DraftCreated", draftRefs(draft), ""); err != nil {
			return err
		}
		logger.Infof("CreateLandDraft: draft %d for parcel '%s' created by official %d for owner '%s'.", id, in.ParcelID, patwari.ID, in.Owner)
		draftID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return draftID, nil
}

// ApproveDraftAsOwner records the claimed owner's consent. In SINGLE_STEP
// mode the draft is approved and its title minted in the same call.
func (c *LandRegistryContract) ApproveDraftAsOwner(ctx contractapi.TransactionContextInterface, draftID uint64) error {
	return c.runInTx(ctx, "ApproveDraftAsOwner", func(tx *ledgerTx) error {
		draft, err := c.getDraft(tx, draftID)
		if err != nil {
			return err
		}
		if draft.Owner != tx.caller {
			return landerr.ErrNotDraftOwner.Withf("draft %d is claimed by another owner", draftID)
		}
		if draft.Status != model.DraftPending {
			return landerr.ErrDraftNotPending.Withf("draft %d is %s", draftID, draft.Status)
		}
		if draft.OwnerApproved {
			return landerr.ErrAlreadyOwnerApproved.Withf("draft %d", draftID)
		}
		settings, err := c.getSettings(tx)
		if err != nil {
			return err
		}

		draft.OwnerApproved = true
		draft.UpdatedAt = tx.now
		if err := tx.emit("DraftOwnerApproved", draftRefs(draft), ""); err != nil {
			return err
		}

		if settings.WorkflowMode == model.WorkflowSingleStep {
			draft.Status = model.DraftApproved
			titleID, err := c.mintTitle(tx, draft)
			if err != nil {
				return err
			}
			logger.Infof("ApproveDraftAsOwner: draft %d approved by owner and minted as title %d.", draftID, titleID)
			return nil
		}
		if err := c.putDraft(tx, draft); err != nil {
			return err
		}
		logger.Infof("ApproveDraftAsOwner: draft %d approved by owner '%s'.", draftID, tx.caller)
		return nil
	})
}

// VerifyDraftAsClerk moves an owner-approved draft from PENDING to VERIFIED.
func (c *LandRegistryContract) VerifyDraftAsClerk(ctx contractapi.TransactionContextInterface, draftID uint64) error {
	return c.runInTx(ctx, "VerifyDraftAsClerk", func(tx *ledgerTx) error {
		clerk, err := NewIdentityManager(tx).RequireOfficial(model.RoleClerk)
		if err != nil {
			return err
		}
		draft, err := c.getDraft(tx, draftID)
		if err != nil {
			return err
		}
		if draft.Status != model.DraftPending {
			return landerr.ErrDraftNotPending.Withf("draft %d is %s", draftID, draft.Status)
		}
		if !draft.OwnerApproved {
			return landerr.ErrOwnerApprovalMissing.Withf("draft %d", draftID)
		}
		if draft.DocHash == "" {
			return landerr.ErrDocumentsMissing.Withf("draft %d", draftID)
		}
		draft.Status = model.DraftVerified
		draft.VerifiedBy = clerk.ID
		draft.UpdatedAt = tx.now
		if err := c.putDraft(tx, draft); err != nil {
			return err
		}
		if err := recordOfficialAction(tx, clerk.ID, actionVerified, draftID); err != nil {
			return err
		}
		if err := tx.emit("DraftVerified", draftRefs(draft), ""); err != nil {
			return err
		}
		logger.Infof("VerifyDraftAsClerk: draft %d verified by official %d.", draftID, clerk.ID)
		return nil
	})
}

// ApproveDraftAsTehsildar moves a VERIFIED draft to APPROVED, ready to mint.
func (c *LandRegistryContract) ApproveDraftAsTehsildar(ctx contractapi.TransactionContextInterface, draftID uint64) error {
	return c.runInTx(ctx, "ApproveDraftAsTehsildar", func(tx *ledgerTx) error {
		tehsildar, err := NewIdentityManager(tx).RequireOfficial(model.RoleTehsildar)
		if err != nil {
			return err
		}
		draft, err := c.getDraft(tx, draftID)
		if err != nil {
			return err
		}
		if draft.Status != model.DraftVerified {
			return landerr.ErrDraftNotVerified.Withf("draft %d is %s", draftID, draft.Status)
		}
		draft.Status = model.DraftApproved
		draft.ApprovedBy = tehsildar.ID
		draft.UpdatedAt = tx.now
		if err := c.putDraft(tx, draft); err != nil {
			return err
		}
		if err := recordOfficialAction(tx, tehsildar.ID, actionApproved, draftID); err != nil {
			return err
		}
		if err := tx.emit("DraftApproved", draftRefs(draft), ""); err != nil {
			return err
		}
		logger.Infof("ApproveDraftAsTehsildar: draft %d approved by official %d.", draftID, tehsildar.ID)
		return nil
	})
}

// RejectDraft terminally rejects a PENDING or VERIFIED draft. The parcel id
// stays reserved.
func (c *LandRegistryContract) RejectDraft(ctx contractapi.TransactionContextInterface, draftID uint64, reason string) error {
	return c.runInTx(ctx, "RejectDraft", func(tx *ledgerTx) error {
		tehsildar, err := NewIdentityManager(tx).RequireOfficial(model.RoleTehsildar)
		if err != nil {
			return err
		}
		r, err := validateReason(reason)
		if err != nil {
			return err
		}
		draft, err := c.getDraft(tx, draftID)
		if err != nil {
			return err
		}
		if draft.Status != model.DraftPending && draft.Status != model.DraftVerified {
			return landerr.ErrDraftNotRejectable.Withf("draft %d is %s", draftID, draft.Status)
		}
		draft.Status = model.DraftRejected
		draft.RejectedBy = tehsildar.ID
		draft.RejectionReason = r
		draft.UpdatedAt = tx.now
		if err := c.putDraft(tx, draft); err != nil {
			return err
		}
		if err := recordOfficialAction(tx, tehsildar.ID, actionRejected, draftID); err != nil {
			return err
		}
		if err := tx.emit("DraftRejected", draftRefs(draft), r); err != nil {
			return err
		}
		logger.Infof("RejectDraft: draft %d rejected by official %d: %s", draftID, tehsildar.ID, r)
		return nil
	})
}

// MintTitle issues the title for an APPROVED draft. Returns the new title id.
func (c *LandRegistryContract) MintTitle(ctx contractapi.TransactionContextInterface, draftID uint64) (uint64, error) {
	var titleID uint64
	err := c.runInTx(ctx, "MintTitle", func(tx *ledgerTx) error {
		registrar, err := NewIdentityManager(tx).RequireOfficial(model.RoleRegistrar)
		if err != nil {
			return err
		}
		draft, err := c.getDraft(tx, draftID)
		if err != nil {
			return err
		}
		if draft.Minted {
			return landerr.ErrAlreadyMinted.Withf("draft %d is bound to title %d", draftID, draft.TitleID)
		}
		if draft.Status != model.DraftApproved {
			return landerr.ErrDraftNotApproved.Withf("draft %d is %s", draftID, draft.Status)
		}
		id, err := c.mintTitle(tx, draft)
		if err != nil {
			return err
		}
		logger.Infof("MintTitle: draft %d minted as title %d by official %d.", draftID, id, registrar.ID)
		titleID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return titleID, nil
}
