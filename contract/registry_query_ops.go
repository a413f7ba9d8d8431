package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

// --- Drafts ---

func (c *LandRegistryContract) GetDraft(ctx contractapi.TransactionContextInterface, draftID uint64) (*model.LandDraft, error) {
	logger.Debugf("Chaincode Call: GetDraft %d", draftID)
	return c.getDraft(openTx(ctx), draftID)
}

func (c *LandRegistryContract) GetDraftByParcel(ctx contractapi.TransactionContextInterface, parcelID string) (*model.LandDraft, error) {
	logger.Debugf("Chaincode Call: GetDraftByParcel '%s'", parcelID)
	tx := openTx(ctx)
	k, err := tx.key(parcelObjectType, strings.TrimSpace(parcelID))
	if err != nil {
		return nil, err
	}
	b, err := tx.getState(k)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, landerr.ErrDraftNotFound.Withf("no draft for parcel '%s'", parcelID)
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("GetDraftByParcel: corrupt parcel index for '%s': %w", parcelID, err)
	}
	return c.getDraft(tx, id)
}

func (c *LandRegistryContract) GetDraftStatusText(ctx contractapi.TransactionContextInterface, draftID uint64) (string, error) {
	d, err := c.getDraft(openTx(ctx), draftID)
	if err != nil {
		return "", err
	}
	return d.Status.String(), nil
}

// GetDraftsByOfficial lists the drafts an official created, verified,
// approved or rejected, read from the per-official activity index.
func (c *LandRegistryContract) GetDraftsByOfficial(ctx contractapi.TransactionContextInterface, officialID uint64) (*model.OfficialActivity, error) {
	logger.Debugf("Chaincode Call: GetDraftsByOfficial %d", officialID)
	tx := openTx(ctx)
	if _, err := NewIdentityManager(tx).GetOfficial(officialID); err != nil {
		return nil, err
	}
	activity := &model.OfficialActivity{
		OfficialID: officialID,
		Created:    []uint64{},
		Verified:   []uint64{},
		Approved:   []uint64{},
		Rejected:   []uint64{},
	}
	err := tx.scan(officialDraftObjectType, []string{idAttr(officialID)}, func(key string, value []byte) error {
		_, attrs, err := tx.stub.SplitCompositeKey(key)
		if err != nil || len(attrs) != 3 {
			return fmt.Errorf("malformed official activity key '%s': %v", key, err)
		}
		draftID, err := strconv.ParseUint(attrs[2], 10, 64)
		if err != nil {
			return fmt.Errorf("malformed draft id in '%s': %w", key, err)
		}
		switch draftAction(attrs[1]) {
		case actionCreated:
			activity.Created = append(activity.Created, draftID)
		case actionVerified:
			activity.Verified = append(activity.Verified, draftID)
		case actionApproved:
			activity.Approved = append(activity.Approved, draftID)
		case actionRejected:
			activity.Rejected = append(activity.Rejected, draftID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("GetDraftsByOfficial: %w", err)
	}
	return activity, nil
}

// --- Titles and transfers ---

func (c *LandRegistryContract) GetTitle(ctx contractapi.TransactionContextInterface, titleID uint64) (*model.Title, error) {
	logger.Debugf("Chaincode Call: GetTitle %d", titleID)
	return c.getTitle(openTx(ctx), titleID)
}

func (c *LandRegistryContract) GetTitleOwner(ctx contractapi.TransactionContextInterface, titleID uint64) (string, error) {
	t, err := c.getTitle(openTx(ctx), titleID)
	if err != nil {
		return "", err
	}
	return t.Owner, nil
}

func (c *LandRegistryContract) GetTransfer(ctx contractapi.TransactionContextInterface, transferID uint64) (*model.TransferRequest, error) {
	logger.Debugf("Chaincode Call: GetTransfer %d", transferID)
	return c.getTransfer(openTx(ctx), transferID)
}

func (c *LandRegistryContract) GetTransferStatusText(ctx contractapi.TransactionContextInterface, transferID uint64) (string, error) {
	t, err := c.getTransfer(openTx(ctx), transferID)
	if err != nil {
		return "", err
	}
	return t.Status.String(), nil
}

func (c *LandRegistryContract) GetLiveTransferForTitle(ctx contractapi.TransactionContextInterface, titleID uint64) (*model.TransferRequest, error) {
	tx := openTx(ctx)
	if _, err := c.getTitle(tx, titleID); err != nil {
		return nil, err
	}
	id, ok, err := c.liveTransferID(tx, titleID)
	if err != nil {
		return nil, fmt.Errorf("GetLiveTransferForTitle: %w", err)
	}
	if !ok {
		return nil, landerr.ErrTransferNotFound.Withf("no live transfer for title %d", titleID)
	}
	return c.getTransfer(tx, id)
}

// --- Owners, officials and witnesses ---

func (c *LandRegistryContract) GetOwner(ctx contractapi.TransactionContextInterface, identity string) (*model.Owner, error) {
	logger.Debugf("Chaincode Call: GetOwner '%s'", identity)
	return c.getOwner(openTx(ctx), identity)
}

func (c *LandRegistryContract) GetOwnerDrafts(ctx contractapi.TransactionContextInterface, identity string) ([]uint64, error) {
	o, err := c.getOwner(openTx(ctx), identity)
	if err != nil {
		return nil, err
	}
	return o.DraftIDs, nil
}

func (c *LandRegistryContract) GetOwnerTitles(ctx contractapi.TransactionContextInterface, identity string) ([]uint64, error) {
	o, err := c.getOwner(openTx(ctx), identity)
	if err != nil {
		return nil, err
	}
	return o.TitleIDs, nil
}

func (c *LandRegistryContract) GetOwnerTransfers(ctx contractapi.TransactionContextInterface, identity string) ([]uint64, error) {
	o, err := c.getOwner(openTx(ctx), identity)
	if err != nil {
		return nil, err
	}
	return o.TransferIDs, nil
}

func (c *LandRegistryContract) GetOfficial(ctx contractapi.TransactionContextInterface, officialID uint64) (*model.Official, error) {
	logger.Debugf("Chaincode Call: GetOfficial %d", officialID)
	return NewIdentityManager(openTx(ctx)).GetOfficial(officialID)
}

func (c *LandRegistryContract) GetOfficialByIdentity(ctx contractapi.TransactionContextInterface, identity string) (*model.Official, error) {
	logger.Debugf("Chaincode Call: GetOfficialByIdentity '%s'", identity)
	return NewIdentityManager(openTx(ctx)).GetOfficialByIdentity(identity)
}

func (c *LandRegistryContract) GetWitness(ctx contractapi.TransactionContextInterface, identity string) (*model.Witness, error) {
	logger.Debugf("Chaincode Call: GetWitness '%s'", identity)
	return c.getWitness(openTx(ctx), identity)
}

// --- Witness approvals ---

func (c *LandRegistryContract) GetWitnessApproval(ctx contractapi.TransactionContextInterface, transferID uint64, witness string) (bool, error) {
	tx := openTx(ctx)
	if _, err := c.getTransfer(tx, transferID); err != nil {
		return false, err
	}
	return c.hasWitnessApproved(tx, transferID, witness)
}

// GetWitnessApprovals lists every approval recorded on a transfer.
func (c *LandRegistryContract) GetWitnessApprovals(ctx contractapi.TransactionContextInterface, transferID uint64) ([]*model.WitnessApproval, error) {
	tx := openTx(ctx)
	if _, err := c.getTransfer(tx, transferID); err != nil {
		return nil, err
	}
	approvals := []*model.WitnessApproval{}
	err := tx.scan(witnessApprovalObjectType, []string{idAttr(transferID)}, func(key string, value []byte) error {
		var a model.WitnessApproval
		if err := json.Unmarshal(value, &a); err != nil {
			return fmt.Errorf("failed to unmarshal approval '%s': %w", key, err)
		}
		approvals = append(approvals, &a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("GetWitnessApprovals: %w", err)
	}
	return approvals, nil
}

// AreWitnessRequirementsMet reports whether VerifyTransfer's witness gate
// would currently pass for the transfer.
func (c *LandRegistryContract) AreWitnessRequirementsMet(ctx contractapi.TransactionContextInterface, transferID uint64) (bool, error) {
	tx := openTx(ctx)
	t, err := c.getTransfer(tx, transferID)
	if err != nil {
		return false, err
	}
	err = c.checkWitnessGate(tx, t)
	if errors.Is(err, landerr.ErrWitnessRequirementNotMet) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- Registry ---

// HasRole reports whether identity holds the capability. It does not look at
// an official's active flag.
func (c *LandRegistryContract) HasRole(ctx contractapi.TransactionContextInterface, identity, role string) (bool, error) {
	return NewIdentityManager(openTx(ctx)).HasRole(identity, parseRole(role))
}

func (c *LandRegistryContract) IsRegistered(ctx contractapi.TransactionContextInterface, identity string) (bool, error) {
	return NewIdentityManager(openTx(ctx)).IsRegistered(identity)
}

func (c *LandRegistryContract) GetWorkflowMode(ctx contractapi.TransactionContextInterface) (string, error) {
	s, err := c.getSettings(openTx(ctx))
	if err != nil {
		return "", err
	}
	return string(s.WorkflowMode), nil
}

// GetEvents returns one page of the event log in sequence order. An empty
// bookmark starts at the first event; a pageSize of 0 uses the default.
func (c *LandRegistryContract) GetEvents(ctx contractapi.TransactionContextInterface, pageSize int32, bookmark string) (*model.EventPage, error) {
	if pageSize <= 0 {
		pageSize = defaultEventsLimit
	}
	if pageSize > maxEventsLimit {
		pageSize = maxEventsLimit
	}
	logger.Debugf("Chaincode Call: GetEvents (pageSize: %d, bookmark: '%s')", pageSize, bookmark)

	resultsIterator, metadata, err := ctx.GetStub().GetStateByPartialCompositeKeyWithPagination(eventObjectType, []string{}, pageSize, bookmark)
	if err != nil {
		return nil, fmt.Errorf("GetEvents: failed to get events iterator: %w", err)
	}
	defer resultsIterator.Close()

	page := &model.EventPage{Events: []*model.LedgerEvent{}}
	for resultsIterator.HasNext() {
		kv, err := resultsIterator.Next()
		if err != nil {
			return nil, fmt.Errorf("GetEvents: failed to read next event: %w", err)
		}
		var ev model.LedgerEvent
		if err := json.Unmarshal(kv.Value, &ev); err != nil {
			return nil, fmt.Errorf("GetEvents: failed to unmarshal event '%s': %w", kv.Key, err)
		}
		page.Events = append(page.Events, &ev)
	}
	page.FetchedCount = int32(len(page.Events))
	page.NextBookmark = metadata.GetBookmark()
	return page, nil
}
