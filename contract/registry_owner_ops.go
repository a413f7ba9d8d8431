package contract

import (
	"errors"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

func (c *LandRegistryContract) getOwner(tx *ledgerTx, identity string) (*model.Owner, error) {
	k, err := tx.key(ownerObjectType, identity)
	if err != nil {
		return nil, err
	}
	var o model.Owner
	found, err := tx.getJSON(k, &o)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, landerr.ErrOwnerNotFound.Withf("owner '%s'", identity)
	}
	return &o, nil
}

func (c *LandRegistryContract) putOwner(tx *ledgerTx, o *model.Owner) error {
	k, err := tx.key(ownerObjectType, o.Identity)
	if err != nil {
		return err
	}
	return tx.putJSON(k, o)
}

// requireRegisteredOwner loads identity's owner record, reporting a missing
// record as notRegistered.
func (c *LandRegistryContract) requireRegisteredOwner(tx *ledgerTx, identity string, notRegistered *landerr.Error) (*model.Owner, error) {
	o, err := c.getOwner(tx, identity)
	if errors.Is(err, landerr.ErrOwnerNotFound) {
		return nil, notRegistered.Withf("'%s' is not a registered owner", identity)
	}
	return o, err
}

// RegisterOwner registers the caller as a landowner.
func (c *LandRegistryContract) RegisterOwner(ctx contractapi.TransactionContextInterface, name, contact, nationalID, docHash string) error {
	return c.runInTx(ctx, "RegisterOwner", func(tx *ledgerTx) error {
		in := model.OwnerInput{
			Name:       strings.TrimSpace(name),
			Contact:    strings.TrimSpace(contact),
			NationalID: strings.TrimSpace(nationalID),
			DocHash:    docHash,
		}
		if err := validateInput(in); err != nil {
			return err
		}
		if err := NewIdentityManager(tx).MarkRegistered(tx.caller, model.ActorOwner); err != nil {
			return err
		}
		owner := &model.Owner{
			ObjectType:   ownerObjectType,
			Identity:     tx.caller,
			Name:         in.Name,
			Contact:      in.Contact,
			NationalID:   in.NationalID,
			DocHash:      in.DocHash,
			RegisteredAt: tx.now,
			LastActivity: tx.now,
			TitleIDs:     []uint64{},
			DraftIDs:     []uint64{},
			TransferIDs:  []uint64{},
		}
		if err := c.putOwner(tx, owner); err != nil {
			return err
		}
		if err := tx.emit("OwnerRegistered", map[string]string{"owner": tx.caller}, ""); err != nil {
			return err
		}
		logger.Infof("RegisterOwner: '%s' registered as owner '%s'.", tx.caller, in.Name)
		return nil
	})
}

// UpdateOwnerProfile updates the caller's mutable owner fields.
func (c *LandRegistryContract) UpdateOwnerProfile(ctx contractapi.TransactionContextInterface, name, contact, docHash string) error {
	return c.runInTx(ctx, "UpdateOwnerProfile", func(tx *ledgerTx) error {
		owner, err := c.requireRegisteredOwner(tx, tx.caller, landerr.ErrNotRegisteredOwner)
		if err != nil {
			return err
		}
		in := model.OwnerProfileInput{
			Name:    strings.TrimSpace(name),
			Contact: strings.TrimSpace(contact),
			DocHash: docHash,
		}
		if err := validateInput(in); err != nil {
			return err
		}
		owner.Name = in.Name
		owner.Contact = in.Contact
		owner.DocHash = in.DocHash
		owner.LastActivity = tx.now
		if err := c.putOwner(tx, owner); err != nil {
			return err
		}
		if err := tx.emit("OwnerProfileUpdated", map[string]string{"owner": tx.caller}, ""); err != nil {
			return err
		}
		logger.Infof("UpdateOwnerProfile: owner '%s' updated.", tx.caller)
		return nil
	})
}

// --- Owner history helpers ---

func appendTitle(o *model.Owner, titleID uint64) {
	o.TitleIDs = append(o.TitleIDs, titleID)
}

// removeTitle drops titleID from o's owned titles by swapping it with the
// last element. It reports whether the title was present.
func removeTitle(o *model.Owner, titleID uint64) bool {
	for i, id := range o.TitleIDs {
		if id == titleID {
			last := len(o.TitleIDs) - 1
			o.TitleIDs[i] = o.TitleIDs[last]
			o.TitleIDs = o.TitleIDs[:last]
			return true
		}
	}
	return false
}

func appendDraftRef(o *model.Owner, draftID uint64) {
	o.DraftIDs = append(o.DraftIDs, draftID)
}

func appendTransferRef(o *model.Owner, transferID uint64) {
	o.TransferIDs = append(o.TransferIDs, transferID)
}
