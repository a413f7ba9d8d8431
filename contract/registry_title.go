package contract

import (
	"fmt"
	"strconv"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

func (c *LandRegistryContract) getTitle(tx *ledgerTx, titleID uint64) (*model.Title, error) {
	k, err := tx.key(titleObjectType, idAttr(titleID))
	if err != nil {
		return nil, err
	}
	var t model.Title
	found, err := tx.getJSON(k, &t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, landerr.ErrTitleNotFound.Withf("title %d", titleID)
	}
	return &t, nil
}

func (c *LandRegistryContract) putTitle(tx *ledgerTx, t *model.Title) error {
	k, err := tx.key(titleObjectType, idAttr(t.ID))
	if err != nil {
		return err
	}
	return tx.putJSON(k, t)
}

// mintTitle allocates the next title id for an approved draft, binds it to
// the draft's owner and marks the draft MINTED. The caller has checked the
// draft is APPROVED and not yet minted.
func (c *LandRegistryContract) mintTitle(tx *ledgerTx, draft *model.LandDraft) (uint64, error) {
	owner, err := c.getOwner(tx, draft.Owner)
	if err != nil {
		return 0, fmt.Errorf("draft %d owner: %w", draft.ID, err)
	}
	id, err := tx.nextID(titleCounter, 0)
	if err != nil {
		return 0, err
	}
	title := &model.Title{
		ObjectType: titleObjectType,
		ID:         id,
		DraftID:    draft.ID,
		ParcelID:   draft.ParcelID,
		Owner:      draft.Owner,
		DocHash:    draft.DocHash,
		TokenURI:   tokenURIPrefix + draft.DocHash,
		MintedBy:   tx.caller,
		MintedAt:   tx.now,
	}
	if err := c.putTitle(tx, title); err != nil {
		return 0, err
	}

	draft.Minted = true
	draft.TitleID = id
	draft.Status = model.DraftMinted
	draft.UpdatedAt = tx.now
	if err := c.putDraft(tx, draft); err != nil {
		return 0, err
	}

	appendTitle(owner, id)
	owner.LastActivity = tx.now
	if err := c.putOwner(tx, owner); err != nil {
		return 0, err
	}

	refs := draftRefs(draft)
	refs["titleId"] = strconv.FormatUint(id, 10)
	if err := tx.emit("TitleMinted", refs, ""); err != nil {
		return 0, err
	}
	return id, nil
}
