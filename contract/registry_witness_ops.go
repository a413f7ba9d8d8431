package contract

import (
	"errors"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

func (c *LandRegistryContract) getWitness(tx *ledgerTx, identity string) (*model.Witness, error) {
	k, err := tx.key(witnessObjectType, identity)
	if err != nil {
		return nil, err
	}
	var w model.Witness
	found, err := tx.getJSON(k, &w)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, landerr.ErrWitnessNotFound.Withf("witness '%s'", identity)
	}
	return &w, nil
}

func (c *LandRegistryContract) putWitness(tx *ledgerTx, w *model.Witness) error {
	k, err := tx.key(witnessObjectType, w.Identity)
	if err != nil {
		return err
	}
	return tx.putJSON(k, w)
}

// RegisterWitness registers the caller as a witness and grants the WITNESS capability.
func (c *LandRegistryContract) RegisterWitness(ctx contractapi.TransactionContextInterface, name, contact, relation string) error {
	return c.runInTx(ctx, "RegisterWitness", func(tx *ledgerTx) error {
		in := model.WitnessInput{
			Name:     strings.TrimSpace(name),
			Contact:  strings.TrimSpace(contact),
			Relation: strings.TrimSpace(relation),
		}
		if err := validateInput(in); err != nil {
			return err
		}
		im := NewIdentityManager(tx)
		if err := im.MarkRegistered(tx.caller, model.ActorWitness); err != nil {
			return err
		}
		if err := im.GrantRole(tx.caller, model.RoleWitness); err != nil {
			return err
		}
		w := &model.Witness{
			ObjectType:           witnessObjectType,
			Identity:             tx.caller,
			Name:                 in.Name,
			Contact:              in.Contact,
			Relation:             in.Relation,
			WitnessedTitleIDs:    []uint64{},
			WitnessedTransferIDs: []uint64{},
			RegisteredAt:         tx.now,
			LastActivity:         tx.now,
		}
		if err := c.putWitness(tx, w); err != nil {
			return err
		}
		if err := tx.emit("WitnessRegistered", map[string]string{"witness": tx.caller}, ""); err != nil {
			return err
		}
		logger.Infof("RegisterWitness: '%s' registered as witness '%s'.", tx.caller, in.Name)
		return nil
	})
}

// UpdateWitnessProfile updates the caller's mutable witness fields.
func (c *LandRegistryContract) UpdateWitnessProfile(ctx contractapi.TransactionContextInterface, name, contact, relation string) error {
	return c.runInTx(ctx, "UpdateWitnessProfile", func(tx *ledgerTx) error {
		w, err := c.getWitness(tx, tx.caller)
		if errors.Is(err, landerr.ErrWitnessNotFound) {
			return landerr.ErrNotRegisteredWitness.Withf("'%s' is not a registered witness", tx.caller)
		}
		if err != nil {
			return err
		}
		in := model.WitnessInput{
			Name:     strings.TrimSpace(name),
			Contact:  strings.TrimSpace(contact),
			Relation: strings.TrimSpace(relation),
		}
		if err := validateInput(in); err != nil {
			return err
		}
		w.Name = in.Name
		w.Contact = in.Contact
		w.Relation = in.Relation
		w.LastActivity = tx.now
		if err := c.putWitness(tx, w); err != nil {
			return err
		}
		if err := tx.emit("WitnessProfileUpdated", map[string]string{"witness": tx.caller}, ""); err != nil {
			return err
		}
		logger.Infof("UpdateWitnessProfile: witness '%s' updated.", tx.caller)
		return nil
	})
}

// recordWitnessed appends a transfer and its title to a registered witness's
// history. Unregistered witnesses have no history to update.
func (c *LandRegistryContract) recordWitnessed(tx *ledgerTx, identity string, transferID, titleID uint64) error {
	w, err := c.getWitness(tx, identity)
	if errors.Is(err, landerr.ErrWitnessNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	w.WitnessedTransferIDs = append(w.WitnessedTransferIDs, transferID)
	w.WitnessedTitleIDs = append(w.WitnessedTitleIDs, titleID)
	w.LastActivity = tx.now
	return c.putWitness(tx, w)
}
