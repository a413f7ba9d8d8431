package contract

import (
	"errors"
	"strconv"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

func (c *LandRegistryContract) getSettings(tx *ledgerTx) (*model.LedgerSettings, error) {
	k, err := tx.key(settingsObjectType)
	if err != nil {
		return nil, err
	}
	var s model.LedgerSettings
	found, err := tx.getJSON(k, &s)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, landerr.ErrNotBootstrapped
	}
	return &s, nil
}

// BootstrapLedger makes the first caller on an empty ledger an Admin and fixes
// the workflow mode (MULTI_STEP when empty, or SINGLE_STEP) for the ledger's
// lifetime.
func (c *LandRegistryContract) BootstrapLedger(ctx contractapi.TransactionContextInterface, workflowMode string) error {
	return c.runInTx(ctx, "BootstrapLedger", func(tx *ledgerTx) error {
		_, err := c.getSettings(tx)
		if err == nil {
			return landerr.ErrAlreadyBootstrapped.Withf("BootstrapLedger should not be re-run")
		}
		if !errors.Is(err, landerr.ErrNotBootstrapped) {
			return err
		}

		mode := model.WorkflowMode(strings.ToUpper(strings.TrimSpace(workflowMode)))
		if mode == "" {
			mode = model.WorkflowMultiStep
		}
		if mode != model.WorkflowMultiStep && mode != model.WorkflowSingleStep {
			return landerr.ErrInvalidWorkflowMode.Withf("'%s' is not one of %s, %s", workflowMode, model.WorkflowMultiStep, model.WorkflowSingleStep)
		}

		if err := NewIdentityManager(tx).GrantRole(tx.caller, model.RoleAdmin); err != nil {
			return err
		}
		k, err := tx.key(settingsObjectType)
		if err != nil {
			return err
		}
		settings := model.LedgerSettings{
			ObjectType:     settingsObjectType,
			WorkflowMode:   mode,
			BootstrappedBy: tx.caller,
			BootstrappedAt: tx.now,
		}
		if err := tx.putJSON(k, settings); err != nil {
			return err
		}
		if err := tx.emit("LedgerBootstrapped", map[string]string{"admin": tx.caller, "workflowMode": string(mode)}, ""); err != nil {
			return err
		}
		logger.Infof("BootstrapLedger: ledger bootstrapped in %s mode. Identity '%s' is now an admin.", mode, tx.caller)
		return nil
	})
}

// GrantAdmin gives the Admin capability to another identity.
func (c *LandRegistryContract) GrantAdmin(ctx contractapi.TransactionContextInterface, identity string) error {
	return c.runInTx(ctx, "GrantAdmin", func(tx *ledgerTx) error {
		im := NewIdentityManager(tx)
		if err := im.RequireRole(model.RoleAdmin); err != nil {
			return err
		}
		identity = strings.TrimSpace(identity)
		if identity == "" {
			return landerr.ErrZeroIdentity.Withf("identity cannot be empty")
		}
		if err := im.GrantRole(identity, model.RoleAdmin); err != nil {
			return err
		}
		if err := tx.emit("AdminGranted", map[string]string{"identity": identity}, ""); err != nil {
			return err
		}
		logger.Infof("GrantAdmin: '%s' made '%s' an admin.", tx.caller, identity)
		return nil
	})
}

// RegisterOfficial registers identity as a Patwari, Clerk, Tehsildar or
// Registrar and returns the new official id.
func (c *LandRegistryContract) RegisterOfficial(ctx contractapi.TransactionContextInterface, identity, role, docHash, nationalIDRef string) (uint64, error) {
	var officialID uint64
	err := c.runInTx(ctx, "RegisterOfficial", func(tx *ledgerTx) error {
		im := NewIdentityManager(tx)
		if err := im.RequireRole(model.RoleAdmin); err != nil {
			return err
		}
		in := model.OfficialInput{
			Identity:      strings.TrimSpace(identity),
			Role:          role,
			DocHash:       docHash,
			NationalIDRef: strings.TrimSpace(nationalIDRef),
		}
		if err := validateInput(in); err != nil {
			return err
		}
		r := parseRole(in.Role)
		if !model.OfficialRoles[r] {
			return landerr.ErrInvalidRole.Withf("'%s' is not an official role", role)
		}
		if err := im.MarkRegistered(in.Identity, model.ActorOfficial); err != nil {
			return err
		}

		id, err := tx.nextID(officialCounter, firstOfficialID)
		if err != nil {
			return err
		}
		official := &model.Official{
			ObjectType:    officialObjectType,
			ID:            id,
			Identity:      in.Identity,
			Role:          r,
			DocHash:       in.DocHash,
			NationalIDRef: in.NationalIDRef,
			Active:        true,
			RegisteredBy:  tx.caller,
			RegisteredAt:  tx.now,
			UpdatedAt:     tx.now,
		}
		if err := im.PutOfficial(official); err != nil {
			return err
		}
		if err := im.GrantRole(in.Identity, r); err != nil {
			return err
		}
		refs := map[string]string{"officialId": strconv.FormatUint(id, 10), "identity": in.Identity, "role": string(r)}
		if err := tx.emit("OfficialRegistered", refs, ""); err != nil {
			return err
		}
		logger.Infof("RegisterOfficial: official %d '%s' registered as %s by '%s'.", id, in.Identity, r, tx.caller)
		officialID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return officialID, nil
}

// UpdateOfficial overwrites an official's document hash and active flag.
// Role and id never change.
func (c *LandRegistryContract) UpdateOfficial(ctx contractapi.TransactionContextInterface, officialID uint64, docHash string, active bool) error {
	return c.runInTx(ctx, "UpdateOfficial", func(tx *ledgerTx) error {
		im := NewIdentityManager(tx)
		if err := im.RequireRole(model.RoleAdmin); err != nil {
			return err
		}
		if err := ValidateDocumentHash(docHash); err != nil {
			return err
		}
		official, err := im.GetOfficial(officialID)
		if err != nil {
			return err
		}
		official.DocHash = docHash
		official.Active = active
		official.UpdatedAt = tx.now
		if err := im.PutOfficial(official); err != nil {
			return err
		}
		refs := map[string]string{"officialId": strconv.FormatUint(officialID, 10), "active": strconv.FormatBool(active)}
		if err := tx.emit("OfficialUpdated", refs, ""); err != nil {
			return err
		}
		logger.Infof("UpdateOfficial: official %d updated by '%s' (active=%t).", officialID, tx.caller, active)
		return nil
	})
}
