package contract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperledger/fabric/common/flogging"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

var idLogger = flogging.MustGetLogger("landregistry.identitymanager")

// IdentityManager handles capabilities, the registered-identity set and
// official records.
type IdentityManager struct {
	tx *ledgerTx
}

// NewIdentityManager creates a new instance of IdentityManager bound to a unit of work.
func NewIdentityManager(tx *ledgerTx) *IdentityManager {
	return &IdentityManager{tx: tx}
}

func parseRole(role string) model.Role {
	return model.Role(strings.ToUpper(strings.TrimSpace(role)))
}

// --- Capabilities ---

func (im *IdentityManager) HasRole(identity string, role model.Role) (bool, error) {
	k, err := im.tx.key(capabilityObjectType, identity, string(role))
	if err != nil {
		return false, err
	}
	b, err := im.tx.getState(k)
	if err != nil {
		return false, fmt.Errorf("failed to check role '%s' for '%s': %w", role, identity, err)
	}
	return b != nil && string(b) == "true", nil
}

func (im *IdentityManager) GrantRole(identity string, role model.Role) error {
	k, err := im.tx.key(capabilityObjectType, identity, string(role))
	if err != nil {
		return err
	}
	im.tx.putState(k, []byte("true"))
	idLogger.Debugf("Role '%s' granted to '%s'.", role, identity)
	return nil
}

// RequireRole fails with Unauthorized(role) unless the caller holds role.
// Admins do not bypass the check.
func (im *IdentityManager) RequireRole(role model.Role) error {
	has, err := im.HasRole(im.tx.caller, role)
	if err != nil {
		return err
	}
	if !has {
		return landerr.Unauthorized(string(role))
	}
	idLogger.Debugf("Role check passed for role '%s' for user '%s'.", role, im.tx.caller)
	return nil
}

// RequireOfficial checks the caller holds an official role and that their
// official record is active, and returns that record.
func (im *IdentityManager) RequireOfficial(role model.Role) (*model.Official, error) {
	if err := im.RequireRole(role); err != nil {
		return nil, err
	}
	official, err := im.GetOfficialByIdentity(im.tx.caller)
	if err != nil {
		return nil, err
	}
	if !official.Active {
		return nil, landerr.ErrOfficialInactive.Withf("official %d (%s) is inactive", official.ID, official.Role)
	}
	return official, nil
}

// --- Registered set ---

func (im *IdentityManager) RegisteredKind(identity string) (model.ActorKind, bool, error) {
	k, err := im.tx.key(registeredObjectType, identity)
	if err != nil {
		return "", false, err
	}
	b, err := im.tx.getState(k)
	if err != nil {
		return "", false, fmt.Errorf("failed to check registration of '%s': %w", identity, err)
	}
	if b == nil {
		return "", false, nil
	}
	return model.ActorKind(b), true, nil
}

func (im *IdentityManager) IsRegistered(identity string) (bool, error) {
	_, ok, err := im.RegisteredKind(identity)
	return ok, err
}

// MarkRegistered adds identity to the registered set. An identity enters the
// set once, as exactly one actor kind.
func (im *IdentityManager) MarkRegistered(identity string, kind model.ActorKind) error {
	existing, ok, err := im.RegisteredKind(identity)
	if err != nil {
		return err
	}
	if ok {
		return landerr.ErrAlreadyRegistered.Withf("'%s' is already registered as %s", identity, existing)
	}
	k, err := im.tx.key(registeredObjectType, identity)
	if err != nil {
		return err
	}
	im.tx.putState(k, []byte(kind))
	return nil
}

// --- Officials ---

func (im *IdentityManager) GetOfficial(id uint64) (*model.Official, error) {
	k, err := im.tx.key(officialObjectType, idAttr(id))
	if err != nil {
		return nil, err
	}
	var o model.Official
	found, err := im.tx.getJSON(k, &o)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, landerr.ErrOfficialNotFound.Withf("official %d", id)
	}
	return &o, nil
}

func (im *IdentityManager) GetOfficialByIdentity(identity string) (*model.Official, error) {
	k, err := im.tx.key(officialByIdentityType, identity)
	if err != nil {
		return nil, err
	}
	b, err := im.tx.getState(k)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, landerr.ErrOfficialNotFound.Withf("no official registered for '%s'", identity)
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt official index for '%s': %w", identity, err)
	}
	return im.GetOfficial(id)
}

func (im *IdentityManager) PutOfficial(o *model.Official) error {
	k, err := im.tx.key(officialObjectType, idAttr(o.ID))
	if err != nil {
		return err
	}
	if err := im.tx.putJSON(k, o); err != nil {
		return err
	}
	ik, err := im.tx.key(officialByIdentityType, o.Identity)
	if err != nil {
		return err
	}
	im.tx.putState(ik, []byte(strconv.FormatUint(o.ID, 10)))
	return nil
}
