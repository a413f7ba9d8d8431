package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

// eventNamespace seeds the deterministic event ids so every endorsing peer
// derives the same id for the same transaction.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("landregistry.events"))

type pendingWrite struct {
	value   []byte
	deleted bool
}

// ledgerTx is the unit of work of one transaction function. Writes are staged
// and only reach the stub in commit, so a failed operation leaves no trace and
// reads observe the operation's own earlier writes.
type ledgerTx struct {
	stub   shim.ChaincodeStubInterface
	writes map[string]pendingWrite
	events []model.LedgerEvent
	txID   string
	now    time.Time
	caller string
}

// openTx returns a read-only view used by queries.
func openTx(ctx contractapi.TransactionContextInterface) *ledgerTx {
	stub := ctx.GetStub()
	return &ledgerTx{
		stub:   stub,
		writes: make(map[string]pendingWrite),
		txID:   stub.GetTxID(),
	}
}

// beginTx opens a unit of work for a mutating operation and resolves the
// caller identity and transaction timestamp.
func beginTx(ctx contractapi.TransactionContextInterface) (*ledgerTx, error) {
	tx := openTx(ctx)

	ci := ctx.GetClientIdentity()
	if ci == nil {
		return nil, landerr.ErrNoCallerIdentity.Withf("client identity is nil from context")
	}
	id, err := ci.GetID()
	if err != nil {
		return nil, landerr.ErrNoCallerIdentity.Withf("%v", err)
	}
	if id == "" {
		return nil, landerr.ErrNoCallerIdentity.Withf("client identity id is empty")
	}
	tx.caller = id

	ts, err := tx.stub.GetTxTimestamp()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	if ts != nil {
		tx.now = ts.AsTime().UTC()
	}
	return tx, nil
}

func idAttr(id uint64) string {
	return fmt.Sprintf("%020d", id)
}

func (tx *ledgerTx) key(objectType string, attrs ...string) (string, error) {
	k, err := tx.stub.CreateCompositeKey(objectType, attrs)
	if err != nil {
		return "", fmt.Errorf("failed to create %s composite key: %w", objectType, err)
	}
	return k, nil
}

func (tx *ledgerTx) getState(key string) ([]byte, error) {
	if w, ok := tx.writes[key]; ok {
		if w.deleted {
			return nil, nil
		}
		return w.value, nil
	}
	b, err := tx.stub.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("ledger error reading %q: %w", key, err)
	}
	return b, nil
}

func (tx *ledgerTx) putState(key string, value []byte) {
	tx.writes[key] = pendingWrite{value: value}
}

func (tx *ledgerTx) delState(key string) {
	tx.writes[key] = pendingWrite{deleted: true}
}

// getJSON unmarshals the value at key into v and reports whether it existed.
func (tx *ledgerTx) getJSON(key string, v any) (bool, error) {
	b, err := tx.getState(key)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %q: %w", key, err)
	}
	return true, nil
}

func (tx *ledgerTx) putJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}
	tx.putState(key, b)
	return nil
}

// scan walks committed records under a partial composite key. Staged writes
// are not visible to it.
func (tx *ledgerTx) scan(objectType string, attrs []string, fn func(key string, value []byte) error) error {
	it, err := tx.stub.GetStateByPartialCompositeKey(objectType, attrs)
	if err != nil {
		return fmt.Errorf("failed to iterate %s records: %w", objectType, err)
	}
	defer it.Close()

	for it.HasNext() {
		kv, err := it.Next()
		if err != nil {
			return fmt.Errorf("failed to read next %s record: %w", objectType, err)
		}
		if err := fn(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// nextID returns the current value of the named counter, starting at start,
// and advances it. Ids are never reused.
func (tx *ledgerTx) nextID(counter string, start uint64) (uint64, error) {
	k, err := tx.key(counterObjectType, counter)
	if err != nil {
		return 0, err
	}
	b, err := tx.getState(k)
	if err != nil {
		return 0, err
	}
	next := start
	if b != nil {
		next, err = strconv.ParseUint(string(b), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt %s counter %q: %w", counter, string(b), err)
		}
	}
	tx.putState(k, []byte(strconv.FormatUint(next+1, 10)))
	return next, nil
}

// emit records a ledger event for this transaction.
func (tx *ledgerTx) emit(name string, refs map[string]string, reason string) error {
	seq, err := tx.nextID(eventCounter, 0)
	if err != nil {
		return err
	}
	ev := model.LedgerEvent{
		ObjectType: eventObjectType,
		ID:         uuid.NewSHA1(eventNamespace, []byte(tx.txID+"/"+strconv.FormatUint(seq, 10))).String(),
		Seq:        seq,
		Name:       name,
		TxID:       tx.txID,
		Actor:      tx.caller,
		Refs:       refs,
		Reason:     reason,
		Timestamp:  tx.now,
	}
	k, err := tx.key(eventObjectType, idAttr(seq))
	if err != nil {
		return err
	}
	if err := tx.putJSON(k, ev); err != nil {
		return err
	}
	tx.events = append(tx.events, ev)
	return nil
}

// commit flushes staged writes in key order and publishes the transaction's
// events as a single chaincode event.
func (tx *ledgerTx) commit() error {
	keys := make([]string, 0, len(tx.writes))
	for k := range tx.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		w := tx.writes[k]
		if w.deleted {
			if err := tx.stub.DelState(k); err != nil {
				return fmt.Errorf("failed to delete %q: %w", k, err)
			}
			continue
		}
		if err := tx.stub.PutState(k, w.value); err != nil {
			return fmt.Errorf("failed to save %q: %w", k, err)
		}
	}

	if len(tx.events) == 0 {
		return nil
	}
	payload, err := json.Marshal(tx.events)
	if err != nil {
		logger.Warningf("commit: failed to marshal events for tx '%s': %v", tx.txID, err)
		return nil
	}
	name := tx.events[len(tx.events)-1].Name
	if err := tx.stub.SetEvent(name, payload); err != nil {
		logger.Warningf("commit: failed to set event '%s' for tx '%s': %v", name, tx.txID, err)
	}
	return nil
}

// runInTx executes fn inside a unit of work. Nothing is written unless fn
// succeeds.
func (c *LandRegistryContract) runInTx(ctx contractapi.TransactionContextInterface, op string, fn func(tx *ledgerTx) error) error {
	tx, err := beginTx(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		var le *landerr.Error
		if errors.As(err, &le) {
			logger.Warningf("%s rejected for caller '%s': %v", op, tx.caller, err)
			return err
		}
		logger.Errorf("%s failed for caller '%s': %v", op, tx.caller, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, ev := range tx.events {
		c.metrics.ObserveEvent(ev.Name)
	}
	return nil
}
