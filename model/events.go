package model

import "time"

// LedgerEvent is the outward notification recorded for every committed state
// change. Events are persisted in sequence order and never read back by the
// workflow itself.
type LedgerEvent struct {
	ObjectType string            `json:"objectType"` // "Event"
	ID         string            `json:"id"`         // UUIDv5 derived from txId and seq
	Seq        uint64            `json:"seq"`        // Ledger-wide, starts at 0
	Name       string            `json:"name"`       // e.g. "DraftCreated"
	TxID       string            `json:"txId"`
	Actor      string            `json:"actor"`
	Refs       map[string]string `json:"refs"` // Ids involved, e.g. {"draftId": "3"}
	Reason     string            `json:"reason,omitempty" metadata:"reason,optional"`
	Timestamp  time.Time         `json:"timestamp"`
}

// EventPage is one page of the event log. Pass NextBookmark back to fetch the
// following page; it is empty once the log is exhausted.
type EventPage struct {
	Events       []*LedgerEvent `json:"events"`
	NextBookmark string         `json:"nextBookmark"`
	FetchedCount int32          `json:"fetchedCount"`
}
