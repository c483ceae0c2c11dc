package keri

import "github.com/google/uuid"

// CueKind names the follow-up action a cue asks the driver to take.
type CueKind string

const (
	// CueFetchReceipts asks the driver to solicit witness receipts for an
	// event this Kevery just accepted.
	CueFetchReceipts CueKind = "fetch-receipts"
	// CueQuery asks the driver to act on an incoming qry message.
	CueQuery CueKind = "query"
	// CueKeyStateNotice asks the driver to act on an incoming ksn message.
	CueKeyStateNotice CueKind = "key-state-notice"
	// CueResync reports that the parser had to resynchronize past
	// undecodable bytes.
	CueResync CueKind = "resync"
)

// Cue is one queued follow-up action.
type Cue struct {
	ID   uuid.UUID
	Kind CueKind
	Pre  string
	Said string
	Note string
}

func newCue(kind CueKind, pre, said, note string) Cue {
	return Cue{ID: uuid.New(), Kind: kind, Pre: pre, Said: said, Note: note}
}
