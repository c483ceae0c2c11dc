package keri

import "github.com/keri-community/keri-go/threshold"

// State is the current state of one identifier. Establishment events update
// its key, next-key, witness and threshold fields and LastEstSn/LastEstSaid;
// every accepted event, interactions included, advances Sn, Fn and LastSaid.
// Receipts leave it untouched.
type State struct {
	Sn uint64 // current sequence number
	Fn uint64 // first-seen ordinal of the current head event

	Keys         []string
	KeyThreshold threshold.Threshold

	NextDigests   []string
	NextThreshold threshold.Threshold

	Witnesses        []string
	WitnessThreshold threshold.Threshold

	Config []string // trait codes, e.g. eventing.EstOnly

	Transferable bool
	Delegator    string // "" when not delegated

	LastEstSn   uint64 // sn of the event that last changed Keys
	LastEstSaid string // its SAID

	LastSaid string // SAID of the current head event (any type)
}

// Phase reports the lifecycle phase implied by state: Initial before any
// event has been accepted, Established once
// an icp/dip has been, and Abandoned once next-commitment is empty on a
// non-transferable identifier (no further rotation is possible).
type Phase int

const (
	Initial Phase = iota
	Established
	Abandoned
)

func (s *State) Phase() Phase {
	if s.LastSaid == "" {
		return Initial
	}
	if !s.Transferable && len(s.NextDigests) == 0 {
		return Abandoned
	}
	return Established
}
