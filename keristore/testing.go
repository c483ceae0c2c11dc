package keristore

// SeedEvent is one canned KEL entry for populating a Store in tests.
type SeedEvent struct {
	Sn   uint64
	Said string
	Raw  []byte
}

// Seed appends a sequence of canned events to store for pre, in order. It is
// a test helper, not a production bulk-load path: callers that need
// first-seen ordinals to reflect anything other than array order should use
// AppendKEL directly.
func Seed(store Store, pre string, events []SeedEvent) error {
	for _, e := range events {
		if err := store.AppendKEL(pre, e.Sn, e.Said, e.Raw); err != nil {
			return err
		}
	}
	return nil
}
