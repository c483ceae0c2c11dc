package keristore

import "sync"

// MemStore is a process-local Store backed by Go maps, guarded by a single
// mutex. It is the reference implementation used by this kernel's own test
// suite and is adequate for a single-process deployment; it keeps no data on
// disk and loses everything on restart.
type MemStore struct {
	mu sync.Mutex

	kel       map[string]map[uint64]string // pre -> sn -> said
	events    map[string]map[string][]byte // pre -> said -> raw
	firstSeen map[string]map[uint64]string // pre -> fn -> said
	nextFN    map[string]uint64
	receipts  map[string]map[string][]Receipt // pre -> said -> receipts
	keyState  map[string][]byte
	duplicity map[string]map[uint64][]string // pre -> sn -> saids
}

// NewMemStore builds an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		kel:       map[string]map[uint64]string{},
		events:    map[string]map[string][]byte{},
		firstSeen: map[string]map[uint64]string{},
		nextFN:    map[string]uint64{},
		receipts:  map[string]map[string][]Receipt{},
		keyState:  map[string][]byte{},
		duplicity: map[string]map[uint64][]string{},
	}
}

func (m *MemStore) AppendKEL(pre string, sn uint64, said string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.kel[pre]; !ok {
		m.kel[pre] = map[uint64]string{}
	}
	m.kel[pre][sn] = said

	if _, ok := m.events[pre]; !ok {
		m.events[pre] = map[string][]byte{}
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	m.events[pre][said] = cp

	fn := m.nextFN[pre]
	if _, ok := m.firstSeen[pre]; !ok {
		m.firstSeen[pre] = map[uint64]string{}
	}
	m.firstSeen[pre][fn] = said
	m.nextFN[pre] = fn + 1

	return nil
}

func (m *MemStore) GetKEL(pre string, sn uint64) (string, []byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	said, ok := m.kel[pre][sn]
	if !ok {
		return "", nil, false
	}
	raw, ok := m.events[pre][said]
	return said, raw, ok
}

func (m *MemStore) GetEvent(pre, said string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.events[pre][said]
	return raw, ok
}

func (m *MemStore) AppendReceipt(pre, said string, r Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.receipts[pre]; !ok {
		m.receipts[pre] = map[string][]Receipt{}
	}
	for _, existing := range m.receipts[pre][said] {
		if existing == r {
			return nil
		}
	}
	m.receipts[pre][said] = append(m.receipts[pre][said], r)
	return nil
}

func (m *MemStore) Receipts(pre, said string) []Receipt {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Receipt(nil), m.receipts[pre][said]...)
}

func (m *MemStore) FirstSeen(pre string, fn uint64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	said, ok := m.firstSeen[pre][fn]
	return said, ok
}

func (m *MemStore) NextFN(pre string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.nextFN[pre]
}

func (m *MemStore) PutKeyState(pre string, ksn []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(ksn))
	copy(cp, ksn)
	m.keyState[pre] = cp
	return nil
}

func (m *MemStore) GetKeyState(pre string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ksn, ok := m.keyState[pre]
	return ksn, ok
}

func (m *MemStore) MarkDuplicitous(pre string, sn uint64, said string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.duplicity[pre]; !ok {
		m.duplicity[pre] = map[uint64][]string{}
	}
	for _, existing := range m.duplicity[pre][sn] {
		if existing == said {
			return nil
		}
	}
	m.duplicity[pre][sn] = append(m.duplicity[pre][sn], said)
	return nil
}

func (m *MemStore) Duplicitous(pre string, sn uint64) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saids, ok := m.duplicity[pre][sn]
	return saids, ok
}
