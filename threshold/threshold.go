package threshold

import (
	"math/big"
	"strconv"
	"strings"
)

// Threshold is either a simple integer count or a list of weighted clauses.
// Exactly one of the two forms is populated.
type Threshold struct {
	simple  *uint64
	clauses [][]*big.Rat // nil when Threshold is simple
	intive  bool         // wire form: true emits the simple form as a JSON int, false as a string
}

// NewSimple builds a simple numeric threshold. intive controls whether the
// wire form is emitted as an integer or a decimal string; both forms are
// accepted on read regardless of which one a given writer emits.
func NewSimple(n uint64, intive bool) Threshold {
	return Threshold{simple: &n, intive: intive}
}

// IsZero reports whether t is the Go zero value: neither a simple count nor
// any weighted clauses have been set.
func (t Threshold) IsZero() bool {
	return t.simple == nil && t.clauses == nil
}

// NewWeighted builds a weighted threshold from clauses of "num/den" fraction
// strings (e.g. [["1/2","1/2"],["1/1"]]).
func NewWeighted(clauses [][]string) (Threshold, error) {
	out := make([][]*big.Rat, len(clauses))
	for ci, clause := range clauses {
		if len(clause) == 0 {
			return Threshold{}, ErrEmptyClause
		}
		rats := make([]*big.Rat, len(clause))
		for wi, w := range clause {
			r, err := parseFraction(w)
			if err != nil {
				return Threshold{}, err
			}
			rats[wi] = r
		}
		out[ci] = rats
	}
	return Threshold{clauses: out}, nil
}

func parseFraction(s string) (*big.Rat, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 1 {
		n, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, ErrBadFraction
		}
		return big.NewRat(n, 1), nil
	}
	num, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrBadFraction
	}
	den, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || den == 0 {
		return nil, ErrBadFraction
	}
	return big.NewRat(num, den), nil
}

// Num returns the simple count and true when t is the simple form, or
// (0, false) for the weighted form and the zero value.
func (t Threshold) Num() (uint64, bool) {
	if t.simple == nil {
		return 0, false
	}
	return *t.simple, true
}

// IsWeighted reports whether t is the weighted-clause form.
func (t Threshold) IsWeighted() bool { return t.clauses != nil }

// Size returns the number of signing-key positions this threshold spans:
// the simple form has no fixed size (it is satisfied against however many
// keys the caller checks against), the weighted form spans the sum of all
// clause lengths.
func (t Threshold) Size() int {
	if !t.IsWeighted() {
		return -1
	}
	n := 0
	for _, c := range t.clauses {
		n += len(c)
	}
	return n
}

// Satisfied reports whether the signatures at the given key indices meet the
// threshold. For a simple threshold, it is met when at least N distinct
// indices are present. For a weighted threshold, every clause must
// independently accumulate a weight sum >= 1 from the indices that fall in
// its flattened range.
func (t Threshold) Satisfied(indices []int) (bool, error) {
	if !t.IsWeighted() {
		if t.simple == nil {
			return false, nil
		}
		distinct := map[int]bool{}
		for _, i := range indices {
			distinct[i] = true
		}
		return uint64(len(distinct)) >= *t.simple, nil
	}

	size := t.Size()
	present := make([]bool, size)
	for _, i := range indices {
		if i < 0 || i >= size {
			return false, ErrIndexOutOfRange
		}
		present[i] = true
	}

	base := 0
	for _, clause := range t.clauses {
		sum := new(big.Rat)
		for ci, w := range clause {
			if present[base+ci] {
				sum.Add(sum, w)
			}
		}
		if sum.Cmp(big.NewRat(1, 1)) < 0 {
			return false, nil
		}
		base += len(clause)
	}
	return true, nil
}

// Wire renders the threshold's wire value: a JSON int or decimal string for
// the simple form, or nested string-fraction lists for the weighted form.
func (t Threshold) Wire() any {
	if !t.IsWeighted() {
		if t.simple == nil {
			return nil
		}
		if t.intive {
			return *t.simple
		}
		return strconv.FormatUint(*t.simple, 10)
	}
	out := make([]any, len(t.clauses))
	for ci, clause := range t.clauses {
		strs := make([]any, len(clause))
		for wi, w := range clause {
			strs[wi] = w.RatString()
		}
		out[ci] = strs
	}
	return out
}

// ParseWire reconstructs a Threshold from a decoded serder.KED field value
// (as produced by Wire): an integer or decimal string for the simple form,
// or nested string-fraction lists for the weighted form. Callers must accept
// either wire form on read, not just the one they themselves emit.
func ParseWire(v any) (Threshold, error) {
	switch t := v.(type) {
	case nil:
		return Threshold{}, nil
	case uint64:
		return NewSimple(t, true), nil
	case int64:
		return NewSimple(uint64(t), true), nil
	case int:
		return NewSimple(uint64(t), true), nil
	case float64:
		return NewSimple(uint64(t), true), nil
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return Threshold{}, ErrBadFraction
		}
		return NewSimple(n, false), nil
	case []any:
		clauses := make([][]string, len(t))
		for ci, c := range t {
			cs, ok := c.([]any)
			if !ok {
				return Threshold{}, ErrBadFraction
			}
			ws := make([]string, len(cs))
			for wi, w := range cs {
				s, ok := w.(string)
				if !ok {
					return Threshold{}, ErrBadFraction
				}
				ws[wi] = s
			}
			clauses[ci] = ws
		}
		return NewWeighted(clauses)
	default:
		return Threshold{}, ErrBadFraction
	}
}

// Simple computes the trivial majority floor: simple(n) = ceil((n+1)/2) for
// n > 0, and 0 for n == 0.
func Simple(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return (n + 2) / 2 // ceil((n+1)/2)
}

// Ample computes the byzantine-ample majority threshold for n signers. f is
// the assumed number of faulty signers. With an explicit f, weak returns the
// looser majority ceil((n+f+1)/2) and strict returns n-f, both capped at n;
// ErrAmpleImpossible is returned when n-f < ceil((n+f+1)/2) for n > 0, i.e.
// f is too large for n. With f nil, two candidate fault counts are tried,
// max(1, floor((n-1)/3)) and max(1, ceil((n-1)/3)), and the result is the
// smallest (weak) or the capped largest (strict) majority they yield. The
// floor of 1 assumes at least one faulty signer even for tiny n, so for
// example Ample(3, nil, true) is 3, not 2.
func Ample(n uint64, f *uint64, weak bool) (uint64, error) {
	if f == nil {
		var nm1 uint64
		if n > 0 {
			nm1 = n - 1
		}
		f1 := nm1 / 3
		if f1 < 1 {
			f1 = 1
		}
		f2 := ceilDiv(nm1, 3)
		if f2 < 1 {
			f2 = 1
		}
		m1 := ceilDiv(n+f1+1, 2)
		m2 := ceilDiv(n+f2+1, 2)
		if weak {
			return minU64(n, m1, m2), nil
		}
		var s uint64
		if n > f1 {
			s = n - f1
		}
		if m2 > s {
			s = m2
		}
		if s > n {
			s = n
		}
		return s, nil
	}

	ff := *f
	m1 := ceilDiv(n+ff+1, 2)
	var m2 uint64
	if n > ff {
		m2 = n - ff
	}
	if m2 < m1 && n > 0 {
		return 0, ErrAmpleImpossible
	}
	if weak {
		return minU64(n, m1, m2), nil
	}
	s := m1
	if m2 > s {
		s = m2
	}
	if s > n {
		s = n
	}
	return s, nil
}

func minU64(vs ...uint64) uint64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}
