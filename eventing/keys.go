package eventing

import (
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/threshold"
)

// NextDigests computes the next-key commitment list for keys: the digest,
// under code, of each key's qb64 text.
func NextDigests(keys []string, code matter.Code) ([]string, error) {
	if !matter.IsDigestCode(code) {
		return nil, ErrBadDigestCode
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		m, err := matter.DigestMatter(code, []byte(k))
		if err != nil {
			return nil, err
		}
		out[i] = m.Qb64()
	}
	return out, nil
}

// VerifyNextCommitment reports whether newKeys satisfy the commitment made by
// a prior establishment event's next-key digest list under its threshold. A
// new key at position i is considered contributing when its digest under
// code equals nextDigests[i].
func VerifyNextCommitment(nextDigests []string, nt threshold.Threshold, newKeys []string, code matter.Code) (bool, error) {
	newDigests, err := NextDigests(newKeys, code)
	if err != nil {
		return false, err
	}
	n := len(nextDigests)
	if len(newDigests) < n {
		n = len(newDigests)
	}
	var contributing []int
	for i := 0; i < n; i++ {
		if newDigests[i] == nextDigests[i] {
			contributing = append(contributing, i)
		}
	}
	return nt.Satisfied(contributing)
}
