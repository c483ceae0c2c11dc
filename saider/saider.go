package saider

import (
	"strings"

	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/serder"
)

// DefaultCode is the digest derivation used when an event constructor does
// not pick one explicitly.
const DefaultCode = matter.Blake3_256

// dummy returns a string of '#' characters the qb64 length of code's digest
// form, the substitution value hashed in place of a not-yet-known digest.
func dummy(code matter.Code) (string, error) {
	n, ok := matter.Qb64Size(code)
	if !ok {
		return "", ErrNotFound
	}
	return strings.Repeat("#", n), nil
}

// Derive computes the SAID of ked under kind and code, installs it into the
// "d" field (and, when selfAddressingPre is true, the "i" field as well,
// used for a self-addressing inception where the identifier prefix and the
// event digest are the same value), and returns the updated mapping plus the
// resulting Serder.
func Derive(ked serder.KED, kind serder.Kind, code matter.Code, selfAddressingPre bool) (serder.KED, serder.Serder, error) {
	dv, err := dummy(code)
	if err != nil {
		return nil, serder.Serder{}, err
	}

	draft := ked.Set("d", dv)
	if selfAddressingPre {
		draft = draft.Set("i", dv)
	}

	s, err := serder.FromKed(draft, kind)
	if err != nil {
		return nil, serder.Serder{}, err
	}

	m, err := matter.DigestMatter(code, s.Raw)
	if err != nil {
		return nil, serder.Serder{}, err
	}
	said := m.Qb64()

	final := ked.Set("d", said)
	if selfAddressingPre {
		final = final.Set("i", said)
	}
	out, err := serder.FromKed(final, kind)
	if err != nil {
		return nil, serder.Serder{}, err
	}
	return out.Ked, out, nil
}

// Verify reproduces Derive's procedure against ked's current "d" (and, when
// selfAddressingPre is true, "i") values and reports whether they match.
func Verify(ked serder.KED, kind serder.Kind, code matter.Code, selfAddressingPre bool) error {
	said, err := ked.GetString("d")
	if err != nil {
		return ErrNotFound
	}
	if selfAddressingPre {
		pre, err := ked.GetString("i")
		if err != nil {
			return ErrNotFound
		}
		if pre != said {
			return ErrMismatch
		}
	}

	_, s, err := Derive(ked, kind, code, selfAddressingPre)
	if err != nil {
		return err
	}
	recomputed, err := s.Said()
	if err != nil {
		return err
	}
	if recomputed != said {
		return ErrMismatch
	}
	return nil
}
