package eventing

// Trait is a configuration code carried in an inception's "c" field.
type Trait string

// EstOnly forbids ixn events for the remainder of the identifier's life.
const EstOnly Trait = "EO"

// HasTrait reports whether traits contains t.
func HasTrait(traits []string, t Trait) bool {
	for _, c := range traits {
		if Trait(c) == t {
			return true
		}
	}
	return false
}
