package eventing

// Ilk is the event type discriminant carried in the "t" field.
type Ilk string

const (
	Icp Ilk = "icp" // inception
	Rot Ilk = "rot" // rotation
	Ixn Ilk = "ixn" // interaction
	Dip Ilk = "dip" // delegated inception
	Drt Ilk = "drt" // delegated rotation
	Rct Ilk = "rct" // non-transferable receipt
	Ksn Ilk = "ksn" // key-state notice
	Qry Ilk = "qry" // query
)

// IsEstablishment reports whether ilk changes the signing-key commitment.
func IsEstablishment(ilk Ilk) bool {
	switch ilk {
	case Icp, Rot, Dip, Drt:
		return true
	default:
		return false
	}
}
