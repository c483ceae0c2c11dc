package keri

import (
	"time"

	"github.com/datatrails/go-datatrails-common/logger"
)

// KeveryOption configures a Kevery at construction.
type KeveryOption func(*Kevery)

// KeverOption configures a single Kever at construction.
type KeverOption func(*Kever)

// WithLogger injects a structured logger; Kevery falls back to
// logger.Sugar.WithServiceName("keri.kevery") when none is given.
func WithLogger(log logger.Logger) KeveryOption {
	return func(k *Kevery) { k.log = log }
}

// WithEscrowTTL overrides the default escrow entry lifetime.
func WithEscrowTTL(ttl time.Duration) KeveryOption {
	return func(k *Kevery) { k.escrows.ttl = ttl }
}

// WithKeverLogger injects a structured logger into one Kever.
func WithKeverLogger(log logger.Logger) KeverOption {
	return func(k *Kever) { k.log = log }
}

// WithVerferResolver registers a lookup for qb64 keys whose derivation code
// is not a directly-supported Ed25519/Ed25519N key (e.g. a custom HSM-backed
// key type). Without one, signatures under any other code are rejected.
func WithVerferResolver(resolve func(qb64 string) (Verfer, bool)) KeverOption {
	return func(k *Kever) { k.resolver = resolve }
}
