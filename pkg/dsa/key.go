package dsa

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/go-dsa/pkg/numutil"
	"github.com/mahdiidarabi/go-dsa/pkg/primality"
)

// Key holds DSA domain parameters and key material. The fields are
// exported so envelope codecs (PEM, SSH2) can read and populate them
// directly. PrivKey is nil for public-only keys used in verification
// workflows.
type Key struct {
	P       *big.Int // prime modulus, bit length L
	Q       *big.Int // prime divisor of P-1, bit length N
	G       *big.Int // generator of the order-Q subgroup
	PubKey  *big.Int // G^PrivKey mod P
	PrivKey *big.Int // private exponent in [1, Q-1], nil if absent
}

// Signature is a DSA signature: a pair of integers in [1, Q-1].
type Signature struct {
	R *big.Int
	S *big.Int
}

// GenInfo carries the ancillary values of a parameter generation run:
// the counter at which p was accepted, the generator scan base h, and
// the seed that produced the accepted q. None of these are secret; they
// exist for audit and replay.
type GenInfo struct {
	Counter int
	H       *big.Int
	Seed    []byte
}

// Public returns a copy of the key with the private exponent stripped.
func (k *Key) Public() *Key {
	return &Key{P: k.P, Q: k.Q, G: k.G, PubKey: k.PubKey}
}

// Validate re-checks the consistency of a key whose fields were
// populated from an external source. Generated keys satisfy these
// conditions by construction.
func (k *Key) Validate() error {
	if k.P == nil || k.Q == nil || k.G == nil {
		return fmt.Errorf("%w: key is missing domain parameters", ErrUsage)
	}
	if !primality.IsProbablePrime(k.Q) {
		return fmt.Errorf("%w: q is not prime", ErrUsage)
	}
	if !primality.IsProbablePrime(k.P) {
		return fmt.Errorf("%w: p is not prime", ErrUsage)
	}

	pm1 := new(big.Int).Sub(k.P, big.NewInt(1))
	if new(big.Int).Mod(pm1, k.Q).Sign() != 0 {
		return fmt.Errorf("%w: q does not divide p-1", ErrUsage)
	}

	if k.G.Cmp(big.NewInt(1)) <= 0 || k.G.Cmp(k.P) >= 0 {
		return fmt.Errorf("%w: generator out of range", ErrUsage)
	}
	if numutil.ModExp(k.G, k.Q, k.P).Cmp(big.NewInt(1)) != 0 {
		return fmt.Errorf("%w: generator does not have order q", ErrUsage)
	}

	if k.PrivKey != nil {
		if k.PrivKey.Sign() <= 0 || k.PrivKey.Cmp(k.Q) >= 0 {
			return fmt.Errorf("%w: private key out of range", ErrUsage)
		}
		if k.PubKey == nil {
			return fmt.Errorf("%w: private key without public key", ErrUsage)
		}
		if numutil.ModExp(k.G, k.PrivKey, k.P).Cmp(k.PubKey) != 0 {
			return fmt.Errorf("%w: public key does not match private key", ErrUsage)
		}
	} else if k.PubKey == nil {
		return fmt.Errorf("%w: key has neither public nor private part", ErrUsage)
	}

	return nil
}
