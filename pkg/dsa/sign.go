package dsa

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/go-dsa/pkg/numutil"
)

// Sign hashes message under the engine's standard and signs the digest.
// A fresh nonce is drawn for every call; nothing is cached across
// signatures.
func (e *Engine) Sign(key *Key, message []byte) (*Signature, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: key is required", ErrUsage)
	}
	if message == nil {
		return nil, fmt.Errorf("%w: message is required", ErrUsage)
	}
	return e.SignDigest(key, e.digestFor(key, message))
}

// SignDigest signs a pre-computed digest. The digest is truncated to
// the subgroup width before use.
func (e *Engine) SignDigest(key *Key, digest []byte) (*Signature, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: key is required", ErrUsage)
	}
	if key.PrivKey == nil {
		return nil, fmt.Errorf("%w: signing requires a private key", ErrUsage)
	}
	if digest == nil {
		return nil, fmt.Errorf("%w: digest is required", ErrUsage)
	}

	z := truncateDigest(digest, key.Q)

	var r, s *big.Int
	for s == nil {
		var k *big.Int
		for {
			var err error
			k, err = e.drawNonce(key.Q)
			if err != nil {
				return nil, err
			}
			r = numutil.ModExp(key.G, k, key.P)
			r.Mod(r, key.Q)
			if r.Sign() != 0 {
				break
			}
		}

		kinv, err := numutil.ModInverse(k, key.Q)
		if err != nil {
			return nil, fmt.Errorf("%w: nonce has no inverse: %v", ErrInternal, err)
		}

		cand := new(big.Int).Mul(key.PrivKey, r)
		cand.Add(cand, z)
		cand.Mul(cand, kinv)
		cand.Mod(cand, key.Q)
		if cand.Sign() != 0 {
			s = cand
		}
	}

	if r.Sign() == 0 || s.Sign() == 0 {
		return nil, fmt.Errorf("%w: signature component is zero after retry loop", ErrInternal)
	}
	return &Signature{R: r, S: s}, nil
}

// Verify hashes message under the engine's standard and checks the
// signature. It returns false for both failed and malformed signatures;
// an error is returned only for usage mistakes.
func (e *Engine) Verify(key *Key, sig *Signature, message []byte) (bool, error) {
	if key == nil {
		return false, fmt.Errorf("%w: key is required", ErrUsage)
	}
	if message == nil {
		return false, fmt.Errorf("%w: message is required", ErrUsage)
	}
	return e.VerifyDigest(key, sig, e.digestFor(key, message))
}

// VerifyDigest checks a signature against a pre-computed digest.
func (e *Engine) VerifyDigest(key *Key, sig *Signature, digest []byte) (bool, error) {
	if key == nil {
		return false, fmt.Errorf("%w: key is required", ErrUsage)
	}
	if key.PubKey == nil {
		return false, fmt.Errorf("%w: verification requires a public key", ErrUsage)
	}
	if sig == nil || sig.R == nil || sig.S == nil {
		return false, fmt.Errorf("%w: signature is required", ErrUsage)
	}
	if digest == nil {
		return false, fmt.Errorf("%w: digest is required", ErrUsage)
	}

	// Fast-path rejection of out-of-range components.
	if sig.R.Sign() <= 0 || sig.R.Cmp(key.Q) >= 0 {
		return false, nil
	}
	if sig.S.Sign() <= 0 || sig.S.Cmp(key.Q) >= 0 {
		return false, nil
	}

	w, err := numutil.ModInverse(sig.S, key.Q)
	if err != nil {
		return false, nil
	}

	z := truncateDigest(digest, key.Q)

	u1 := new(big.Int).Mul(z, w)
	u1.Mod(u1, key.Q)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, key.Q)

	v := numutil.ModExp(key.G, u1, key.P)
	v.Mul(v, numutil.ModExp(key.PubKey, u2, key.P))
	v.Mod(v, key.P)
	v.Mod(v, key.Q)

	return v.Cmp(sig.R) == 0, nil
}

// digestFor applies the standard's digest schedule: SHA-1 under the
// legacy standard, SHA-256 or SHA-512 under FIPS 186-4 depending on the
// subgroup width.
func (e *Engine) digestFor(key *Key, message []byte) []byte {
	if e.standard == FIPS186v4 && key.Q != nil {
		if numutil.BitSize(key.Q) <= 256 {
			s := sha256.Sum256(message)
			return s[:]
		}
		s := sha512.Sum512(message)
		return s[:]
	}
	s := sha1.Sum(message)
	return s[:]
}

// truncateDigest converts the digest to an integer and keeps its
// leftmost N bits when the digest is wider than the subgroup.
func truncateDigest(digest []byte, q *big.Int) *big.Int {
	z := numutil.OS2IP(digest)
	outlen := 8 * len(digest)
	n := numutil.BitSize(q)
	if outlen > n {
		z.Rsh(z, uint(outlen-n))
	}
	return z
}

// drawNonce samples the per-signature secret k uniformly in [1, q-1].
func (e *Engine) drawNonce(q *big.Int) (*big.Int, error) {
	for {
		k, err := numutil.MakeRandom(e.source, numutil.BitSize(q))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRandomness, err)
		}
		k.Mod(k, q)
		if k.Sign() != 0 {
			return k, nil
		}
	}
}
