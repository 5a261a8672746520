package dsa

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/go-dsa/pkg/numutil"
)

var one = big.NewInt(1)

type domainParams struct {
	p, q, g *big.Int
}

// generateParams runs the FIPS 186-2 or 186-4 domain-parameter
// construction for an L-bit modulus and N-bit subgroup.
func (e *Engine) generateParams(ctx context.Context, std Standard, L, N int, seed []byte, prove ProveMode) (*domainParams, *GenInfo, error) {
	var (
		p, q    *big.Int
		counter int
		seedQ   []byte
		err     error
	)
	if std == FIPS186v4 {
		p, q, counter, seedQ, err = e.construct186v4(ctx, L, N, seed, prove)
	} else {
		p, q, counter, seedQ, err = e.construct186v2(ctx, L, seed, prove)
	}
	if err != nil {
		return nil, nil, err
	}

	g, h := deriveGenerator(p, q)
	return &domainParams{p: p, q: q, g: g},
		&GenInfo{Counter: counter, H: h, Seed: seedQ},
		nil
}

// construct186v2 implements the legacy SHA-1 construction of FIPS 186-2
// Appendix 2: q is assembled from SHA1(seed) XOR SHA1(seed+1), and p is
// searched over at most 4096 candidates assembled from a running SHA-1
// stream over the incremented seed.
func (e *Engine) construct186v2(ctx context.Context, L int, seed []byte, prove ProveMode) (*big.Int, *big.Int, int, []byte, error) {
	n := (L+159)/160 - 1
	pTest := new(big.Int).Lsh(one, uint(L-1))

	userSeed := seed
	if len(userSeed) != 20 {
		// A caller seed of the wrong width is silently discarded.
		userSeed = nil
	}

	for attempt := 0; ; attempt++ {
		if err := checkContext(ctx); err != nil {
			return nil, nil, 0, nil, err
		}
		if err := e.emitProgress("q", attempt); err != nil {
			return nil, nil, 0, nil, err
		}

		var seedQ []byte
		if userSeed != nil {
			seedQ = userSeed
			userSeed = nil
		} else {
			var err error
			seedQ, err = e.source.Bytes(20)
			if err != nil {
				return nil, nil, 0, nil, fmt.Errorf("%w: %v", ErrRandomness, err)
			}
		}

		seedp1 := make([]byte, 20)
		copy(seedp1, seedQ)
		incBytes(seedp1)

		h0 := sha1.Sum(seedQ)
		h1 := sha1.Sum(seedp1)
		md := make([]byte, 20)
		for i := range md {
			md[i] = h0[i] ^ h1[i]
		}
		md[0] |= 0x80
		md[19] |= 0x01
		q := numutil.OS2IP(md)

		if !e.acceptPrime(q, prove.provesQ(), 19, hex.EncodeToString(seedp1)) {
			continue
		}

		p, counter, err := e.searchP(ctx, q, pTest, n, 4096, seedp1, sha1Digest, 3, prove.provesP())
		if err != nil {
			return nil, nil, 0, nil, err
		}
		if p == nil {
			// Counter overflow: restart with a fresh seed.
			continue
		}
		return p, q, counter, seedQ, nil
	}
}

// construct186v4 implements FIPS 186-4 A.1.1.2 with the SHA-2 variant
// matched to the subgroup size.
func (e *Engine) construct186v4(ctx context.Context, L, N int, seed []byte, prove ProveMode) (*big.Int, *big.Int, int, []byte, error) {
	digest, outlen := sha2ForWidth(N)

	n := (L+outlen-1)/outlen - 1
	seedlen := (N + 7) / 8
	pTest := new(big.Int).Lsh(one, uint(L-1))
	qTest := new(big.Int).Lsh(one, uint(N-1))

	nptests := 3
	if L > 2048 {
		nptests = 2
	}
	nqtests := 19
	if N > 160 {
		nqtests = 27
	}

	userSeed := seed
	if len(userSeed)*8 < N {
		userSeed = nil
	}

	for attempt := 0; ; attempt++ {
		if err := checkContext(ctx); err != nil {
			return nil, nil, 0, nil, err
		}
		if err := e.emitProgress("q", attempt); err != nil {
			return nil, nil, 0, nil, err
		}

		var seedQ []byte
		if userSeed != nil {
			seedQ = userSeed
			userSeed = nil
		} else {
			var err error
			seedQ, err = e.source.Bytes(seedlen)
			if err != nil {
				return nil, nil, 0, nil, fmt.Errorf("%w: %v", ErrRandomness, err)
			}
		}

		u := numutil.OS2IP(digest(seedQ))
		u.Mod(u, qTest)
		q := new(big.Int).Add(qTest, u)
		if u.Bit(0) == 0 {
			q.Add(q, one)
		}

		if !e.acceptPrime(q, prove.provesQ(), nqtests, hex.EncodeToString(seedQ)) {
			continue
		}

		seedp1 := make([]byte, len(seedQ))
		copy(seedp1, seedQ)

		p, counter, err := e.searchP(ctx, q, pTest, n, 4*L, seedp1, digest, nptests, prove.provesP())
		if err != nil {
			return nil, nil, 0, nil, err
		}
		if p == nil {
			continue
		}
		return p, q, counter, seedQ, nil
	}
}

// searchP runs the counter-bounded candidate search shared by both
// standards: each candidate is assembled from n+1 hash blocks of the
// advancing seed, reduced to L-1 bits, lifted above 2^(L-1), and snapped
// to 1 mod 2q. Returns a nil p when the counter bound is exhausted.
func (e *Engine) searchP(ctx context.Context, q, pTest *big.Int, n, maxCounter int, seedp1 []byte, digest func([]byte) []byte, rounds int, prove bool) (*big.Int, int, error) {
	q2 := new(big.Int).Lsh(q, 1)

	for counter := 0; counter < maxCounter; counter++ {
		if err := checkContext(ctx); err != nil {
			return nil, 0, err
		}
		if err := e.emitProgress("p", counter); err != nil {
			return nil, 0, err
		}

		// Later blocks occupy higher bit positions.
		var w []byte
		for j := 0; j <= n; j++ {
			incBytes(seedp1)
			w = append(digest(seedp1), w...)
		}

		// The reduction to L-1 bits doubles as the top-block mask of
		// the standard's W construction.
		W := numutil.OS2IP(w)
		W.Mod(W, pTest)

		x := W.Add(W, pTest)
		c := new(big.Int).Mod(x, q2)
		p := x.Sub(x, c.Sub(c, one))

		if p.Cmp(pTest) >= 0 && e.acceptPrime(p, prove, rounds, hex.EncodeToString(seedp1)) {
			return p, counter, nil
		}
	}
	return nil, 0, nil
}

// deriveGenerator scans h = 2, 3, ... for the first h^((p-1)/q) mod p
// that is not 1. The result has order q.
func deriveGenerator(p, q *big.Int) (*big.Int, *big.Int) {
	exp := new(big.Int).Sub(p, one)
	exp.Div(exp, q)

	h := big.NewInt(2)
	for {
		g := numutil.ModExp(h, exp, p)
		if g.Cmp(one) != 0 {
			return g, h
		}
		h.Add(h, one)
	}
}

// acceptPrime applies the configured regimen: an unconditional proof
// when requested, otherwise the cheap screen plus seed-coupled
// Miller-Rabin rounds.
func (e *Engine) acceptPrime(n *big.Int, prove bool, rounds int, entropyHex string) bool {
	if prove {
		return e.oracle.IsProvablePrime(n)
	}
	return e.oracle.IsProbablePrime(n) && e.oracle.MillerRabinRandom(n, rounds, entropyHex)
}

// incBytes increments a big-endian byte string in place, wrapping on
// carry out of the top byte.
func incBytes(b []byte) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}

func sha1Digest(b []byte) []byte {
	s := sha1.Sum(b)
	return s[:]
}

// sha2ForWidth picks the SHA-2 variant whose output width covers N.
func sha2ForWidth(n int) (func([]byte) []byte, int) {
	switch {
	case n <= 256:
		return func(b []byte) []byte {
			s := sha256.Sum256(b)
			return s[:]
		}, 256
	case n <= 384:
		return func(b []byte) []byte {
			s := sha512.Sum384(b)
			return s[:]
		}, 384
	default:
		return func(b []byte) []byte {
			s := sha512.Sum512(b)
			return s[:]
		}, 512
	}
}
