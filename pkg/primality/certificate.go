package primality

import (
	"fmt"
	"math/big"
)

// Certificate is a Pocklington-style primality certificate. It proves N
// prime from a fully factored part F of N-1 with F > sqrt(N): the
// witness satisfies witness^(N-1) = 1 (mod N) and
// gcd(witness^((N-1)/q) - 1, N) = 1 for every prime q dividing F. Each
// factor carries its own certificate, so verification bottoms out at
// primes small enough for trial division.
type Certificate struct {
	N       *big.Int
	Witness *big.Int       // nil for trial-division leaves
	Factors []*Certificate // distinct prime factors of the proven part of N-1
}

// trialBound is the largest N certified directly by trial division.
var trialBound = new(big.Int).Lsh(one, 32)

// Prove builds a certificate for n, or fails when n is composite or a
// cofactor resists factoring.
func Prove(n *big.Int) (*Certificate, error) {
	if n.Cmp(two) < 0 {
		return nil, fmt.Errorf("primality: %v is not prime", n)
	}
	if n.Cmp(trialBound) <= 0 {
		if !trialDivisionPrime(n) {
			return nil, fmt.Errorf("primality: %v is composite", n)
		}
		return &Certificate{N: new(big.Int).Set(n)}, nil
	}

	// A composite survives the cheap screen only with negligible
	// probability; bail out before burning time on factoring.
	if !IsProbablePrime(n) {
		return nil, fmt.Errorf("primality: %v is composite", n)
	}

	nm1 := new(big.Int).Sub(n, one)
	primes, err := factorUntilSufficient(nm1, n)
	if err != nil {
		return nil, err
	}

	witness, err := findWitness(n, nm1, primes)
	if err != nil {
		return nil, err
	}

	cert := &Certificate{N: new(big.Int).Set(n), Witness: witness}
	for _, q := range primes {
		sub, err := Prove(q)
		if err != nil {
			return nil, err
		}
		cert.Factors = append(cert.Factors, sub)
	}
	return cert, nil
}

// Verify checks the certificate bottom-up. It performs only cheap
// deterministic arithmetic, so a verified certificate is an
// unconditional proof.
func (c *Certificate) Verify() bool {
	if c.N.Cmp(two) < 0 {
		return false
	}
	if c.Witness == nil {
		return c.N.Cmp(trialBound) <= 0 && trialDivisionPrime(c.N)
	}
	if len(c.Factors) == 0 {
		return false
	}

	nm1 := new(big.Int).Sub(c.N, one)

	// The proven part F must exceed sqrt(N), counting multiplicity.
	f := big.NewInt(1)
	rem := new(big.Int).Set(nm1)
	for _, sub := range c.Factors {
		if !sub.Verify() {
			return false
		}
		for {
			q, r := new(big.Int).QuoRem(rem, sub.N, new(big.Int))
			if r.Sign() != 0 {
				break
			}
			rem.Set(q)
			f.Mul(f, sub.N)
		}
	}
	fsq := new(big.Int).Mul(f, f)
	if fsq.Cmp(c.N) <= 0 {
		return false
	}

	// Fermat condition.
	if new(big.Int).Exp(c.Witness, nm1, c.N).Cmp(one) != 0 {
		return false
	}

	// Pocklington condition per prime factor.
	e := new(big.Int)
	g := new(big.Int)
	for _, sub := range c.Factors {
		e.Quo(nm1, sub.N)
		pw := new(big.Int).Exp(c.Witness, e, c.N)
		pw.Sub(pw, one)
		if g.GCD(nil, nil, pw, c.N).Cmp(one) != 0 {
			return false
		}
	}
	return true
}

func trialDivisionPrime(n *big.Int) bool {
	if n.Cmp(two) < 0 {
		return false
	}
	v := n.Uint64()
	if v%2 == 0 {
		return v == 2
	}
	for d := uint64(3); d*d <= v; d += 2 {
		if v%d == 0 {
			return false
		}
	}
	return true
}

// factorUntilSufficient pulls prime factors out of nm1 until their
// product exceeds sqrt(n). Returns the distinct primes found.
func factorUntilSufficient(nm1, n *big.Int) ([]*big.Int, error) {
	proven := big.NewInt(1)
	rem := new(big.Int).Set(nm1)
	var primes []*big.Int
	mod := new(big.Int)

	addFactor := func(p *big.Int) {
		for {
			q, r := new(big.Int).QuoRem(rem, p, new(big.Int))
			if r.Sign() != 0 {
				break
			}
			rem.Set(q)
			proven.Mul(proven, p)
		}
		primes = append(primes, new(big.Int).Set(p))
	}

	enough := func() bool {
		sq := new(big.Int).Mul(proven, proven)
		return sq.Cmp(n) > 0
	}

	for _, p := range smallPrimes {
		if mod.Mod(rem, p).Sign() == 0 {
			addFactor(p)
			if enough() {
				return primes, nil
			}
		}
	}

	for rem.Cmp(one) > 0 && !enough() {
		if IsProbablePrime(rem) {
			addFactor(new(big.Int).Set(rem))
			break
		}
		d, err := pollardRho(rem)
		if err != nil {
			return nil, fmt.Errorf("primality: cannot factor cofactor of %v-1: %w", n, err)
		}
		for !IsProbablePrime(d) {
			d2, err := pollardRho(d)
			if err != nil {
				return nil, fmt.Errorf("primality: cannot factor cofactor of %v-1: %w", n, err)
			}
			d = d2
		}
		addFactor(d)
	}

	if !enough() {
		return nil, fmt.Errorf("primality: factored part of %v-1 is too small for a Pocklington proof", n)
	}
	return primes, nil
}

// findWitness searches for a Pocklington witness, trying small bases in
// order. For prime n almost every base works.
func findWitness(n, nm1 *big.Int, primes []*big.Int) (*big.Int, error) {
	e := new(big.Int)
	g := new(big.Int)
	for a := int64(2); a < 1000; a++ {
		base := big.NewInt(a)
		if new(big.Int).Exp(base, nm1, n).Cmp(one) != 0 {
			// Fermat failure with any base disproves primality.
			return nil, fmt.Errorf("primality: %v is composite (Fermat base %d)", n, a)
		}
		ok := true
		for _, q := range primes {
			e.Quo(nm1, q)
			pw := new(big.Int).Exp(base, e, n)
			pw.Sub(pw, one)
			if g.GCD(nil, nil, pw, n).Cmp(one) != 0 {
				ok = false
				break
			}
		}
		if ok {
			return base, nil
		}
	}
	return nil, fmt.Errorf("primality: no Pocklington witness found for %v", n)
}

// pollardRho finds a non-trivial factor of odd composite n using Floyd's
// cycle detection with successive polynomial offsets.
func pollardRho(n *big.Int) (*big.Int, error) {
	if n.Bit(0) == 0 {
		return new(big.Int).Set(two), nil
	}
	x := new(big.Int)
	y := new(big.Int)
	d := new(big.Int)
	diff := new(big.Int)

	for c := int64(1); c < 64; c++ {
		offset := big.NewInt(c)
		x.SetInt64(2)
		y.SetInt64(2)
		d.SetInt64(1)
		step := func(v *big.Int) {
			v.Mul(v, v)
			v.Add(v, offset)
			v.Mod(v, n)
		}
		for i := 0; i < 1_000_000; i++ {
			step(x)
			step(y)
			step(y)
			diff.Sub(x, y)
			if diff.Sign() == 0 {
				break
			}
			d.GCD(nil, nil, diff.Abs(diff), n)
			if d.Cmp(one) > 0 {
				if d.Cmp(n) < 0 {
					return new(big.Int).Set(d), nil
				}
				break
			}
		}
	}
	return nil, fmt.Errorf("rho cycle exhausted for %v", n)
}
