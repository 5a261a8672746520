package primality

import (
	"math/big"
	"testing"
)

func mustInt(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad integer literal %q", s)
	}
	return n
}

func TestIsProbablePrimeSmall(t *testing.T) {
	primes := []int64{2, 3, 5, 7, 97, 101, 997, 1009, 104729}
	for _, p := range primes {
		if !IsProbablePrime(big.NewInt(p)) {
			t.Errorf("%d should be probable prime", p)
		}
	}

	composites := []int64{0, 1, 4, 9, 15, 91, 561, 1001, 104730}
	for _, c := range composites {
		if IsProbablePrime(big.NewInt(c)) {
			t.Errorf("%d should be rejected", c)
		}
	}
}

func TestIsProbablePrimeLarge(t *testing.T) {
	// 2^89 - 1 is a Mersenne prime.
	m89 := mustInt(t, "618970019642690137449562111")
	if !IsProbablePrime(m89) {
		t.Error("2^89-1 should be probable prime")
	}

	// 2^67 - 1 = 193707721 * 761838257287 is composite.
	m67 := mustInt(t, "147573952589676412927")
	if IsProbablePrime(m67) {
		t.Error("2^67-1 should be rejected")
	}
}

func TestMillerRabinRandom(t *testing.T) {
	m89 := mustInt(t, "618970019642690137449562111")
	if !MillerRabinRandom(m89, 19, "deadbeef") {
		t.Error("prime should pass 19 rounds")
	}

	m67 := mustInt(t, "147573952589676412927")
	if MillerRabinRandom(m67, 3, "deadbeef") {
		t.Error("composite should fail")
	}

	// Carmichael numbers fool Fermat but not Miller-Rabin.
	for _, c := range []int64{561, 41041, 825265} {
		if MillerRabinRandom(big.NewInt(c), 19, "00ff00ff") {
			t.Errorf("Carmichael number %d should fail", c)
		}
	}

	if MillerRabinRandom(big.NewInt(100), 5, "ab") {
		t.Error("even composite should fail")
	}
}

func TestMillerRabinRandomDeterministicPerSeed(t *testing.T) {
	// Same seed, same verdict; the witness stream is a pure function of
	// the entropy string.
	n := mustInt(t, "618970019642690137449562111")
	a := MillerRabinRandom(n, 27, "0123456789abcdef")
	b := MillerRabinRandom(n, 27, "0123456789abcdef")
	if a != b {
		t.Error("verdict should be deterministic for a fixed seed")
	}
}

func TestProveSmall(t *testing.T) {
	for _, p := range []int64{2, 3, 65537, 104729} {
		cert, err := Prove(big.NewInt(p))
		if err != nil {
			t.Fatalf("Prove(%d) failed: %v", p, err)
		}
		if !cert.Verify() {
			t.Errorf("certificate for %d should verify", p)
		}
	}

	for _, c := range []int64{1, 91, 561, 1000000} {
		if _, err := Prove(big.NewInt(c)); err == nil {
			t.Errorf("Prove(%d) should fail", c)
		}
	}
}

func TestProveLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("factoring-heavy test")
	}

	// 2^89 - 1; its predecessor factors over small primes plus one
	// 32-bit prime, so the certificate chain stays shallow.
	m89 := mustInt(t, "618970019642690137449562111")
	cert, err := Prove(m89)
	if err != nil {
		t.Fatalf("Prove(2^89-1) failed: %v", err)
	}
	if !cert.Verify() {
		t.Error("certificate for 2^89-1 should verify")
	}
	if cert.Witness == nil {
		t.Error("large certificate should carry a witness")
	}
}

func TestIsProvablePrime(t *testing.T) {
	if !IsProvablePrime(big.NewInt(1000003)) {
		t.Error("1000003 should be provably prime")
	}
	if IsProvablePrime(big.NewInt(1000001)) {
		t.Error("1000001 = 101 * 9901 should be rejected")
	}
}

func TestCertificateTamperDetected(t *testing.T) {
	cert, err := Prove(big.NewInt(104729))
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	cert.N = big.NewInt(104730)
	if cert.Verify() {
		t.Error("tampered certificate should fail verification")
	}
}

func TestOracleImplementsAllThree(t *testing.T) {
	o := NewOracle()
	p := big.NewInt(104729)
	if !o.IsProbablePrime(p) || !o.MillerRabinRandom(p, 5, "aa") || !o.IsProvablePrime(p) {
		t.Error("oracle should accept a prime on all three tests")
	}
	c := big.NewInt(104731 * 3)
	if o.IsProbablePrime(c) || o.MillerRabinRandom(c, 5, "aa") || o.IsProvablePrime(c) {
		t.Error("oracle should reject a composite on all three tests")
	}
}
