package numutil

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/mahdiidarabi/go-dsa/internal/entropy"
)

func TestOS2IP(t *testing.T) {
	n := OS2IP([]byte("abcd"))
	if n.Cmp(big.NewInt(1633837924)) != 0 {
		t.Errorf("OS2IP(\"abcd\") = %s, want 1633837924", n)
	}

	if OS2IP(nil).Sign() != 0 {
		t.Error("OS2IP of empty string should be zero")
	}
}

func TestI2OSP(t *testing.T) {
	got := I2OSP(big.NewInt(1633837924))
	if !bytes.Equal(got, []byte("abcd")) {
		t.Errorf("I2OSP(1633837924) = %q, want \"abcd\"", got)
	}

	if len(I2OSP(new(big.Int))) != 0 {
		t.Error("I2OSP(0) should be the empty string")
	}
}

func TestOctetRoundTrips(t *testing.T) {
	values := []string{"0", "1", "255", "256", "65537", "18446744073709551616"}
	for _, s := range values {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			t.Fatalf("bad test value %q", s)
		}
		back := OS2IP(I2OSP(n))
		if back.Cmp(n) != 0 {
			t.Errorf("OS2IP(I2OSP(%s)) = %s", s, back)
		}
	}

	// No leading zero byte: the byte round-trip is exact.
	b := []byte{0x01, 0x00, 0xff}
	if got := I2OSP(OS2IP(b)); !bytes.Equal(got, b) {
		t.Errorf("I2OSP(OS2IP(%x)) = %x", b, got)
	}
}

func TestBitSize(t *testing.T) {
	cases := []struct {
		n    int64
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{255, 8},
		{256, 9},
		{1633837924, 31},
	}
	for _, c := range cases {
		if got := BitSize(big.NewInt(c.n)); got != c.want {
			t.Errorf("BitSize(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestModExp(t *testing.T) {
	a := big.NewInt(23098230958)
	e := big.NewInt(35)
	n := big.NewInt(10980295809854)
	want := big.NewInt(5115018827600)
	if got := ModExp(a, e, n); got.Cmp(want) != 0 {
		t.Errorf("ModExp = %s, want %s", got, want)
	}
}

func TestModInverse(t *testing.T) {
	a := big.NewInt(34093840983)
	n := big.NewInt(23509283509)
	inv, err := ModInverse(a, n)
	if err != nil {
		t.Fatalf("ModInverse failed: %v", err)
	}
	if inv.Cmp(big.NewInt(7281956166)) != 0 {
		t.Errorf("ModInverse = %s, want 7281956166", inv)
	}

	check := new(big.Int).Mul(a, inv)
	check.Mod(check, n)
	if check.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("a * inv mod n = %s, want 1", check)
	}
}

func TestModInverseNoInverse(t *testing.T) {
	if _, err := ModInverse(big.NewInt(6), big.NewInt(9)); err == nil {
		t.Error("expected error when gcd(a, n) != 1")
	}
}

func TestMakeRandomWidth(t *testing.T) {
	src := entropy.Shared()
	for _, bits := range []int{1, 7, 8, 9, 159, 160, 161, 512} {
		n, err := MakeRandom(src, bits)
		if err != nil {
			t.Fatalf("MakeRandom(%d) failed: %v", bits, err)
		}
		if n.BitLen() != bits {
			t.Errorf("MakeRandom(%d) has bit length %d", bits, n.BitLen())
		}

		lo := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		hi := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		if n.Cmp(lo) < 0 || n.Cmp(hi) >= 0 {
			t.Errorf("MakeRandom(%d) = %s outside [2^%d, 2^%d)", bits, n, bits-1, bits)
		}
	}
}

func TestMakeRandomRejectsZeroBits(t *testing.T) {
	if _, err := MakeRandom(entropy.Shared(), 0); err == nil {
		t.Error("expected error for zero bit count")
	}
}

func TestMakeRandomRange(t *testing.T) {
	src := entropy.Shared()
	max := big.NewInt(1000)
	for i := 0; i < 50; i++ {
		n, err := MakeRandomRange(src, max)
		if err != nil {
			t.Fatalf("MakeRandomRange failed: %v", err)
		}
		if n.Sign() < 0 || n.Cmp(max) > 0 {
			t.Errorf("MakeRandomRange(1000) = %s out of range", n)
		}
	}

	zero, err := MakeRandomRange(src, new(big.Int))
	if err != nil {
		t.Fatalf("MakeRandomRange(0) failed: %v", err)
	}
	if zero.Sign() != 0 {
		t.Errorf("MakeRandomRange(0) = %s, want 0", zero)
	}
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12345", 12345},
		{"0x1f", 31},
		{"0XFF", 255},
		{" 42 ", 42},
	}
	for _, c := range cases {
		n, err := ParseInt(c.in)
		if err != nil {
			t.Fatalf("ParseInt(%q) failed: %v", c.in, err)
		}
		if n.Cmp(big.NewInt(c.want)) != 0 {
			t.Errorf("ParseInt(%q) = %s, want %d", c.in, n, c.want)
		}
	}

	if _, err := ParseInt("not a number"); err == nil {
		t.Error("expected parse failure")
	}

	if FromInt64(7).Cmp(big.NewInt(7)) != 0 {
		t.Error("FromInt64 mismatch")
	}
}
