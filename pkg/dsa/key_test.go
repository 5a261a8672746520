package dsa

import (
	"context"
	"errors"
	"math/big"
	"testing"
)

// knownKey reconstructs the fixed 186-2 domain from the seeded
// generation vector, with a private exponent chosen by hand.
func knownKey(t *testing.T) *Key {
	t.Helper()
	p := mustInt(t, "115482051167633094500191748323181804927379083786928495023621353761489130784759")
	q := mustInt(t, "1095435453799935163054359021016956586699994202739")
	g := mustInt(t, "14122751482973828474532542163953863872972911083335982934096986375522777652323")
	x := big.NewInt(123456789)
	y := new(big.Int).Exp(g, x, p)
	return &Key{P: p, Q: q, G: g, PubKey: y, PrivKey: x}
}

func TestKeyValidateAccepts(t *testing.T) {
	key := knownKey(t)
	if err := key.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := key.Public().Validate(); err != nil {
		t.Fatalf("Validate public-only: %v", err)
	}
}

func TestKeyValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Key)
	}{
		{"missing parameters", func(k *Key) { k.P = nil }},
		{"composite q", func(k *Key) { k.Q = new(big.Int).Add(k.Q, big.NewInt(1)) }},
		{"composite p", func(k *Key) { k.P = new(big.Int).Add(k.P, big.NewInt(2)) }},
		{"generator of wrong order", func(k *Key) { k.G = new(big.Int).Add(k.G, big.NewInt(1)) }},
		{"generator one", func(k *Key) { k.G = big.NewInt(1) }},
		{"private key zero", func(k *Key) { k.PrivKey = big.NewInt(0) }},
		{"private key at q", func(k *Key) { k.PrivKey = new(big.Int).Set(k.Q) }},
		{"mismatched public key", func(k *Key) { k.PubKey = new(big.Int).Add(k.PubKey, big.NewInt(1)) }},
		{"no key material", func(k *Key) { k.PrivKey, k.PubKey = nil, nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key := knownKey(t)
			tc.mutate(key)
			if err := key.Validate(); !errors.Is(err, ErrUsage) {
				t.Fatalf("err = %v, want ErrUsage", err)
			}
		})
	}
}

func TestPublicStripsPrivate(t *testing.T) {
	key := knownKey(t)
	pub := key.Public()
	if pub.PrivKey != nil {
		t.Error("Public() kept the private exponent")
	}
	if pub.P.Cmp(key.P) != 0 || pub.Q.Cmp(key.Q) != 0 || pub.G.Cmp(key.G) != 0 || pub.PubKey.Cmp(key.PubKey) != 0 {
		t.Error("Public() altered the public fields")
	}
}

func TestGeneratedKeyValidates(t *testing.T) {
	key, _, err := New().KeyGen(context.Background(), GenConfig{Size: 512})
	if err != nil {
		t.Fatalf("KeyGen: %v", err)
	}
	if err := key.Validate(); err != nil {
		t.Fatalf("Validate on generated key: %v", err)
	}
}
