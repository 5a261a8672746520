// Package keyio encodes and decodes DSA key envelopes: the OpenSSL
// traditional PEM format for private keys, and the ssh-dss public-key
// formats (RFC 4716 blocks and one-line authorized_keys entries).
//
// Decoded keys are returned as populated but unvalidated structures;
// callers must run Key.Validate before using external material.
// Encrypted envelopes are not supported.
package keyio

import (
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/go-dsa/pkg/dsa"
)

const privatePEMType = "DSA PRIVATE KEY"

// ErrEnvelope marks a malformed or unsupported envelope.
var ErrEnvelope = errors.New("keyio: bad envelope")

// pkcs1DSA mirrors the OpenSSL traditional private-key body:
// SEQUENCE { version, p, q, g, pub, priv }.
type pkcs1DSA struct {
	Version int
	P       *big.Int
	Q       *big.Int
	G       *big.Int
	Pub     *big.Int
	Priv    *big.Int
}

// EncodePrivatePEM serializes a private key in the OpenSSL traditional
// "DSA PRIVATE KEY" PEM format.
func EncodePrivatePEM(key *dsa.Key) ([]byte, error) {
	if key == nil || key.PrivKey == nil {
		return nil, fmt.Errorf("%w: a private key is required", ErrEnvelope)
	}
	if key.P == nil || key.Q == nil || key.G == nil || key.PubKey == nil {
		return nil, fmt.Errorf("%w: key is missing domain parameters", ErrEnvelope)
	}

	der, err := asn1.Marshal(pkcs1DSA{
		Version: 0,
		P:       key.P,
		Q:       key.Q,
		G:       key.G,
		Pub:     key.PubKey,
		Priv:    key.PrivKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: privatePEMType, Bytes: der}), nil
}

// DecodePrivatePEM parses a "DSA PRIVATE KEY" PEM block. The returned
// key is not validated.
func DecodePrivatePEM(data []byte) (*dsa.Key, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrEnvelope)
	}
	if block.Type != privatePEMType {
		return nil, fmt.Errorf("%w: unexpected PEM type %q", ErrEnvelope, block.Type)
	}

	var body pkcs1DSA
	rest, err := asn1.Unmarshal(block.Bytes, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing data after key body", ErrEnvelope)
	}
	if body.Version != 0 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrEnvelope, body.Version)
	}

	return &dsa.Key{
		P:       body.P,
		Q:       body.Q,
		G:       body.G,
		PubKey:  body.Pub,
		PrivKey: body.Priv,
	}, nil
}
