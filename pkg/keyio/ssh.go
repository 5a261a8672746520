package keyio

import (
	cryptodsa "crypto/dsa"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/mahdiidarabi/go-dsa/pkg/dsa"
)

const (
	ssh2Begin = "---- BEGIN SSH2 PUBLIC KEY ----"
	ssh2End   = "---- END SSH2 PUBLIC KEY ----"
)

// sshPublicKey bridges the key through the deprecated crypto/dsa types,
// which is the only DSA shape x/crypto/ssh understands. Only the public
// half crosses the bridge.
func sshPublicKey(key *dsa.Key) (ssh.PublicKey, error) {
	if key == nil || key.P == nil || key.Q == nil || key.G == nil || key.PubKey == nil {
		return nil, fmt.Errorf("%w: a complete public key is required", ErrEnvelope)
	}
	pub := &cryptodsa.PublicKey{
		Parameters: cryptodsa.Parameters{P: key.P, Q: key.Q, G: key.G},
		Y:          key.PubKey,
	}
	out, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	return out, nil
}

// EncodeAuthorizedKey serializes the public half as a one-line OpenSSH
// authorized_keys entry. A non-empty comment is appended after the blob.
func EncodeAuthorizedKey(key *dsa.Key, comment string) ([]byte, error) {
	pub, err := sshPublicKey(key)
	if err != nil {
		return nil, err
	}
	line := ssh.MarshalAuthorizedKey(pub)
	if comment == "" {
		return line, nil
	}
	line = line[:len(line)-1] // drop the trailing newline before the comment
	return append(append(line, ' '), append([]byte(comment), '\n')...), nil
}

// DecodeAuthorizedKey parses a one-line authorized_keys entry into a
// public-only key and its comment. x/crypto/ssh parses ssh-dss keys only
// with a 1024-bit p; other sizes are rejected with ErrEnvelope.
func DecodeAuthorizedKey(data []byte) (*dsa.Key, string, error) {
	pub, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	key, err := fromSSHPublicKey(pub)
	if err != nil {
		return nil, "", err
	}
	return key, comment, nil
}

// EncodePublicSSH2 serializes the public half as an RFC 4716 block with
// the base64 body wrapped at 70 columns.
func EncodePublicSSH2(key *dsa.Key, comment string) ([]byte, error) {
	pub, err := sshPublicKey(key)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(ssh2Begin)
	b.WriteByte('\n')
	if comment != "" {
		fmt.Fprintf(&b, "Comment: %q\n", comment)
	}

	body := base64.StdEncoding.EncodeToString(pub.Marshal())
	for len(body) > 70 {
		b.WriteString(body[:70])
		b.WriteByte('\n')
		body = body[70:]
	}
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(ssh2End)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// DecodePublicSSH2 parses an RFC 4716 block into a public-only key.
// Header lines other than Comment are skipped. As with
// DecodeAuthorizedKey, only keys with a 1024-bit p are accepted.
func DecodePublicSSH2(data []byte) (*dsa.Key, string, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	var body strings.Builder
	var comment string
	inBlock := false
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == ssh2Begin:
			inBlock = true
		case line == ssh2End:
			inBlock = false
		case !inBlock || line == "":
			continue
		case strings.Contains(line, ":"):
			// Header line, possibly continued with a trailing backslash.
			for strings.HasSuffix(line, "\\") && i+1 < len(lines) {
				i++
				line = line[:len(line)-1] + strings.TrimSpace(lines[i])
			}
			if v, ok := strings.CutPrefix(line, "Comment:"); ok {
				comment = strings.Trim(strings.TrimSpace(v), `"`)
			}
		default:
			body.WriteString(line)
		}
	}

	if body.Len() == 0 {
		return nil, "", fmt.Errorf("%w: no SSH2 key body found", ErrEnvelope)
	}
	blob, err := base64.StdEncoding.DecodeString(body.String())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	pub, err := ssh.ParsePublicKey(blob)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	key, err := fromSSHPublicKey(pub)
	if err != nil {
		return nil, "", err
	}
	return key, comment, nil
}

func fromSSHPublicKey(pub ssh.PublicKey) (*dsa.Key, error) {
	if pub.Type() != ssh.KeyAlgoDSA {
		return nil, fmt.Errorf("%w: key type is %s, want %s", ErrEnvelope, pub.Type(), ssh.KeyAlgoDSA)
	}
	wrapped, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: cannot recover key material", ErrEnvelope)
	}
	bridged, ok := wrapped.CryptoPublicKey().(*cryptodsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: cannot recover key material", ErrEnvelope)
	}
	return &dsa.Key{P: bridged.P, Q: bridged.Q, G: bridged.G, PubKey: bridged.Y}, nil
}
