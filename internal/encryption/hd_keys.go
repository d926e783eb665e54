package encryption

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/hkdf"
)

// DerivedPrivateKey is a secp256k1 key reachable from a root key by walking
// a derivation path, so records sharing a protocol/schema context can
// derive the same encryption key independently instead of storing it.
// Grounded on original_source's hd_keys.rs DerivedPrivateJWK.
type DerivedPrivateKey struct {
	RootKeyID string
	Scheme    DerivationScheme
	Path      []string
	Key       *secp256k1.PrivateKey
}

// Derive walks path from d, appending it to d's own path, and returns the
// derived key. Both Rust and this implementation are deterministic: the
// same root key and path always derive the same key.
func (d DerivedPrivateKey) Derive(path []string) (DerivedPrivateKey, error) {
	key, err := DeriveSecp256k1Path(d.Key, path)
	if err != nil {
		return DerivedPrivateKey{}, err
	}
	full := make([]string, 0, len(d.Path)+len(path))
	full = append(full, d.Path...)
	full = append(full, path...)
	return DerivedPrivateKey{RootKeyID: d.RootKeyID, Scheme: d.Scheme, Path: full, Key: key}, nil
}

// DeriveSecp256k1Path folds HKDF-SHA256 over root, one path segment at a
// time: each step's HKDF info is the segment, its IKM is the current key's
// serialized bytes, and its 32-byte output becomes the next secret scalar.
func DeriveSecp256k1Path(root *secp256k1.PrivateKey, path []string) (*secp256k1.PrivateKey, error) {
	key := root
	for _, segment := range path {
		if segment == "" {
			return nil, fmt.Errorf("encryption: empty derivation path segment")
		}
		next, err := deriveHKDFSecp256k1(key, []byte(segment))
		if err != nil {
			return nil, err
		}
		key = next
	}
	return key, nil
}

func deriveHKDFSecp256k1(key *secp256k1.PrivateKey, info []byte) (*secp256k1.PrivateKey, error) {
	okm := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key.Serialize(), nil, info), okm); err != nil {
		return nil, fmt.Errorf("encryption: derive key: %w", err)
	}
	return secp256k1.PrivKeyFromBytes(okm), nil
}
