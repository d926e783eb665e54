package asymmetric

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

// Ed25519PublicKeyToX25519 converts a birationally-equivalent ed25519
// signing key into its x25519 Montgomery form, so a DID's single ed25519
// key can also serve as an X25519 encryption recipient (spec §9's identity
// key reuse note), grounded on original_source's hd_keys.rs key-conversion
// path and implemented via edwards25519.Point's Montgomery-form export.
func Ed25519PublicKeyToX25519(pub ed25519.PublicKey) ([32]byte, error) {
	var out [32]byte
	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return out, fmt.Errorf("asymmetric: invalid ed25519 public key: %w", err)
	}
	copy(out[:], p.BytesMontgomery())
	return out, nil
}

// Ed25519PrivateKeyToX25519 converts an ed25519 private key to its x25519
// scalar via the standard seed-hash-and-clamp construction.
func Ed25519PrivateKeyToX25519(priv ed25519.PrivateKey) [32]byte {
	var out [32]byte
	h := sha512.Sum512(priv.Seed())
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	copy(out[:], h[:32])
	return out
}
