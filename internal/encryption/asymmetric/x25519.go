package asymmetric

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// EncryptX25519 seals plaintext for recipientPublicKey, grounded on
// original_source's x25519.rs ECDH+HKDF construction.
func EncryptX25519(recipientPublicKey [32]byte, plaintext []byte) (Envelope, error) {
	var ephemeralPriv [32]byte
	if _, err := rand.Read(ephemeralPriv[:]); err != nil {
		return Envelope{}, fmt.Errorf("asymmetric: generate ephemeral x25519 key: %w", err)
	}

	ephemeralPub, err := curve25519.X25519(ephemeralPriv[:], curve25519.Basepoint)
	if err != nil {
		return Envelope{}, fmt.Errorf("asymmetric: derive ephemeral x25519 public key: %w", err)
	}

	shared, err := curve25519.X25519(ephemeralPriv[:], recipientPublicKey[:])
	if err != nil {
		return Envelope{}, fmt.Errorf("asymmetric: x25519 ecdh: %w", err)
	}

	env, err := seal(shared, plaintext)
	if err != nil {
		return Envelope{}, err
	}
	env.EphemeralPublicKey = ephemeralPub
	return env, nil
}

// DecryptX25519 opens an Envelope produced by EncryptX25519 using the
// recipient's static private key.
func DecryptX25519(recipientPrivateKey [32]byte, env Envelope) ([]byte, error) {
	shared, err := curve25519.X25519(recipientPrivateKey[:], env.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("asymmetric: x25519 ecdh: %w", err)
	}
	return open(shared, env)
}
