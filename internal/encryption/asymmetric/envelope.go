// Package asymmetric implements ECIES key-wrapping over the two curves
// spec §3's keyEncryption metadata names: secp256k1 (ECIES-ES256K) and
// x25519. Both share the same envelope shape and the same HKDF-SHA256 →
// AES-256-CTR tail, grounded on original_source's
// encryption/asymmetric/{secp256k1,x25519}.rs, which derive an ECDH shared
// point and HKDF-expand it into a symmetric key the same way.
package asymmetric

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/hookdeck/dwn-go/internal/encryption/symmetric"
)

// Envelope is an ECIES-sealed payload: the sender's ephemeral public key
// (so the recipient can rederive the shared secret with their static
// private key), the IV, and the AES-256-CTR ciphertext.
type Envelope struct {
	EphemeralPublicKey []byte
	IV                 []byte
	Ciphertext         []byte
}

func deriveSymmetricKey(shared []byte) ([]byte, error) {
	key := make([]byte, symmetric.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, nil), key); err != nil {
		return nil, fmt.Errorf("asymmetric: derive key: %w", err)
	}
	return key, nil
}

func seal(shared, plaintext []byte) (Envelope, error) {
	key, err := deriveSymmetricKey(shared)
	if err != nil {
		return Envelope{}, err
	}

	iv := make([]byte, symmetric.AES256CTRIVSize)
	if _, err := rand.Read(iv); err != nil {
		return Envelope{}, fmt.Errorf("asymmetric: generate iv: %w", err)
	}

	ciphertext, err := symmetric.AES256CTR.Encrypt(key, iv, plaintext)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{IV: iv, Ciphertext: ciphertext}, nil
}

func open(shared []byte, env Envelope) ([]byte, error) {
	key, err := deriveSymmetricKey(shared)
	if err != nil {
		return nil, err
	}
	return symmetric.AES256CTR.Decrypt(key, env.IV, env.Ciphertext)
}
