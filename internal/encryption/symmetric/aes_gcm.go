package symmetric

import (
	"crypto/aes"
	"crypto/cipher"
)

// AES256GCM implements Cipher with AES-256-GCM, grounded on
// original_source's aes_gcm.rs. The Poly1305-style authentication tag is
// appended to the ciphertext by crypto/cipher.AEAD, matching the Rust
// side's in-place seal/open.
type aes256GCM struct{}

var AES256GCM Cipher = aes256GCM{}

const AES256GCMIVSize = 12

func (aes256GCM) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	gcm, err := newAES256GCM(key, iv)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, iv, plaintext, nil), nil
}

func (aes256GCM) Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	gcm, err := newAES256GCM(key, iv)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, iv, ciphertext, nil)
}

func newAES256GCM(key, iv []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, sizeError("key", len(key), KeySize)
	}
	if len(iv) != AES256GCMIVSize {
		return nil, sizeError("iv", len(iv), AES256GCMIVSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
