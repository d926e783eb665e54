package symmetric

import (
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrAuthenticationFailed is returned by an AEAD cipher's Decrypt when the
// ciphertext's authentication tag doesn't verify.
var ErrAuthenticationFailed = errors.New("symmetric: authentication failed")

// XSalsa20Poly1305 implements Cipher over golang.org/x/crypto/nacl/secretbox,
// grounded on original_source's xsalsa20_poly1305.rs (crypto_secretbox's
// XSalsa20Poly1305, the same construction secretbox implements).
type xsalsa20Poly1305 struct{}

var XSalsa20Poly1305 Cipher = xsalsa20Poly1305{}

const XSalsa20Poly1305NonceSize = 24

func (xsalsa20Poly1305) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	k, nonce, err := xsalsaKeyNonce(key, iv)
	if err != nil {
		return nil, err
	}
	return secretbox.Seal(nil, plaintext, nonce, k), nil
}

func (xsalsa20Poly1305) Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	k, nonce, err := xsalsaKeyNonce(key, iv)
	if err != nil {
		return nil, err
	}
	out, ok := secretbox.Open(nil, ciphertext, nonce, k)
	if !ok {
		return nil, ErrAuthenticationFailed
	}
	return out, nil
}

func xsalsaKeyNonce(key, iv []byte) (*[32]byte, *[24]byte, error) {
	if len(key) != KeySize {
		return nil, nil, sizeError("key", len(key), KeySize)
	}
	if len(iv) != XSalsa20Poly1305NonceSize {
		return nil, nil, sizeError("iv", len(iv), XSalsa20Poly1305NonceSize)
	}
	var k [32]byte
	var nonce [24]byte
	copy(k[:], key)
	copy(nonce[:], iv)
	return &k, &nonce, nil
}
