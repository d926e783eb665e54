package symmetric

import (
	"crypto/aes"
	"crypto/cipher"
)

// AES256CTR implements Cipher with AES-256 in CTR mode, grounded on
// original_source's aes_ctr.rs. CTR has no authentication tag; callers that
// need integrity should carry a separate MAC (as the keyEncryption
// metadata's messageAuthenticationCode field does for wrapped keys).
type aes256CTR struct{}

var AES256CTR Cipher = aes256CTR{}

const AES256CTRIVSize = aes.BlockSize // 16

func (aes256CTR) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := newAES256Block(key, iv)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(out, plaintext)
	return out, nil
}

func (aes256CTR) Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	// CTR is its own inverse.
	return aes256CTR{}.Encrypt(key, iv, ciphertext)
}

func newAES256Block(key, iv []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, sizeError("key", len(key), KeySize)
	}
	if len(iv) != AES256CTRIVSize {
		return nil, sizeError("iv", len(iv), AES256CTRIVSize)
	}
	return aes.NewCipher(key)
}
