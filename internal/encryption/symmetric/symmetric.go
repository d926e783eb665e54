// Package symmetric implements the record-data ciphers named in spec §3's
// encryption metadata (A256CTR, A256GCM, XSalsa20-Poly1305), each grounded
// on the corresponding original_source cipher of the same name but
// collapsed from a stateful, IV-seekable stream cipher into a single
// stateless Encrypt/Decrypt call — the store only ever needs to seal or
// open one already-buffered inline blob, never a chunked stream.
package symmetric

import "fmt"

// Cipher encrypts and decrypts a whole plaintext/ciphertext in one call.
// key and iv sizes are cipher-specific; a wrong size returns an error
// rather than panicking.
type Cipher interface {
	Encrypt(key, iv, plaintext []byte) ([]byte, error)
	Decrypt(key, iv, ciphertext []byte) ([]byte, error)
}

// KeySize is the symmetric key length every cipher in this package uses.
const KeySize = 32

func sizeError(what string, got, want int) error {
	return fmt.Errorf("symmetric: invalid %s length: got %d, want %d", what, got, want)
}
