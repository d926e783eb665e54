// Package encryption carries the encrypted-record metadata shape records
// and protocols attach to an already-encrypted payload, plus the two cipher
// boundaries (internal/encryption/symmetric, internal/encryption/asymmetric)
// the store consumes that payload through. Message-signature verification,
// DID resolution, and key management policy stay outside this package's
// scope (spec §1) — this package only encrypts/decrypts bytes and carries
// the metadata describing how.
package encryption

import "encoding/json"

// Algorithm names the cipher used to encrypt a record's data.
type Algorithm string

const AlgorithmAES256CTR Algorithm = "A256CTR"

// DerivationScheme names how a record's symmetric key was derived from its
// protocol/schema context.
type DerivationScheme string

const (
	DerivationSchemeDataFormats     DerivationScheme = "dataFormats"
	DerivationSchemeProtocolContext DerivationScheme = "protocolContext"
	DerivationSchemeProtocolPath    DerivationScheme = "protocolPath"
	DerivationSchemeSchemas         DerivationScheme = "schemas"
)

// KeyEncryptionAlgorithm names the algorithm used to wrap a record's
// symmetric key, asymmetric variants using ECIES and symmetric variants
// wrapping with one of the ciphers in the symmetric subpackage.
type KeyEncryptionAlgorithm string

const (
	KeyEncryptionECIESSecp256k1   KeyEncryptionAlgorithm = "ECIES-ES256K"
	KeyEncryptionAES256CTR        KeyEncryptionAlgorithm = "A256CTR"
	KeyEncryptionAES256GCM        KeyEncryptionAlgorithm = "A256GCM"
	KeyEncryptionXSalsa20Poly1305 KeyEncryptionAlgorithm = "XSalsa20-Poly1305"
)

// KeyEncryption is one entry in a record's keyEncryption array: the wrapped
// symmetric key plus enough metadata for the intended recipient to unwrap
// it. DerivedPublicKey and EphemeralPublicKey are carried as opaque JWKs —
// parsing/validating JWK structure is a DID/key-management concern out of
// this package's scope, so round-tripping the raw JSON is sufficient here.
type KeyEncryption struct {
	Algorithm                 KeyEncryptionAlgorithm `json:"algorithm"`
	RootKeyID                 string                 `json:"rootKeyId"`
	DerivationScheme          DerivationScheme       `json:"derivationScheme"`
	DerivedPublicKey          json.RawMessage        `json:"derivedPublicKey,omitempty"`
	EncryptedKey              string                 `json:"encryptedKey"`
	InitializationVector      string                 `json:"initializationVector"`
	EphemeralPublicKey        json.RawMessage        `json:"ephemeralPublicKey"`
	MessageAuthenticationCode string                 `json:"messageAuthenticationCode"`
}

// Encryption is the `encryption` property attached to an encrypted record:
// the algorithm and IV used for the data itself, plus one KeyEncryption
// entry per recipient able to recover the symmetric key.
type Encryption struct {
	Algorithm            Algorithm       `json:"algorithm"`
	InitializationVector string          `json:"initializationVector"`
	KeyEncryption        []KeyEncryption `json:"keyEncryption"`
}
