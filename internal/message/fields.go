package message

import "fmt"

// JWS is an opaque JWS envelope: signature verification is out of scope for
// this core, so the payload and signature entries round-trip losslessly
// without being interpreted.
type JWS struct {
	Payload    string           `json:"payload,omitempty"`
	Signatures []SignatureEntry `json:"signatures,omitempty"`
}

// SignatureEntry is one detached-JWS signature over Payload.
type SignatureEntry struct {
	Payload   string `json:"payload,omitempty"`
	Protected string `json:"protected,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// Authorization is the owner-signed envelope attached to most messages.
type Authorization struct {
	Signature            JWS      `json:"signature"`
	AuthorDelegatedGrant *Message `json:"authorDelegatedGrant,omitempty"`
	OwnerSignature       *JWS     `json:"ownerSignature,omitempty"`
	OwnerDelegatedGrant  *Message `json:"ownerDelegatedGrant,omitempty"`
}

// EncryptionAlgorithm names the symmetric cipher used to encrypt a record's
// data.
type EncryptionAlgorithm string

const EncryptionAlgorithmA256CTR EncryptionAlgorithm = "A256CTR"

// DerivationScheme names how a record's symmetric key was derived from a
// root key.
type DerivationScheme string

const (
	DerivationSchemeDataFormats    DerivationScheme = "dataFormats"
	DerivationSchemeProtocolContext DerivationScheme = "protocolContext"
	DerivationSchemeProtocolPath   DerivationScheme = "protocolPath"
	DerivationSchemeSchemas        DerivationScheme = "schemas"
)

// KeyEncryptionAlgorithm names the asymmetric cipher wrapping a record's
// symmetric key for one recipient.
type KeyEncryptionAlgorithm string

const KeyEncryptionAlgorithmECIESES256K KeyEncryptionAlgorithm = "ECIES-ES256K"

// KeyEncryption is one recipient's wrapped copy of a record's symmetric key.
type KeyEncryption struct {
	Algorithm                 KeyEncryptionAlgorithm `json:"algorithm"`
	RootKeyID                 string                 `json:"rootKeyId"`
	DerivationScheme          DerivationScheme       `json:"derivationScheme"`
	DerivedPublicKey          any                    `json:"derivedPublicKey,omitempty"`
	EncryptedKey              string                 `json:"encryptedKey"`
	InitializationVector      string                 `json:"initializationVector"`
	EphemeralPublicKey        any                    `json:"ephemeralPublicKey"`
	MessageAuthenticationCode string                 `json:"messageAuthenticationCode"`
}

// Encryption is the per-record encryption envelope: the symmetric cipher
// used on the data, plus one KeyEncryption entry per recipient able to
// unwrap it.
type Encryption struct {
	Algorithm            EncryptionAlgorithm `json:"algorithm"`
	InitializationVector string              `json:"initializationVector"`
	KeyEncryption        []KeyEncryption     `json:"keyEncryption"`
}

// Fields is the polymorphic body that flattens onto a Message beside its
// descriptor. Every field is optional; which ones are populated depends on
// the descriptor's interface and method.
type Fields struct {
	Authorization *Authorization `json:"authorization,omitempty"`
	RecordID      string         `json:"recordId,omitempty"`
	ContextID     string         `json:"contextId,omitempty"`
	Encryption    *Encryption    `json:"encryption,omitempty"`
	Attestation   *JWS           `json:"attestation,omitempty"`
	EncodedData   string         `json:"encodedData,omitempty"`
	InitialWrite  *Message       `json:"initialWrite,omitempty"`
}

func unknownMethodError(iface Interface, method Method) error {
	return fmt.Errorf("message: unknown method %q for interface %q", method, iface)
}
