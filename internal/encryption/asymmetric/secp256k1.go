package asymmetric

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// EncryptSecp256k1 seals plaintext for recipient: it generates a fresh
// ephemeral keypair, ECDH's it against recipient, and seals plaintext under
// the derived key.
func EncryptSecp256k1(recipient *secp256k1.PublicKey, plaintext []byte) (Envelope, error) {
	ephemeral, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return Envelope{}, fmt.Errorf("asymmetric: generate ephemeral secp256k1 key: %w", err)
	}

	env, err := seal(secp256k1SharedSecret(ephemeral, recipient), plaintext)
	if err != nil {
		return Envelope{}, err
	}
	env.EphemeralPublicKey = ephemeral.PubKey().SerializeCompressed()
	return env, nil
}

// DecryptSecp256k1 opens an Envelope produced by EncryptSecp256k1 using the
// recipient's static private key.
func DecryptSecp256k1(recipient *secp256k1.PrivateKey, env Envelope) ([]byte, error) {
	ephemeralPub, err := secp256k1.ParsePubKey(env.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("asymmetric: parse ephemeral secp256k1 key: %w", err)
	}
	return open(secp256k1SharedSecret(recipient, ephemeralPub), env)
}

// secp256k1SharedSecret is ECDH: priv * pub, reduced to its affine x
// coordinate, the same construction original_source's secp256k1.rs uses
// before HKDF-expanding it (there via k256::ecdh::diffie_hellman).
func secp256k1SharedSecret(priv *secp256k1.PrivateKey, pub *secp256k1.PublicKey) []byte {
	var point, result secp256k1.JacobianPoint
	pub.AsJacobian(&point)
	secp256k1.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()
	x := result.X.Bytes()
	return x[:]
}
