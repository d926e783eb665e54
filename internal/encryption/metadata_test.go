package encryption_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookdeck/dwn-go/internal/encryption"
)

func TestEncryptionRoundTripsThroughJSON(t *testing.T) {
	enc := encryption.Encryption{
		Algorithm:            encryption.AlgorithmAES256CTR,
		InitializationVector: "ZjBmMWYyZjM=",
		KeyEncryption: []encryption.KeyEncryption{
			{
				Algorithm:                 encryption.KeyEncryptionECIESSecp256k1,
				RootKeyID:                 "did:example:123#key-1",
				DerivationScheme:          encryption.DerivationSchemeProtocolPath,
				EphemeralPublicKey:        json.RawMessage(`{"kty":"EC","crv":"secp256k1"}`),
				EncryptedKey:              "ZW5jcnlwdGVkLWtleQ==",
				InitializationVector:      "aXY=",
				MessageAuthenticationCode: "bWFj",
			},
		},
	}

	data, err := json.Marshal(enc)
	require.NoError(t, err)

	var decoded encryption.Encryption
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, enc, decoded)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "A256CTR", raw["algorithm"])

	keyEnc := raw["keyEncryption"].([]any)[0].(map[string]any)
	assert.Equal(t, "ECIES-ES256K", keyEnc["algorithm"])
	assert.Equal(t, "protocolPath", keyEnc["derivationScheme"])
}
