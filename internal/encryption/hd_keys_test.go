package encryption_test

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookdeck/dwn-go/internal/encryption"
)

func TestDerivedPrivateKeyIsDeterministic(t *testing.T) {
	root, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	rootKey := encryption.DerivedPrivateKey{
		RootKeyID: "root-key-id",
		Scheme:    encryption.DerivationSchemeProtocolPath,
		Key:       root,
	}

	derivedA, err := rootKey.Derive([]string{"path"})
	require.NoError(t, err)
	derivedB, err := rootKey.Derive([]string{"path"})
	require.NoError(t, err)

	assert.Equal(t, derivedA.Key.Serialize(), derivedB.Key.Serialize())
	assert.NotEqual(t, root.Serialize(), derivedA.Key.Serialize())
	assert.Equal(t, []string{"path"}, derivedA.Path)
}

func TestDerivedPrivateKeyChaining(t *testing.T) {
	root, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	rootKey := encryption.DerivedPrivateKey{RootKeyID: "root", Key: root}

	step1, err := rootKey.Derive([]string{"a"})
	require.NoError(t, err)
	step2, err := step1.Derive([]string{"b"})
	require.NoError(t, err)

	direct, err := rootKey.Derive([]string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, direct.Key.Serialize(), step2.Key.Serialize())
	assert.Equal(t, []string{"a", "b"}, step2.Path)
}

func TestDeriveSecp256k1PathRejectsEmptySegment(t *testing.T) {
	root, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	_, err = encryption.DeriveSecp256k1Path(root, []string{""})
	assert.Error(t, err)
}
