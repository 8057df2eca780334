package networkdefinition

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByIdentifier(t *testing.T) {
	def, err := ByIdentifier(" Mainnet-Beta ")
	require.NoError(t, err)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", def.PrimaryRPCURL)
	assert.Equal(t, "SOL", def.NativeAssetID)
	assert.Equal(t, int32(9), def.Decimals)
	assert.Equal(t, WrappedSOLMint, def.PricingID("SOL"))
	assert.Equal(t, "abc", def.PricingID("abc"))
	assert.True(t, def.IsNative("SOL"))
	assert.ElementsMatch(t, []string{TokenProgramID, Token2022ProgramID}, def.TokenProgramIDs)

	def.TokenProgramIDs[0] = "mutated"
	again, err := ByIdentifier("mainnet-beta")
	require.NoError(t, err)
	assert.Equal(t, TokenProgramID, again.TokenProgramIDs[0])

	_, err = ByIdentifier("ethereum")
	assert.Error(t, err)
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, []string{"devnet", "mainnet-beta"}, Identifiers())
}

func TestProgramIDsAreValidKeys(t *testing.T) {
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", TokenProgramID)
	for _, key := range []string{TokenProgramID, Token2022ProgramID, WrappedSOLMint} {
		_, err := solana.PublicKeyFromBase58(key)
		assert.NoError(t, err, key)
	}
}
