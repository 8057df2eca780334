package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"

	"portfolio_aggregator/internal/domain/entity"
)

// Token program owners whose accounts count as holdings.
var (
	TokenProgramID     = solana.TokenProgramID.String()
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb").String()
)

// WrappedSOLMint is the mint used to price native SOL.
var WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112").String()

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	MainnetBeta = entity.NetworkDefinition{
		Name:             "Solana Mainnet Beta",
		Identifier:       "mainnet-beta",
		NativeAssetID:    "SOL",
		NativeSymbol:     "SOL",
		NativeName:       "Solana",
		NativePricingID:  WrappedSOLMint,
		Decimals:         9,
		PrimaryRPCURL:    "https://api.mainnet-beta.solana.com",
		TokenProgramIDs:  []string{TokenProgramID, Token2022ProgramID},
		BlockExplorerURL: "https://explorer.solana.com",
	}
	Devnet = entity.NetworkDefinition{
		Name:             "Solana Devnet",
		Identifier:       "devnet",
		NativeAssetID:    "SOL",
		NativeSymbol:     "SOL",
		NativeName:       "Solana",
		NativePricingID:  WrappedSOLMint,
		Decimals:         9,
		PrimaryRPCURL:    "https://api.devnet.solana.com",
		TokenProgramIDs:  []string{TokenProgramID, Token2022ProgramID},
		BlockExplorerURL: "https://explorer.solana.com/?cluster=devnet",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	MainnetBeta.Identifier: MainnetBeta,
	Devnet.Identifier:      Devnet,
}

// ByIdentifier returns the definition for identifier (case-insensitive).
func ByIdentifier(identifier string) (entity.NetworkDefinition, error) {
	def, ok := allKnownDefinitions[strings.ToLower(strings.TrimSpace(identifier))]
	if !ok {
		return entity.NetworkDefinition{}, fmt.Errorf("unknown network %q, known: %s", identifier, strings.Join(Identifiers(), ", "))
	}
	def.TokenProgramIDs = append([]string(nil), def.TokenProgramIDs...)
	return def, nil
}

// Identifiers lists the known network identifiers in sorted order.
func Identifiers() []string {
	ids := make([]string, 0, len(allKnownDefinitions))
	for id := range allKnownDefinitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
