package entity

// NetworkDefinition holds the configuration for the ledger network the portfolio is read from.
type NetworkDefinition struct {
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"` // e.g. "mainnet-beta", "devnet"
	NativeAssetID    string   `json:"nativeAssetId" yaml:"nativeAssetId"`
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeName       string   `json:"nativeName" yaml:"nativeName"`
	NativePricingID  string   `json:"nativePricingId" yaml:"nativePricingId"` // wrapped mint used for price lookups
	Decimals         int32    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	TokenProgramIDs  []string `json:"tokenProgramIds" yaml:"tokenProgramIds"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}

// IsNative reports whether assetID is the reserved identifier of the network's native currency.
func (d NetworkDefinition) IsNative(assetID string) bool {
	return assetID == d.NativeAssetID
}

// PricingID maps an asset identifier to the identifier used for price quotes.
func (d NetworkDefinition) PricingID(assetID string) string {
	if d.IsNative(assetID) && d.NativePricingID != "" {
		return d.NativePricingID
	}
	return assetID
}
