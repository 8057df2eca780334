package entity

// UnknownTokenName is the display name used when the catalog has no entry for an asset.
const UnknownTokenName = "Unknown Token"

const fallbackSymbolLength = 4

// AssetMetadata holds the catalog details of a token.
type AssetMetadata struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// FallbackAssetMetadata returns the display fields used when catalog resolution misses:
// a truncated identifier as symbol and a literal "Unknown Token" name.
func FallbackAssetMetadata(assetID string) AssetMetadata {
	symbol := assetID
	if len(symbol) > fallbackSymbolLength {
		symbol = symbol[:fallbackSymbolLength]
	}
	return AssetMetadata{
		Address: assetID,
		Symbol:  symbol,
		Name:    UnknownTokenName,
	}
}
