package entity

// JupiterToken is one entry of the Jupiter token list.
type JupiterToken struct {
	Address  string   `json:"address"`
	ChainID  int      `json:"chainId"`
	Decimals int      `json:"decimals"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	LogoURI  string   `json:"logoURI"`
	Tags     []string `json:"tags"`
}

// JupiterPriceResponse is the body returned by the Jupiter price API (v2).
// Entries for ids the API cannot price come back as null.
type JupiterPriceResponse struct {
	Data      map[string]*JupiterPrice `json:"data"`
	TimeTaken float64                  `json:"timeTaken"`
}

// JupiterPrice is a single quote. Price is a decimal string.
type JupiterPrice struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Price string `json:"price"`
}
