package entity

import "encoding/json"

// RPCContext is the context object wrapped around most Solana RPC results.
type RPCContext struct {
	Slot uint64 `json:"slot"`
}

// BalanceResult is the result of getBalance.
type BalanceResult struct {
	Context RPCContext `json:"context"`
	Value   uint64     `json:"value"`
}

// TokenAccountsResult is the result of getTokenAccountsByOwner with jsonParsed encoding.
type TokenAccountsResult struct {
	Context RPCContext          `json:"context"`
	Value   []KeyedTokenAccount `json:"value"`
}

// KeyedTokenAccount pairs a token account address with its parsed account data.
type KeyedTokenAccount struct {
	Pubkey  string       `json:"pubkey"`
	Account TokenAccount `json:"account"`
}

// TokenAccount is an account as returned by the RPC. Data stays raw because accounts
// that fail to parse come back as a base64 tuple instead of an object.
type TokenAccount struct {
	Data     json.RawMessage `json:"data"`
	Lamports uint64          `json:"lamports"`
	Owner    string          `json:"owner"`
}

// ParsedTokenAccountData is the jsonParsed form of SPL token account data.
type ParsedTokenAccountData struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string           `json:"type"`
		Info TokenAccountInfo `json:"info"`
	} `json:"parsed"`
}

// TokenAccountInfo holds the fields of a parsed token account.
type TokenAccountInfo struct {
	Mint        string      `json:"mint"`
	Owner       string      `json:"owner"`
	State       string      `json:"state"`
	TokenAmount TokenAmount `json:"tokenAmount"`
}

// TokenAmount is a raw amount with its mint decimals. Amount is a base-10 integer string.
type TokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       int      `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

// VersionResult is the result of getVersion.
type VersionResult struct {
	SolanaCore string `json:"solana-core"`
	FeatureSet uint32 `json:"feature-set"`
}
