package entity

import "time"

// Wallet is a tracked wallet address.
type Wallet struct {
	Address string    `json:"address"`
	AddedAt time.Time `json:"addedAt"`
}
