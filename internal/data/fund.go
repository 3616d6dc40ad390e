package data

import (
	"math/big"
	"time"
)

// AddrInfo is the ledger record of what was sent to a single address
// within the current window.
type AddrInfo struct {
	Amount         *big.Int  `json:"amount"`
	LatestTransfer time.Time `json:"latest_transfer"`
	LastTx         string    `json:"last_tx,omitempty"`
}

// TotalInfo is the ledger record of everything sent within the current window.
type TotalInfo struct {
	Amount         *big.Int  `json:"amount"`
	LatestTransfer time.Time `json:"latest_transfer"`
}
