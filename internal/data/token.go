package data

import "github.com/ethereum/go-ethereum/common"

// TokenInfo holds the on-chain metadata of the configured ERC-20 contract.
type TokenInfo struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
}

// TransferReceipt describes a mined token transfer.
type TransferReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}
