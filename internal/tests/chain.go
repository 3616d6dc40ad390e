package tests

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
)

var ErrInsufficientBalance = fmt.Errorf("transfer amount exceeds balance")

type Transfer struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// FakeChain is an in-memory token backend. Lookups for addresses listed in
// Fail return the stored error.
type FakeChain struct {
	Token       data.TokenInfo
	Native      map[common.Address]*big.Int
	Tokens      map[common.Address]*big.Int
	Fail        map[common.Address]error
	TransferErr error
	Transfers   []Transfer
	Lookups     int
}

func NewFakeChain() *FakeChain {
	return &FakeChain{
		Token: data.TokenInfo{
			Address:  common.HexToAddress(TokenContractAddr),
			Symbol:   "TST",
			Decimals: 6,
		},
		Native: make(map[common.Address]*big.Int),
		Tokens: make(map[common.Address]*big.Int),
		Fail:   make(map[common.Address]error),
	}
}

func (f *FakeChain) NativeBalance(_ context.Context, addr common.Address) (*big.Int, error) {
	f.Lookups++
	if err := f.Fail[addr]; err != nil {
		return nil, err
	}
	return balanceOf(f.Native, addr), nil
}

func (f *FakeChain) TokenBalance(_ context.Context, addr common.Address) (*big.Int, error) {
	if err := f.Fail[addr]; err != nil {
		return nil, err
	}
	return balanceOf(f.Tokens, addr), nil
}

func (f *FakeChain) TokenInfo(_ context.Context) (data.TokenInfo, error) {
	return f.Token, nil
}

func (f *FakeChain) Transfer(_ context.Context, from *data.EthereumAccount, to common.Address, amount *big.Int) (data.TransferReceipt, error) {
	if f.TransferErr != nil {
		return data.TransferReceipt{}, f.TransferErr
	}

	have := balanceOf(f.Tokens, from.Address)
	if have.Cmp(amount) < 0 {
		return data.TransferReceipt{}, ErrInsufficientBalance
	}
	f.Tokens[from.Address] = new(big.Int).Sub(have, amount)
	f.Tokens[to] = new(big.Int).Add(balanceOf(f.Tokens, to), amount)

	f.Transfers = append(f.Transfers, Transfer{From: from.Address, To: to, Amount: new(big.Int).Set(amount)})

	n := uint64(len(f.Transfers))
	return data.TransferReceipt{
		TxHash:      crypto.Keccak256Hash(new(big.Int).SetUint64(n).Bytes()),
		BlockNumber: n,
		GasUsed:     51_000,
	}, nil
}

func balanceOf(m map[common.Address]*big.Int, addr common.Address) *big.Int {
	if b, ok := m[addr]; ok {
		return b
	}
	return new(big.Int)
}
