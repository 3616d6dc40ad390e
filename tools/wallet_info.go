// This package implements a simple test tool for debugging the disbursement
// wallet against a node.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common"
	logging "github.com/ipfs/go-log/v2"

	"github.com/consensus-shipyard/calibration/disburse/internal/chain"
	"github.com/consensus-shipyard/calibration/disburse/internal/units"
	"github.com/consensus-shipyard/calibration/disburse/internal/wallet"
)

func main() {
	fmt.Println("--------")
	ctx := context.Background()

	rpc := os.Getenv("DISBURSE_SMOKE_RPC")
	if rpc == "" {
		rpc = "http://127.0.0.1:8545"
	}
	secret := os.Getenv("DISBURSE_WALLET_SECRET_FILE")
	if secret == "" {
		secret = "wallet-secret.txt"
	}

	store, err := wallet.NewStore(secret, wallet.DefaultDerivationPath)
	if err != nil {
		log.Fatal("NewStore:", err)
	}
	w, err := store.Ensure()
	if err != nil {
		log.Fatal("Ensure:", err)
	}
	from := w.Account.Address
	fmt.Println("Account address:", from)
	fmt.Println("Created:", w.Created)

	client, err := chain.Dial(ctx, logging.Logger("WALLET-INFO"), chain.Config{
		URL:          rpc,
		TokenAddress: common.HexToAddress(os.Getenv("DISBURSE_TOKEN_ADDRESS")),
	})
	if err != nil {
		log.Fatal("client:", err)
	}
	defer client.Close()

	fmt.Println("ChainID: ", client.ChainID())

	head, err := client.Readiness(ctx)
	if err != nil {
		log.Fatal("Readiness:", err)
	}
	fmt.Println("Block: ", head)

	nonce, err := client.PendingNonce(ctx, from)
	if err != nil {
		log.Fatal("PendingNonce:", err)
	}
	fmt.Println("Nonce: ", nonce)

	balance, err := client.NativeBalance(ctx, from)
	if err != nil {
		log.Fatal("NativeBalance:", err)
	}
	fmt.Println("Account balance:", units.FormatEther(balance))

	if os.Getenv("DISBURSE_TOKEN_ADDRESS") == "" {
		return
	}

	token, err := client.TokenInfo(ctx)
	if err != nil {
		log.Fatal("TokenInfo:", err)
	}
	tokens, err := client.TokenBalance(ctx, from)
	if err != nil {
		log.Fatal("TokenBalance:", err)
	}
	fmt.Printf("Token balance: %s %s\n", units.Format(tokens, token.Decimals), token.Symbol)
}
