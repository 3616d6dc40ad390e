package data

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type EthereumAccount struct {
	PrivateKey *ecdsa.PrivateKey
	PublicKey  *ecdsa.PublicKey
	Address    common.Address
}

// NewAccount builds an account from a raw 32-byte secp256k1 private key.
func NewAccount(key []byte) (*EthereumAccount, error) {
	privateKey, err := crypto.ToECDSA(key)
	if err != nil {
		return nil, err
	}

	publicKey := privateKey.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}

	addr := crypto.PubkeyToAddress(*publicKeyECDSA)

	return &EthereumAccount{
		PrivateKey: privateKey,
		PublicKey:  publicKeyECDSA,
		Address:    addr,
	}, nil
}
