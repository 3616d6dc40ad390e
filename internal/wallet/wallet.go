// Package wallet keeps the disbursement wallet: a BIP-39 mnemonic persisted
// as plaintext and the account derived from it.
//
// The secret file is the sole source of spending authority. It is neither
// encrypted nor rotated; anyone able to read it controls the funds.
package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
)

// DefaultDerivationPath is the first external account of the Ethereum coin
// type, the path most wallets derive from a fresh phrase.
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// mnemonicEntropyBits yields a 12 word phrase.
const mnemonicEntropyBits = 128

var (
	ErrEmptyMnemonic   = fmt.Errorf("failed to generate wallet with mnemonic")
	ErrInvalidMnemonic = fmt.Errorf("invalid mnemonic")
)

type Wallet struct {
	Mnemonic string
	Path     accounts.DerivationPath
	Account  *data.EthereumAccount
	// Created is set when Ensure generated the phrase in this call.
	Created bool
}

type Store struct {
	file string
	path accounts.DerivationPath
}

// NewStore returns a store for the secret file at file, deriving accounts at
// derivationPath (DefaultDerivationPath when empty).
func NewStore(file, derivationPath string) (*Store, error) {
	if derivationPath == "" {
		derivationPath = DefaultDerivationPath
	}
	path, err := accounts.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %q: %w", derivationPath, err)
	}
	return &Store{file: file, path: path}, nil
}

// File returns the location of the secret file.
func (s *Store) File() string {
	return s.file
}

// Ensure loads the wallet from the secret file, generating and persisting a
// new phrase first if the file does not exist yet. Repeated calls derive the
// same account.
func (s *Store) Ensure() (*Wallet, error) {
	b, err := os.ReadFile(s.file)
	switch {
	case err == nil:
		mnemonic := strings.TrimSpace(string(b))
		account, err := Derive(mnemonic, s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load wallet from %s: %w", s.file, err)
		}
		return &Wallet{Mnemonic: mnemonic, Path: s.path, Account: account}, nil

	case errors.Is(err, os.ErrNotExist):
		return s.create()

	default:
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}
}

func (s *Store) create() (*Wallet, error) {
	mnemonic, err := Generate()
	if err != nil {
		return nil, err
	}

	account, err := Derive(mnemonic, s.path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(s.file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret file: %w", err)
	}
	if _, err := f.WriteString(mnemonic); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write secret file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write secret file: %w", err)
	}

	return &Wallet{Mnemonic: mnemonic, Path: s.path, Account: account, Created: true}, nil
}

// Generate returns a fresh random 12 word mnemonic.
func Generate() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	if mnemonic == "" {
		return "", ErrEmptyMnemonic
	}
	return mnemonic, nil
}

// Derive deterministically derives the account at path from mnemonic using
// an empty BIP-39 passphrase.
func Derive(mnemonic string, path accounts.DerivationPath) (*data.EthereumAccount, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, index := range path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", path, err)
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get private key: %w", err)
	}

	return data.NewAccount(privKey.Serialize())
}

// ResolvePath anchors a relative secret file path at the directory holding
// the running executable.
func ResolvePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), file), nil
}
