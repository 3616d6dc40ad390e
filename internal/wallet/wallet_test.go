package wallet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"

	"github.com/consensus-shipyard/calibration/disburse/internal/tests"
)

func TestDeriveKnownVectors(t *testing.T) {
	path, err := accounts.ParseDerivationPath(DefaultDerivationPath)
	require.NoError(t, err)

	testcases := []struct {
		mnemonic string
		address  string
	}{
		{tests.TestMnemonic, tests.TestMnemonicAddr},
		{tests.AbandonMnemonic, tests.AbandonMnemonicAddr},
	}
	for _, tc := range testcases {
		account, err := Derive(tc.mnemonic, path)
		require.NoError(t, err)
		require.Equal(t, common.HexToAddress(tc.address), account.Address)
	}
}

func TestDeriveSecondIndex(t *testing.T) {
	path, err := accounts.ParseDerivationPath("m/44'/60'/0'/0/1")
	require.NoError(t, err)

	account, err := Derive(tests.TestMnemonic, path)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(tests.TestMnemonicAddr1), account.Address)
}

func TestDeriveInvalid(t *testing.T) {
	_, err := Derive("not a valid phrase", accounts.DefaultBaseDerivationPath)
	require.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestEnsureCreatesOnce(t *testing.T) {
	file := filepath.Join(t.TempDir(), "wallet-secret.txt")
	store, err := NewStore(file, "")
	require.NoError(t, err)

	first, err := store.Ensure()
	require.NoError(t, err)
	require.True(t, first.Created)
	require.True(t, bip39.IsMnemonicValid(first.Mnemonic))
	require.Len(t, strings.Fields(first.Mnemonic), 12)

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, first.Mnemonic, string(b))

	info, err := os.Stat(file)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := store.Ensure()
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.Account.Address, second.Account.Address)
	require.Equal(t, first.Mnemonic, second.Mnemonic)
}

func TestEnsureLoadsExisting(t *testing.T) {
	file := filepath.Join(t.TempDir(), "wallet-secret.txt")
	require.NoError(t, os.WriteFile(file, []byte("  "+tests.TestMnemonic+"\n"), 0o600))

	store, err := NewStore(file, DefaultDerivationPath)
	require.NoError(t, err)

	w, err := store.Ensure()
	require.NoError(t, err)
	require.False(t, w.Created)
	require.Equal(t, tests.TestMnemonic, w.Mnemonic)
	require.Equal(t, common.HexToAddress(tests.TestMnemonicAddr), w.Account.Address)
}

func TestEnsureRejectsCorruptSecret(t *testing.T) {
	file := filepath.Join(t.TempDir(), "wallet-secret.txt")
	require.NoError(t, os.WriteFile(file, []byte("abandon abandon"), 0o600))

	store, err := NewStore(file, "")
	require.NoError(t, err)

	_, err = store.Ensure()
	require.ErrorIs(t, err, ErrInvalidMnemonic)

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "abandon abandon", string(b))
}

func TestNewStoreBadPath(t *testing.T) {
	_, err := NewStore("wallet-secret.txt", "m/not/a/path")
	require.Error(t, err)
}

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "secret.txt")
	got, err := ResolvePath(abs)
	require.NoError(t, err)
	require.Equal(t, abs, got)

	got, err = ResolvePath("wallet-secret.txt")
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(got))
	require.Equal(t, "wallet-secret.txt", filepath.Base(got))
}
