package db

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	leveldb "github.com/ipfs/go-ds-leveldb"
	logging "github.com/ipfs/go-log/v2"
	"github.com/stretchr/testify/require"
	ldbopts "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
	"github.com/consensus-shipyard/calibration/disburse/internal/tests"
)

func Test_Ledger(t *testing.T) {
	store, err := leveldb.NewDatastore(filepath.Join(t.TempDir(), "ledger"), &leveldb.Options{
		Compression: ldbopts.NoCompression,
		NoSync:      false,
		Strict:      ldbopts.StrictAll,
		ReadOnly:    false,
	})
	require.NoError(t, err)

	defer func() {
		err = store.Close()
		require.NoError(t, err)
	}()

	db := NewDatabase(logging.Logger("TEST-LEDGER"), store)

	ctx := context.Background()

	addr := common.HexToAddress(tests.TestAddr1)

	addrInfo, err := db.GetAddrInfo(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, 0, addrInfo.Amount.Sign())
	require.True(t, addrInfo.LatestTransfer.IsZero())

	totalInfo, err := db.GetTotalInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, totalInfo.Amount.Sign())

	newAddrInfo := data.AddrInfo{
		Amount:         big.NewInt(12),
		LatestTransfer: time.Now(),
		LastTx:         "0xabc",
	}
	err = db.UpdateAddrInfo(ctx, addr, newAddrInfo)
	require.NoError(t, err)

	addrInfo, err = db.GetAddrInfo(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, newAddrInfo.Amount, addrInfo.Amount)
	require.Equal(t, newAddrInfo.LastTx, addrInfo.LastTx)
	require.Equal(t, true, newAddrInfo.LatestTransfer.Equal(addrInfo.LatestTransfer))

	newTotalInfo := data.TotalInfo{
		Amount:         big.NewInt(3000),
		LatestTransfer: time.Now(),
	}
	err = db.UpdateTotalInfo(ctx, newTotalInfo)
	require.NoError(t, err)

	totalInfo, err = db.GetTotalInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, newTotalInfo.Amount, totalInfo.Amount)
	require.Equal(t, true, newTotalInfo.LatestTransfer.Equal(totalInfo.LatestTransfer))
}

func TestRecordAndWindow(t *testing.T) {
	db := NewDatabase(logging.Logger("TEST-LEDGER"), dssync.MutexWrap(datastore.NewMapDatastore()))
	ctx := context.Background()

	alice := common.HexToAddress(tests.TestAddr1)
	bob := common.HexToAddress(tests.TestAddr2)
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.Record(ctx, alice, big.NewInt(10), crypto.Keccak256Hash([]byte("1")), start))
	require.NoError(t, db.Record(ctx, alice, big.NewInt(5), crypto.Keccak256Hash([]byte("2")), start.Add(time.Hour)))
	require.NoError(t, db.Record(ctx, bob, big.NewInt(7), crypto.Keccak256Hash([]byte("3")), start.Add(2*time.Hour)))

	addrInfo, totalInfo, err := db.Usage(ctx, alice, start.Add(3*time.Hour))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(15), addrInfo.Amount)
	require.Equal(t, crypto.Keccak256Hash([]byte("2")).Hex(), addrInfo.LastTx)
	require.Equal(t, big.NewInt(22), totalInfo.Amount)
	require.True(t, start.Equal(totalInfo.LatestTransfer))

	later := start.Add(Window)
	addrInfo, totalInfo, err = db.Usage(ctx, alice, later)
	require.NoError(t, err)
	require.Equal(t, 0, addrInfo.Amount.Sign())
	require.Equal(t, 0, totalInfo.Amount.Sign())
	require.True(t, later.Equal(totalInfo.LatestTransfer))

	require.NoError(t, db.Record(ctx, bob, big.NewInt(1), crypto.Keccak256Hash([]byte("4")), later))
	addrInfo, totalInfo, err = db.Usage(ctx, bob, later)
	require.NoError(t, err)
	// bob's window opened two hours after the total's and is still running
	require.Equal(t, big.NewInt(8), addrInfo.Amount)
	require.Equal(t, big.NewInt(1), totalInfo.Amount)
}
