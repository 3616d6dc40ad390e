// Package db is the transfer ledger: how much of the token went to each
// address, and overall, within the current 24 hour window.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-datastore"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
)

// Window is how long sent amounts count against the daily limits.
const Window = 24 * time.Hour

var (
	totalInfoKey = datastore.NewKey("/ledger/total")
)

type Database struct {
	log   *zap.Logger
	store datastore.Datastore
}

func NewDatabase(log *logging.ZapEventLogger, store datastore.Datastore) *Database {
	return &Database{
		log:   log.Desugar(),
		store: store,
	}
}

func (db *Database) GetTotalInfo(ctx context.Context) (data.TotalInfo, error) {
	info := data.TotalInfo{Amount: new(big.Int)}

	b, err := db.store.Get(ctx, totalInfoKey)
	if err != nil && !errors.Is(err, datastore.ErrNotFound) {
		return data.TotalInfo{}, fmt.Errorf("failed to get total info: %w", err)
	}
	if errors.Is(err, datastore.ErrNotFound) {
		return info, nil
	}
	if err := json.Unmarshal(b, &info); err != nil {
		return data.TotalInfo{}, fmt.Errorf("failed to decode total info: %w", err)
	}
	if info.Amount == nil {
		info.Amount = new(big.Int)
	}
	return info, nil
}

func (db *Database) GetAddrInfo(ctx context.Context, addr common.Address) (data.AddrInfo, error) {
	info := data.AddrInfo{Amount: new(big.Int)}

	b, err := db.store.Get(ctx, addrKey(addr))
	if err != nil && !errors.Is(err, datastore.ErrNotFound) {
		return data.AddrInfo{}, fmt.Errorf("failed to get addr info: %w", err)
	}
	if errors.Is(err, datastore.ErrNotFound) {
		return info, nil
	}
	if err := json.Unmarshal(b, &info); err != nil {
		return data.AddrInfo{}, fmt.Errorf("failed to decode addr info: %w", err)
	}
	if info.Amount == nil {
		info.Amount = new(big.Int)
	}
	return info, nil
}

func (db *Database) UpdateAddrInfo(ctx context.Context, targetAddr common.Address, info data.AddrInfo) error {
	bytes, err := json.Marshal(info)
	if err != nil {
		return err
	}

	err = db.store.Put(ctx, addrKey(targetAddr), bytes)
	if err != nil {
		return fmt.Errorf("failed to put addr info into db: %w", err)
	}

	return nil
}

func (db *Database) UpdateTotalInfo(ctx context.Context, info data.TotalInfo) error {
	bytes, err := json.Marshal(info)
	if err != nil {
		return err
	}

	err = db.store.Put(ctx, totalInfoKey, bytes)
	if err != nil {
		return fmt.Errorf("failed to put total info into db: %w", err)
	}

	return nil
}

// Usage returns the amounts sent to addr and overall within the window that
// is current at now. Records from an expired window read as zero.
func (db *Database) Usage(ctx context.Context, addr common.Address, now time.Time) (data.AddrInfo, data.TotalInfo, error) {
	addrInfo, err := db.GetAddrInfo(ctx, addr)
	if err != nil {
		return data.AddrInfo{}, data.TotalInfo{}, err
	}
	totalInfo, err := db.GetTotalInfo(ctx)
	if err != nil {
		return data.AddrInfo{}, data.TotalInfo{}, err
	}

	if expired(addrInfo.LatestTransfer, now) {
		addrInfo.Amount = new(big.Int)
		addrInfo.LatestTransfer = now
	}
	if expired(totalInfo.LatestTransfer, now) {
		totalInfo.Amount = new(big.Int)
		totalInfo.LatestTransfer = now
	}
	return addrInfo, totalInfo, nil
}

// Record adds a mined transfer to the ledger.
func (db *Database) Record(ctx context.Context, addr common.Address, amount *big.Int, tx common.Hash, now time.Time) error {
	addrInfo, totalInfo, err := db.Usage(ctx, addr, now)
	if err != nil {
		return err
	}

	addrInfo.Amount = new(big.Int).Add(addrInfo.Amount, amount)
	addrInfo.LastTx = tx.Hex()
	totalInfo.Amount = new(big.Int).Add(totalInfo.Amount, amount)

	if err = db.UpdateAddrInfo(ctx, addr, addrInfo); err != nil {
		return err
	}
	if err = db.UpdateTotalInfo(ctx, totalInfo); err != nil {
		return err
	}

	db.log.Info("transfer recorded",
		zap.Stringer("to", addr),
		zap.Stringer("amount", amount),
		zap.String("tx", tx.Hex()),
		zap.Stringer("windowTotal", totalInfo.Amount),
	)
	return nil
}

// expired reports whether a window opened at start is over at now. A zero
// start means nothing was recorded yet.
func expired(start, now time.Time) bool {
	return start.IsZero() || now.Sub(start) >= Window
}

func addrKey(addr common.Address) datastore.Key {
	return datastore.NewKey("/ledger/addr/" + addr.Hex())
}
