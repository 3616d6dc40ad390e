package tests

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	logging "github.com/ipfs/go-log/v2"
	"github.com/stretchr/testify/require"

	"github.com/consensus-shipyard/calibration/disburse/internal/chain"
	"github.com/consensus-shipyard/calibration/disburse/internal/data"
	"github.com/consensus-shipyard/calibration/disburse/internal/disburse"
	"github.com/consensus-shipyard/calibration/disburse/internal/recipients"
	"github.com/consensus-shipyard/calibration/disburse/internal/tests"
	"github.com/consensus-shipyard/calibration/disburse/internal/wallet"
)

// Test_Smoke_Check runs a balance report against a live node. It needs
// DISBURSE_SMOKE_RPC (e.g. a local anvil) and DISBURSE_SMOKE_TOKEN.
func Test_Smoke_Check(t *testing.T) {
	rpc := os.Getenv("DISBURSE_SMOKE_RPC")
	token := os.Getenv("DISBURSE_SMOKE_TOKEN")
	if rpc == "" || token == "" {
		t.Skip("DISBURSE_SMOKE_RPC and DISBURSE_SMOKE_TOKEN are not set")
	}

	ctx := context.Background()
	log := logging.Logger("SMOKE")

	store, err := wallet.NewStore(filepath.Join(t.TempDir(), "wallet-secret.txt"), "")
	require.NoError(t, err)
	w, err := store.Ensure()
	require.NoError(t, err)
	require.True(t, w.Created)

	client, err := chain.Dial(ctx, log, chain.Config{
		URL:          rpc,
		TokenAddress: common.HexToAddress(token),
	})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Readiness(ctx)
	require.NoError(t, err)

	list, err := recipients.Parse(strings.NewReader(tests.Directory))
	require.NoError(t, err)

	var out bytes.Buffer
	svc := disburse.NewService(log, client, dssync.MutexWrap(datastore.NewMapDatastore()), &disburse.Config{
		Account: w.Account,
	}, &out)

	report, err := svc.Check(ctx, list)
	require.NoError(t, err)
	require.Len(t, report, len(list)+1)
	require.Equal(t, data.OwnWalletName, report[0].Name)
	require.NotEmpty(t, report[0].NativeBalance)
	require.NotEmpty(t, report[0].TokenBalance)
}
