package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf/v3"
	leveldb "github.com/ipfs/go-ds-leveldb"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	ldbopts "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/consensus-shipyard/calibration/disburse/internal/chain"
	"github.com/consensus-shipyard/calibration/disburse/internal/cli"
	"github.com/consensus-shipyard/calibration/disburse/internal/disburse"
	"github.com/consensus-shipyard/calibration/disburse/internal/recipients"
	"github.com/consensus-shipyard/calibration/disburse/internal/types"
	"github.com/consensus-shipyard/calibration/disburse/internal/wallet"
)

var build = "develop"

func main() {
	logger := logging.Logger("DISBURSE")

	if err := run(logger); err != nil {
		logger.Fatalln("main: error:", err)
	}
}

func run(log *logging.ZapEventLogger) error {
	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Args conf.Args
		Log  struct {
			Level string `conf:"default:info"`
		}
		Recipients struct {
			File string `conf:"default:recipients.csv"`
		}
		Wallet struct {
			// Relative paths are resolved against the executable's directory.
			SecretFile     string `conf:"default:wallet-secret.txt"`
			DerivationPath string `conf:"default:m/44'/60'/0'/0/0"`
		}
		Ethereum struct {
			APIHost      string `conf:"default:https://sepolia.infura.io/v3"`
			APIToken     string `conf:"mask"`
			NativeSymbol string `conf:"default:ETH"`
		}
		Token struct {
			Address string `conf:"required"`
		}
		Ledger struct {
			Path string `conf:"default:./_db_data"`
			// Amounts below are in token units. 0 disables the limit.
			AddressDailyLimit string `conf:"default:0"`
			TotalDailyLimit   string `conf:"default:0"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "Team token disbursement tool",
		},
	}

	const prefix = "DISBURSE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			fmt.Println(cli.NewRootCmd(nil).UsageString())
			return nil
		}
		return err
	}

	lvl, err := logging.LevelFromString(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	logging.SetAllLoggers(lvl)

	if cfg.Ethereum.APIToken == "" {
		cfg.Ethereum.APIToken = os.Getenv("INFURA_API_KEY")
	}

	tokenAddr, err := types.ParseAddress(cfg.Token.Address)
	if err != nil {
		return fmt.Errorf("token address %q: %w", cfg.Token.Address, err)
	}

	// =========================================================================
	// App Starting

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Debugw("startup", "config", out)

	setup := func(ctx context.Context) (*cli.Runtime, error) {
		// =====================================================================
		// Recipients

		list, err := recipients.Load(cfg.Recipients.File)
		if err != nil {
			return nil, err
		}
		log.Infow("startup", "status", "recipients loaded", "file", cfg.Recipients.File, "count", len(list))

		// =====================================================================
		// Wallet

		secretFile, err := wallet.ResolvePath(cfg.Wallet.SecretFile)
		if err != nil {
			return nil, err
		}
		store, err := wallet.NewStore(secretFile, cfg.Wallet.DerivationPath)
		if err != nil {
			return nil, err
		}
		w, err := store.Ensure()
		if err != nil {
			return nil, err
		}
		if w.Created {
			fmt.Printf("Created new wallet, phrase saved to %s\n", store.File())
		} else {
			fmt.Printf("Loaded wallet from %s\n", store.File())
		}
		log.Infow("startup", "status", "wallet ready", "address", w.Account.Address, "created", w.Created)

		// =====================================================================
		// Ledger Support

		log.Infow("startup", "status", "initializing ledger", "path", cfg.Ledger.Path)

		ds, err := leveldb.NewDatastore(cfg.Ledger.Path, &leveldb.Options{
			Compression: ldbopts.NoCompression,
			NoSync:      false,
			Strict:      ldbopts.StrictAll,
		})
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize leveldb database: %w", err)
		}

		// =====================================================================
		// Start Ethereum client

		client, err := chain.Dial(ctx, log, chain.Config{
			URL:          chain.BuildURL(cfg.Ethereum.APIHost, cfg.Ethereum.APIToken),
			TokenAddress: tokenAddr,
		})
		if err != nil {
			_ = ds.Close()
			return nil, err
		}

		head, err := client.Readiness(ctx)
		if err != nil {
			log.Warnw("startup", "status", "rpc not ready", "err", err)
		} else {
			log.Infow("startup", "status", "rpc ready", "block", head)
		}

		// f0 / f410 recipients only have an owner on Filecoin chains.
		filecoin := types.IsFilecoinChain(client.ChainID())
		if filecoin {
			log.Infow("startup", "status", "filecoin chain, accepting f0/f410 recipients", "chainID", client.ChainID())
		}

		svc := disburse.NewService(log, client, ds, &disburse.Config{
			Account:           w.Account,
			NativeSymbol:      cfg.Ethereum.NativeSymbol,
			FilecoinAddresses: filecoin,
			AddressDailyLimit: cfg.Ledger.AddressDailyLimit,
			TotalDailyLimit:   cfg.Ledger.TotalDailyLimit,
		}, os.Stdout)

		return &cli.Runtime{
			Recipients: list,
			Service:    svc,
			Close: func() error {
				log.Infow("shutdown", "status", "stopping rpc client and leveldb")
				client.Close()
				return ds.Close()
			},
		}, nil
	}

	return cli.Execute(ctx, cfg.Args, setup, os.Stdout, os.Stderr)
}
