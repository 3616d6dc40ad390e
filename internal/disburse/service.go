package disburse

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-datastore"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
	"github.com/consensus-shipyard/calibration/disburse/internal/db"
	"github.com/consensus-shipyard/calibration/disburse/internal/recipients"
	"github.com/consensus-shipyard/calibration/disburse/internal/types"
	"github.com/consensus-shipyard/calibration/disburse/internal/units"
)

var (
	ErrExceedTotalAllowedFunds = fmt.Errorf("transfer exceeds total allowed funds per day")
	ErrExceedAddrAllowedFunds  = fmt.Errorf("transfer exceeds daily allowed funds per address")
	ErrInvalidRecipientAddress = fmt.Errorf("recipient address is invalid")
)

// Backend is the chain access the flows need.
type Backend interface {
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	TokenInfo(ctx context.Context) (data.TokenInfo, error)
	Transfer(ctx context.Context, from *data.EthereumAccount, to common.Address, amount *big.Int) (data.TransferReceipt, error)
}

type Config struct {
	Account      *data.EthereumAccount
	NativeSymbol string
	// FilecoinAddresses accepts f0 / f410 recipients. Enable only on
	// Filecoin chains.
	FilecoinAddresses bool
	// Daily limits in token units, e.g. "250.5". Empty or "0" disables.
	AddressDailyLimit string
	TotalDailyLimit   string
}

type Service struct {
	log     *logging.ZapEventLogger
	backend Backend
	db      *db.Database
	cfg     *Config
	addrs   types.AddressParser
	out     io.Writer
	now     func() time.Time
}

func NewService(log *logging.ZapEventLogger, backend Backend, store datastore.Datastore, cfg *Config, out io.Writer) *Service {
	if cfg.NativeSymbol == "" {
		cfg.NativeSymbol = "ETH"
	}
	return &Service{
		log:     log,
		backend: backend,
		db:      db.NewDatabase(log, store),
		cfg:     cfg,
		addrs:   types.AddressParser{Filecoin: cfg.FilecoinAddresses},
		out:     out,
		now:     time.Now,
	}
}

// Summary prints the loaded address book and the operating wallet, and warns
// about address book entries that are not valid addresses.
func (s *Service) Summary(ctx context.Context, list []data.Recipient) {
	fmt.Fprintf(s.out, "Loaded %d recipients:\n", len(list))
	for _, r := range list {
		fmt.Fprintf(s.out, "- %s\n", r)
	}

	addr := s.cfg.Account.Address
	fmt.Fprintf(s.out, "\nWallet address: %s\n", addr.Hex())
	if s.cfg.FilecoinAddresses {
		if f4, err := types.FilecoinAddress(addr); err == nil {
			fmt.Fprintf(s.out, "Filecoin address: %s\n", f4)
		}
	}

	balance, err := s.backend.NativeBalance(ctx, addr)
	if err != nil {
		s.log.Warnw("wallet balance unavailable", "address", addr, "err", err)
	} else {
		fmt.Fprintf(s.out, "Balance: %s %s\n", units.FormatEther(balance), s.cfg.NativeSymbol)
	}

	for _, r := range list {
		if !s.addrs.Valid(r.Address) {
			s.log.Warnw("invalid address", "name", r.Name, "address", r.Address)
		}
	}
	fmt.Fprintln(s.out)
}

// Check looks up native and token balances of the wallet itself followed by
// every recipient, one at a time, and prints them as a table. Entries with
// an invalid address or a failed lookup keep empty balance fields; only a
// failure to read the token metadata or a cancelled context aborts.
func (s *Service) Check(ctx context.Context, list []data.Recipient) ([]data.Recipient, error) {
	token, err := s.backend.TokenInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read token info: %w", err)
	}

	all := make([]data.Recipient, 0, len(list)+1)
	all = append(all, data.Recipient{Address: s.cfg.Account.Address.Hex(), Name: data.OwnWalletName})
	all = append(all, list...)

	for i := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		addr, err := s.addrs.Parse(all[i].Address)
		if err != nil {
			s.log.Warnw("skipping invalid address", "name", all[i].Name, "address", all[i].Address, "err", err)
			continue
		}

		if err := s.lookup(ctx, &all[i], addr, token); err != nil {
			s.log.Errorw("balance lookup failed", "name", all[i].Name, "address", addr, "err", err)
			continue
		}
	}

	if err := RenderTable(s.out, all, s.cfg.NativeSymbol, token.Symbol); err != nil {
		return nil, err
	}
	return all, nil
}

// SendResult is what Send observed around a transfer.
type SendResult struct {
	Recipient data.Recipient
	Before    data.Recipient
	After     data.Recipient
	Amount    *big.Int
	Receipt   data.TransferReceipt
}

// Send transfers amount tokens to the single recipient whose name contains
// query. Nothing is submitted unless exactly one recipient matches. Balances
// are printed before and after; the call returns once the transfer has one
// confirmation. Errors are not retried.
func (s *Service) Send(ctx context.Context, list []data.Recipient, query, amount string) (*SendResult, error) {
	r, err := recipients.Resolve(list, query)
	if err != nil {
		var amb *recipients.AmbiguousError
		if errors.As(err, &amb) {
			fmt.Fprintf(s.out, "Multiple recipients match %q:\n", amb.Query)
			for _, m := range amb.Matches {
				fmt.Fprintf(s.out, "- %s\n", m)
			}
		}
		return nil, err
	}

	to, err := s.addrs.Parse(r.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRecipientAddress, r.Name, err)
	}

	token, err := s.backend.TokenInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read token info: %w", err)
	}

	value, err := units.Parse(amount, token.Decimals)
	if err != nil {
		return nil, err
	}

	res := &SendResult{Recipient: r, Amount: value, Before: r, After: r}

	if err := s.lookup(ctx, &res.Before, to, token); err != nil {
		return nil, fmt.Errorf("failed to read balances of %s: %w", r.Name, err)
	}
	fmt.Fprintln(s.out, "Before transfer:")
	if err := RenderTable(s.out, []data.Recipient{res.Before}, s.cfg.NativeSymbol, token.Symbol); err != nil {
		return nil, err
	}

	if err := s.checkLimits(ctx, to, value, token); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "Sending %s %s to %s (%s)\n", units.Format(value, token.Decimals), token.Symbol, r.Name, to.Hex())
	s.log.Infow("sending", "to", to, "name", r.Name, "amount", value, "token", token.Symbol)

	res.Receipt, err = s.backend.Transfer(ctx, s.cfg.Account, to, value)
	if err != nil {
		s.log.Errorw("failed to transfer token", "to", to, "err", err)
		return nil, fmt.Errorf("fail to send tx: %w", err)
	}
	fmt.Fprintf(s.out, "Transaction: %s\n", res.Receipt.TxHash.Hex())

	// The transfer is final at this point; a ledger failure only costs
	// limit accounting.
	if err := s.db.Record(ctx, to, value, res.Receipt.TxHash, s.now()); err != nil {
		s.log.Errorw("failed to record transfer", "tx", res.Receipt.TxHash.Hex(), "err", err)
	}

	if err := s.lookup(ctx, &res.After, to, token); err != nil {
		return nil, fmt.Errorf("failed to read balances of %s: %w", r.Name, err)
	}
	fmt.Fprintln(s.out, "After transfer:")
	if err := RenderTable(s.out, []data.Recipient{res.After}, s.cfg.NativeSymbol, token.Symbol); err != nil {
		return nil, err
	}

	return res, nil
}

// lookup fills r's balance fields. r is left untouched on error.
func (s *Service) lookup(ctx context.Context, r *data.Recipient, addr common.Address, token data.TokenInfo) error {
	native, err := s.backend.NativeBalance(ctx, addr)
	if err != nil {
		return err
	}
	tokens, err := s.backend.TokenBalance(ctx, addr)
	if err != nil {
		return err
	}
	r.NativeBalance = units.FormatEther(native)
	r.TokenBalance = units.Format(tokens, token.Decimals)
	return nil
}

func (s *Service) checkLimits(ctx context.Context, to common.Address, value *big.Int, token data.TokenInfo) error {
	addrLimit, err := parseLimit(s.cfg.AddressDailyLimit, token.Decimals)
	if err != nil {
		return fmt.Errorf("invalid address daily limit: %w", err)
	}
	totalLimit, err := parseLimit(s.cfg.TotalDailyLimit, token.Decimals)
	if err != nil {
		return fmt.Errorf("invalid total daily limit: %w", err)
	}
	if addrLimit == nil && totalLimit == nil {
		return nil
	}

	addrInfo, totalInfo, err := s.db.Usage(ctx, to, s.now())
	if err != nil {
		return err
	}
	s.log.Infow("ledger", "address", to, "sentToday", addrInfo.Amount, "totalToday", totalInfo.Amount)

	if totalLimit != nil && new(big.Int).Add(totalInfo.Amount, value).Cmp(totalLimit) > 0 {
		return ErrExceedTotalAllowedFunds
	}
	if addrLimit != nil && new(big.Int).Add(addrInfo.Amount, value).Cmp(addrLimit) > 0 {
		return ErrExceedAddrAllowedFunds
	}
	return nil
}

func parseLimit(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return nil, nil
	}
	return units.Parse(s, decimals)
}
