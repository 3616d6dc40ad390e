// Package chain is the RPC side of the tool: native balances, reads of the
// configured ERC-20 contract and token transfers.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	logging "github.com/ipfs/go-log/v2"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
)

var (
	ErrTransferReverted = fmt.Errorf("token transfer reverted")
	ErrUnexpectedOutput = fmt.Errorf("unexpected contract output")
)

type Config struct {
	URL          string
	TokenAddress common.Address
}

// BuildURL joins an RPC host and a provider API key. An empty key yields a
// URL the provider will reject; that is reported when the first call fails.
func BuildURL(host, apiKey string) string {
	return strings.TrimRight(host, "/") + "/" + apiKey
}

type Client struct {
	log       *logging.ZapEventLogger
	eth       *ethclient.Client
	token     *bind.BoundContract
	tokenAddr common.Address
	chainID   *big.Int
	info      *data.TokenInfo
}

// Dial connects to the RPC endpoint and binds the token contract. It fails
// if the endpoint cannot report its chain id.
func Dial(ctx context.Context, log *logging.ZapEventLogger, cfg Config) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to API: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}

	log.Infow("startup", "status", "rpc connected", "chainID", chainID, "token", cfg.TokenAddress)

	return &Client{
		log:       log,
		eth:       eth,
		token:     bind.NewBoundContract(cfg.TokenAddress, parsed, eth, eth, eth),
		tokenAddr: cfg.TokenAddress,
		chainID:   chainID,
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Readiness returns the latest block number, failing if the node is not
// answering.
func (c *Client) Readiness(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth client not ready: %w", err)
	}
	return n, nil
}

func (c *Client) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	return c.eth.PendingNonceAt(ctx, addr)
}

func (c *Client) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return c.eth.BalanceAt(ctx, addr, nil)
}

func (c *Client) TokenBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.token.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", addr); err != nil {
		return nil, fmt.Errorf("balanceOf(%s): %w", addr, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: balanceOf returned %d values", ErrUnexpectedOutput, len(out))
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: balanceOf returned %T", ErrUnexpectedOutput, out[0])
	}
	return balance, nil
}

// TokenInfo reads symbol and decimals once and caches them for the life of
// the client.
func (c *Client) TokenInfo(ctx context.Context) (data.TokenInfo, error) {
	if c.info != nil {
		return *c.info, nil
	}

	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	if err := c.token.Call(opts, &out, "decimals"); err != nil {
		return data.TokenInfo{}, fmt.Errorf("decimals(): %w", err)
	}
	if len(out) != 1 {
		return data.TokenInfo{}, fmt.Errorf("%w: decimals returned %d values", ErrUnexpectedOutput, len(out))
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return data.TokenInfo{}, fmt.Errorf("%w: decimals returned %T", ErrUnexpectedOutput, out[0])
	}

	out = nil
	if err := c.token.Call(opts, &out, "symbol"); err != nil {
		return data.TokenInfo{}, fmt.Errorf("symbol(): %w", err)
	}
	if len(out) != 1 {
		return data.TokenInfo{}, fmt.Errorf("%w: symbol returned %d values", ErrUnexpectedOutput, len(out))
	}
	symbol, ok := out[0].(string)
	if !ok {
		return data.TokenInfo{}, fmt.Errorf("%w: symbol returned %T", ErrUnexpectedOutput, out[0])
	}

	c.info = &data.TokenInfo{Address: c.tokenAddr, Symbol: symbol, Decimals: decimals}
	c.log.Infow("token", "address", c.tokenAddr, "symbol", symbol, "decimals", decimals)

	return *c.info, nil
}

// Transfer submits transfer(to, amount) signed by from and waits for it to
// be mined. Gas and nonce come from the node. A mined but reverted
// transaction is reported as ErrTransferReverted.
func (c *Client) Transfer(ctx context.Context, from *data.EthereumAccount, to common.Address, amount *big.Int) (data.TransferReceipt, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(from.PrivateKey, c.chainID)
	if err != nil {
		return data.TransferReceipt{}, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := c.token.Transact(opts, "transfer", to, amount)
	if err != nil {
		return data.TransferReceipt{}, fmt.Errorf("failed to send tx: %w", err)
	}
	c.log.Infof("tx sent: %s", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return data.TransferReceipt{}, fmt.Errorf("failed waiting for tx %s: %w", tx.Hash().Hex(), err)
	}

	res := data.TransferReceipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return res, fmt.Errorf("%w: %s", ErrTransferReverted, receipt.TxHash.Hex())
	}

	c.log.Infow("tx mined", "tx", receipt.TxHash.Hex(), "block", res.BlockNumber, "gasUsed", res.GasUsed)
	return res, nil
}
