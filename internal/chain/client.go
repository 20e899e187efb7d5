package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"build-streak-go/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ethBackend is the slice of the ethclient surface the reader/writer uses.
type ethBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Client wraps the streak contract: read-only state queries, transaction
// submission, and finalization. It performs no eligibility checks — the
// contract alone decides whether a start or log call is valid.
type Client struct {
	backend         ethBackend
	contract        common.Address
	abi             abi.ABI
	submitter       TxSubmitter
	confirmTimeout  time.Duration
	receiptInterval time.Duration
}

func NewClient(backend ethBackend, cfg models.ChainConfig, submitter TxSubmitter) (*Client, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid streak contract address %q", cfg.ContractAddress)
	}
	if cfg.ConfirmTimeout <= 0 {
		return nil, fmt.Errorf("confirm timeout must be positive, got %v", cfg.ConfirmTimeout)
	}
	if cfg.ReceiptInterval <= 0 {
		return nil, fmt.Errorf("receipt interval must be positive, got %v", cfg.ReceiptInterval)
	}
	if submitter == nil {
		submitter = UnavailableSubmitter{}
	}

	parsed, err := ParseStreakABI()
	if err != nil {
		return nil, fmt.Errorf("unable to parse contract ABI: %w", err)
	}

	return &Client{
		backend:         backend,
		contract:        common.HexToAddress(cfg.ContractAddress),
		abi:             parsed,
		submitter:       submitter,
		confirmTimeout:  cfg.ConfirmTimeout,
		receiptInterval: cfg.ReceiptInterval,
	}, nil
}

// ReadStreak fetches the streak counter and the last-log day for an address.
// The two calls run concurrently and both must succeed.
func (c *Client) ReadStreak(ctx context.Context, address string) (models.StreakState, error) {
	addr := common.HexToAddress(address)

	var count, lastDay *big.Int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.callUint(gctx, "getStreak", addr)
		if err != nil {
			return err
		}
		count = v
		return nil
	})
	g.Go(func() error {
		v, err := c.callUint(gctx, "getLastLogDay", addr)
		if err != nil {
			return err
		}
		lastDay = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.StreakState{}, &ReadError{Err: err}
	}

	state := models.StreakState{
		StreakCount: count.Uint64(),
		LastLogDay:  lastDay.Uint64(),
	}
	if err := state.Validate(); err != nil {
		return models.StreakState{}, &ReadError{Err: err}
	}
	return state, nil
}

// GetTokenID returns the streak NFT id minted for an address, zero if none.
func (c *Client) GetTokenID(ctx context.Context, address string) (*big.Int, error) {
	v, err := c.callUint(ctx, "getTokenId", common.HexToAddress(address))
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	return v, nil
}

// OwnerOf returns the current owner of a streak NFT.
func (c *Client) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	data, err := c.call(ctx, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, &ReadError{Err: err}
	}
	values, err := c.abi.Unpack("ownerOf", data)
	if err != nil {
		return common.Address{}, &ReadError{Err: fmt.Errorf("unable to unpack ownerOf result: %w", err)}
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, &ReadError{Err: fmt.Errorf("unexpected ownerOf result type %T", values[0])}
	}
	return owner, nil
}

// StartStreak submits the streak-opening transaction. The caller must await
// finalization before trusting new state.
func (c *Client) StartStreak(ctx context.Context) (common.Hash, error) {
	return c.submit(ctx, "startStreak")
}

// LogDay submits the daily log transaction. The contract alone rejects a
// second same-day call; no pre-validation happens here.
func (c *Client) LogDay(ctx context.Context) (common.Hash, error) {
	return c.submit(ctx, "logDay")
}

// AwaitFinalization blocks until the transaction is mined or the confirm
// timeout expires. A reverted, dropped or timed-out transaction is surfaced
// as a *WriteError and never resubmitted.
func (c *Client) AwaitFinalization(ctx context.Context, txHash common.Hash) error {
	deadline := time.NewTimer(c.confirmTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				zap.L().Info("Transaction confirmed",
					zap.String("tx_hash", txHash.Hex()),
					zap.Uint64("block", receipt.BlockNumber.Uint64()))
				return nil
			}
			return &WriteError{Stage: "confirm", Err: fmt.Errorf("transaction %s reverted", txHash.Hex())}
		}
		if !errors.Is(err, ethereum.NotFound) {
			// Transient RPC failure: keep polling until the timeout decides.
			zap.L().Warn("Receipt lookup failed",
				zap.String("tx_hash", txHash.Hex()),
				zap.Error(err))
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			return &WriteError{Stage: "confirm", Err: fmt.Errorf("timed out after %s waiting for %s", c.confirmTimeout, txHash.Hex())}
		case <-ctx.Done():
			return &WriteError{Stage: "confirm", Err: ctx.Err()}
		}
	}
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	calldata, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to pack %s call: %w", method, err)
	}
	data, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: calldata}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	return data, nil
}

func (c *Client) callUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	data, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	values, err := c.abi.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("unable to unpack %s result: %w", method, err)
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", method, values[0])
	}
	return v, nil
}

func (c *Client) submit(ctx context.Context, method string) (common.Hash, error) {
	calldata, err := c.abi.Pack(method)
	if err != nil {
		return common.Hash{}, &WriteError{Stage: "pack", Err: err}
	}
	txHash, err := c.submitter.SubmitTransaction(ctx, c.contract, calldata)
	if err != nil {
		return common.Hash{}, &WriteError{Stage: "submit", Err: err}
	}
	zap.L().Info("Contract call submitted",
		zap.String("method", method),
		zap.String("tx_hash", txHash.Hex()))
	return txHash, nil
}
