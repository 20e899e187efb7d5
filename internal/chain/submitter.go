package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"build-streak-go/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// TxSubmitter signs and broadcasts a prepared contract call. Implementations
// decide who holds the key: the host wallet shell or a local private key.
type TxSubmitter interface {
	SubmitTransaction(ctx context.Context, to common.Address, calldata []byte) (common.Hash, error)
}

// txBackend is the slice of the ethclient surface the key submitter needs.
type txBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// HostSubmitter delegates signing to the host wallet shell. This is the
// normal path inside the hosted mini-app: the user approves in the shell UI.
type HostSubmitter struct {
	host models.HostContext
}

var _ TxSubmitter = (*HostSubmitter)(nil)

func NewHostSubmitter(host models.HostContext) *HostSubmitter {
	return &HostSubmitter{host: host}
}

func (s *HostSubmitter) SubmitTransaction(ctx context.Context, to common.Address, calldata []byte) (common.Hash, error) {
	hashHex, err := s.host.RequestTransaction(ctx, models.HostTransaction{
		To:   to.Hex(),
		Data: calldata,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("host rejected transaction: %w", err)
	}
	if !strings.HasPrefix(hashHex, "0x") || len(hashHex) != 66 {
		return common.Hash{}, fmt.Errorf("host returned malformed transaction hash %q", hashHex)
	}
	return common.HexToHash(hashHex), nil
}

// KeySubmitter signs with a locally held private key. Used by the ops CLIs
// and in development where no host shell exists.
type KeySubmitter struct {
	backend txBackend
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

var _ TxSubmitter = (*KeySubmitter)(nil)

func NewKeySubmitter(backend txBackend, hexKey string, chainID int64) (*KeySubmitter, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if chainID <= 0 {
		return nil, fmt.Errorf("chain id must be positive, got %d", chainID)
	}
	return &KeySubmitter{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
	}, nil
}

// From returns the signer's address.
func (s *KeySubmitter) From() common.Address {
	return s.from
}

func (s *KeySubmitter) SubmitTransaction(ctx context.Context, to common.Address, calldata []byte) (common.Hash, error) {
	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("unable to fetch nonce: %w", err)
	}

	head, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("unable to fetch chain head: %w", err)
	}
	tip, err := s.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("unable to fetch gas tip: %w", err)
	}
	// feeCap = 2*baseFee + tip, the usual headroom against base fee drift.
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	gasLimit, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: s.from,
		To:   &to,
		Data: calldata,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("unable to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Data:      calldata,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("unable to sign transaction: %w", err)
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("unable to broadcast transaction: %w", err)
	}

	zap.L().Info("Transaction broadcast",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("from", s.from.Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce))
	return signed.Hash(), nil
}

// ErrNoSubmitter is returned when neither a host shell nor a local key is
// configured. Reads still work; writes are unavailable.
var ErrNoSubmitter = errors.New("no transaction submitter configured")

// UnavailableSubmitter is the null submitter for read-only deployments.
type UnavailableSubmitter struct{}

var _ TxSubmitter = UnavailableSubmitter{}

func (UnavailableSubmitter) SubmitTransaction(context.Context, common.Address, []byte) (common.Hash, error) {
	return common.Hash{}, ErrNoSubmitter
}
