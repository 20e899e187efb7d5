package chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"build-streak-go/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const testContractAddress = "0x1111111111111111111111111111111111111111"

type fakeBackend struct {
	mu sync.Mutex

	streak  *big.Int
	lastDay *big.Int
	tokenID *big.Int
	callErr error

	receipt      *types.Receipt
	receiptErr   error
	pendingPolls int // receipt lookups answered with NotFound before receipt is served
	receiptCalls int
}

func (f *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.callErr != nil {
		return nil, f.callErr
	}

	parsed, err := ParseStreakABI()
	if err != nil {
		return nil, err
	}
	for name, method := range parsed.Methods {
		if !bytes.Equal(msg.Data[:4], method.ID) {
			continue
		}
		switch name {
		case "getStreak":
			return method.Outputs.Pack(f.streak)
		case "getLastLogDay":
			return method.Outputs.Pack(f.lastDay)
		case "getTokenId":
			return method.Outputs.Pack(f.tokenID)
		}
	}
	return nil, fmt.Errorf("unexpected call %x", msg.Data[:4])
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.receiptCalls++
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if f.receiptCalls <= f.pendingPolls || f.receipt == nil {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

type recordingSubmitter struct {
	to       common.Address
	calldata []byte
	err      error
	calls    int
}

func (s *recordingSubmitter) SubmitTransaction(ctx context.Context, to common.Address, calldata []byte) (common.Hash, error) {
	s.calls++
	s.to = to
	s.calldata = calldata
	if s.err != nil {
		return common.Hash{}, s.err
	}
	return common.HexToHash("0xbeef"), nil
}

func testChainConfig() models.ChainConfig {
	return models.ChainConfig{
		ContractAddress: testContractAddress,
		ConfirmTimeout:  200 * time.Millisecond,
		ReceiptInterval: 10 * time.Millisecond,
	}
}

func setupTestClient(t *testing.T, backend *fakeBackend, submitter TxSubmitter) *Client {
	client, err := NewClient(backend, testChainConfig(), submitter)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestNewClient_RejectsBadContractAddress(t *testing.T) {
	cfg := testChainConfig()
	cfg.ContractAddress = "not-an-address"
	if _, err := NewClient(&fakeBackend{}, cfg, nil); err == nil {
		t.Fatalf("Expected invalid contract address to be rejected")
	}
}

func TestReadStreak(t *testing.T) {
	backend := &fakeBackend{streak: big.NewInt(6), lastDay: big.NewInt(20123)}
	client := setupTestClient(t, backend, nil)

	state, err := client.ReadStreak(context.Background(), "0x00000000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("ReadStreak failed: %v", err)
	}
	if state.StreakCount != 6 || state.LastLogDay != 20123 {
		t.Errorf("Expected (6, 20123), got (%d, %d)", state.StreakCount, state.LastLogDay)
	}
}

func TestReadStreak_WholeReadFails(t *testing.T) {
	backend := &fakeBackend{callErr: errors.New("rpc unreachable")}
	client := setupTestClient(t, backend, nil)

	_, err := client.ReadStreak(context.Background(), "0x00000000000000000000000000000000000000aa")
	if err == nil {
		t.Fatalf("Expected read failure")
	}
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Errorf("Expected a *ReadError, got %T", err)
	}
}

func TestReadStreak_RejectsInconsistentState(t *testing.T) {
	// A positive count with no last-log day violates the contract invariant;
	// the reader must refuse to hand that state to the controller.
	backend := &fakeBackend{streak: big.NewInt(3), lastDay: big.NewInt(0)}
	client := setupTestClient(t, backend, nil)

	_, err := client.ReadStreak(context.Background(), "0x00000000000000000000000000000000000000aa")
	if err == nil {
		t.Fatalf("Expected inconsistent state to be rejected")
	}
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Errorf("Expected a *ReadError, got %T", err)
	}
}

func TestGetTokenID(t *testing.T) {
	backend := &fakeBackend{tokenID: big.NewInt(42)}
	client := setupTestClient(t, backend, nil)

	tokenID, err := client.GetTokenID(context.Background(), "0x00000000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("GetTokenID failed: %v", err)
	}
	if tokenID.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("Expected token id 42, got %s", tokenID)
	}
}

func TestStartStreak_PacksCalldata(t *testing.T) {
	submitter := &recordingSubmitter{}
	client := setupTestClient(t, &fakeBackend{}, submitter)

	txHash, err := client.StartStreak(context.Background())
	if err != nil {
		t.Fatalf("StartStreak failed: %v", err)
	}
	if txHash != common.HexToHash("0xbeef") {
		t.Errorf("Expected submitter's hash, got %s", txHash.Hex())
	}
	if submitter.to != common.HexToAddress(testContractAddress) {
		t.Errorf("Expected call to contract, got %s", submitter.to.Hex())
	}

	parsed, err := ParseStreakABI()
	if err != nil {
		t.Fatalf("Failed to parse ABI: %v", err)
	}
	want, err := parsed.Pack("startStreak")
	if err != nil {
		t.Fatalf("Failed to pack expected calldata: %v", err)
	}
	if !bytes.Equal(submitter.calldata, want) {
		t.Errorf("Expected calldata %x, got %x", want, submitter.calldata)
	}
}

func TestLogDay_SubmitterFailure(t *testing.T) {
	submitter := &recordingSubmitter{err: errors.New("user rejected")}
	client := setupTestClient(t, &fakeBackend{}, submitter)

	_, err := client.LogDay(context.Background())
	if err == nil {
		t.Fatalf("Expected submit failure")
	}
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Expected a *WriteError, got %T", err)
	}
	if writeErr.Stage != "submit" {
		t.Errorf("Expected stage submit, got %s", writeErr.Stage)
	}
}

func TestLogDay_NoSubmitterConfigured(t *testing.T) {
	client := setupTestClient(t, &fakeBackend{}, nil)

	_, err := client.LogDay(context.Background())
	if !errors.Is(err, ErrNoSubmitter) {
		t.Errorf("Expected ErrNoSubmitter, got %v", err)
	}
}

func TestAwaitFinalization_SucceedsAfterPendingPolls(t *testing.T) {
	backend := &fakeBackend{
		pendingPolls: 2,
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(100),
		},
	}
	client := setupTestClient(t, backend, nil)

	if err := client.AwaitFinalization(context.Background(), common.HexToHash("0xbeef")); err != nil {
		t.Fatalf("AwaitFinalization failed: %v", err)
	}
	if backend.receiptCalls < 3 {
		t.Errorf("Expected at least 3 receipt polls, got %d", backend.receiptCalls)
	}
}

func TestAwaitFinalization_Revert(t *testing.T) {
	backend := &fakeBackend{
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusFailed,
			BlockNumber: big.NewInt(100),
		},
	}
	client := setupTestClient(t, backend, nil)

	err := client.AwaitFinalization(context.Background(), common.HexToHash("0xbeef"))
	if err == nil {
		t.Fatalf("Expected reverted transaction to fail")
	}
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Expected a *WriteError, got %T", err)
	}
	if writeErr.Stage != "confirm" {
		t.Errorf("Expected stage confirm, got %s", writeErr.Stage)
	}
}

func TestAwaitFinalization_Timeout(t *testing.T) {
	// No receipt ever appears; the confirm timeout decides.
	client := setupTestClient(t, &fakeBackend{}, nil)

	err := client.AwaitFinalization(context.Background(), common.HexToHash("0xbeef"))
	if err == nil {
		t.Fatalf("Expected timeout failure")
	}
	var writeErr *WriteError
	if !errors.As(err, &writeErr) || writeErr.Stage != "confirm" {
		t.Errorf("Expected confirm-stage *WriteError, got %v", err)
	}
}

func TestAwaitFinalization_TransientLookupErrorsKeepPolling(t *testing.T) {
	backend := &fakeBackend{receiptErr: errors.New("502 bad gateway")}
	client := setupTestClient(t, backend, nil)

	err := client.AwaitFinalization(context.Background(), common.HexToHash("0xbeef"))
	if err == nil {
		t.Fatalf("Expected timeout after persistent lookup failures")
	}
	if backend.receiptCalls < 2 {
		t.Errorf("Expected polling to continue past lookup failures, got %d calls", backend.receiptCalls)
	}
}

func TestAwaitFinalization_ContextCancelled(t *testing.T) {
	client := setupTestClient(t, &fakeBackend{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.AwaitFinalization(ctx, common.HexToHash("0xbeef"))
	if err == nil {
		t.Fatalf("Expected cancellation failure")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}

func TestParseDayLogged(t *testing.T) {
	client := setupTestClient(t, &fakeBackend{}, nil)

	parsed, err := ParseStreakABI()
	if err != nil {
		t.Fatalf("Failed to parse ABI: %v", err)
	}
	event := parsed.Events["DayLogged"]
	user := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(7), big.NewInt(12))
	if err != nil {
		t.Fatalf("Failed to pack event data: %v", err)
	}

	decoded, err := client.ParseDayLogged(types.Log{
		Topics: []common.Hash{event.ID, common.BytesToHash(user.Bytes())},
		Data:   data,
	})
	if err != nil {
		t.Fatalf("ParseDayLogged failed: %v", err)
	}
	if decoded.User != user {
		t.Errorf("Expected user %s, got %s", user.Hex(), decoded.User.Hex())
	}
	if decoded.TokenID.Int64() != 7 || decoded.NewStreakCount.Int64() != 12 {
		t.Errorf("Expected (7, 12), got (%s, %s)", decoded.TokenID, decoded.NewStreakCount)
	}
}

func TestParseDayLogged_RejectsForeignLog(t *testing.T) {
	client := setupTestClient(t, &fakeBackend{}, nil)

	_, err := client.ParseDayLogged(types.Log{
		Topics: []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")},
	})
	if err == nil {
		t.Errorf("Expected foreign log to be rejected")
	}
}

func TestParseStreakStarted(t *testing.T) {
	client := setupTestClient(t, &fakeBackend{}, nil)

	parsed, err := ParseStreakABI()
	if err != nil {
		t.Fatalf("Failed to parse ABI: %v", err)
	}
	event := parsed.Events["StreakStarted"]
	user := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(3))
	if err != nil {
		t.Fatalf("Failed to pack event data: %v", err)
	}

	decoded, err := client.ParseStreakStarted(types.Log{
		Topics: []common.Hash{event.ID, common.BytesToHash(user.Bytes())},
		Data:   data,
	})
	if err != nil {
		t.Fatalf("ParseStreakStarted failed: %v", err)
	}
	if decoded.User != user || decoded.TokenID.Int64() != 3 {
		t.Errorf("Expected (%s, 3), got (%s, %s)", user.Hex(), decoded.User.Hex(), decoded.TokenID)
	}
}
