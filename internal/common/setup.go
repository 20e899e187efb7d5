package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"build-streak-go/internal/chain"
	"build-streak-go/internal/identity"
	"build-streak-go/internal/models"
	"build-streak-go/internal/notes"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services bundles the wired backends every entrypoint needs: the note
// store, the chain client and the identity provider.
type Services struct {
	Notes     notes.Store
	Chain     *chain.Client
	Identity  *identity.Provider
	Submitter chain.TxSubmitter

	rpcClient *rpc.Client
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires the full stack: note store, RPC connection, chain
// client and identity sources. host may be nil when no wallet host embeds the
// app (server and CLI runs); the connector fallback still resolves sessions.
func InitializeServices(ctx context.Context, cfg *models.Config, host models.HostContext) (*Services, error) {
	noteStore, err := newNoteStore(ctx, cfg.Notes)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Connecting to RPC endpoint", zap.String("url", cfg.Chain.RPCURL))
	rpcClient, ethClient, err := chain.Dial(ctx, cfg.Chain.RPCURL)
	if err != nil {
		noteStore.Close()
		return nil, err
	}

	submitter, err := newSubmitter(ethClient, cfg.Chain, host)
	if err != nil {
		rpcClient.Close()
		noteStore.Close()
		return nil, err
	}

	chainClient, err := chain.NewClient(ethClient, cfg.Chain, submitter)
	if err != nil {
		rpcClient.Close()
		noteStore.Close()
		return nil, err
	}

	var sources []identity.Source
	if host != nil {
		sources = append(sources, identity.NewHostSource(host))
	}
	sources = append(sources, identity.NewConnectorSource(rpcClient))

	return &Services{
		Notes:     noteStore,
		Chain:     chainClient,
		Identity:  identity.NewProvider(sources...),
		Submitter: submitter,
		rpcClient: rpcClient,
	}, nil
}

// InitializeReadOnly wires the stack without a host context. Used by
// report-style commands that take the address as an argument instead of
// resolving a session.
func InitializeReadOnly(ctx context.Context, cfg *models.Config) (*Services, error) {
	return InitializeServices(ctx, cfg, nil)
}

func (cs *Services) Close() {
	if cs.rpcClient != nil {
		cs.rpcClient.Close()
	}
	if cs.Notes != nil {
		cs.Notes.Close()
	}
}

func newNoteStore(ctx context.Context, cfg models.NotesConfig) (notes.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "sqlite", "":
		zap.L().Info("Using sqlite note store", zap.String("path", cfg.SqlitePath))
		return notes.NewSQLiteStore(ctx, cfg)
	case "firestore":
		return notes.NewFirestoreStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown notes backend %q (want sqlite or firestore)", cfg.Backend)
	}
}

// newSubmitter picks the write path: the wallet host when one is present,
// a local signing key when configured, otherwise reads-only.
func newSubmitter(ethClient *ethclient.Client, cfg models.ChainConfig, host models.HostContext) (chain.TxSubmitter, error) {
	if host != nil {
		return chain.NewHostSubmitter(host), nil
	}
	if cfg.PrivateKey != "" {
		return chain.NewKeySubmitter(ethClient, cfg.PrivateKey, cfg.ChainID)
	}
	return chain.UnavailableSubmitter{}, nil
}

// isIgnorableSyncError reports whether a zap Sync error is the usual noise
// from syncing stderr on linux/macos.
func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl for device") ||
		strings.Contains(msg, "bad file descriptor")
}
