package models

import "time"

// Config represents the application configuration
type Config struct {
	Chain  ChainConfig
	Notes  NotesConfig
	Server ServerConfig
}

// ChainConfig holds streak-contract and RPC settings
type ChainConfig struct {
	RPCURL          string
	ContractAddress string
	ChainID         int64
	PrivateKey      string // optional hex key; enables the local transaction submitter
	ConfirmTimeout  time.Duration
	ReceiptInterval time.Duration
}

// NotesConfig holds daily-note store settings
type NotesConfig struct {
	Backend          string // "sqlite" or "firestore"
	SqlitePath       string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnMaxIdleTime  time.Duration
	PingTimeout      time.Duration
	FirestoreProject string
	Collection       string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address        string
	AllowedOrigins []string
	FrameFile      string
	ShutdownGrace  time.Duration
}
