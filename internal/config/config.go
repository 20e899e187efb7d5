package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"build-streak-go/internal/models"
)

func Load() (*models.Config, error) {
	confirmTimeout, err := getEnvDuration("CHAIN_CONFIRM_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}

	receiptInterval, err := getEnvDuration("CHAIN_RECEIPT_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownGrace, err := getEnvDuration("SERVER_SHUTDOWN_GRACE", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Chain: models.ChainConfig{
			RPCURL:          getEnvString("CHAIN_RPC_URL", "https://mainnet.base.org"),
			ContractAddress: getEnvString("STREAK_CONTRACT_ADDRESS", ""),
			ChainID:         int64(getEnvInt("CHAIN_ID", 8453)),
			PrivateKey:      getEnvString("CHAIN_PRIVATE_KEY", ""),
			ConfirmTimeout:  confirmTimeout,
			ReceiptInterval: receiptInterval,
		},
		Notes: models.NotesConfig{
			Backend:          getEnvString("NOTES_BACKEND", "sqlite"),
			SqlitePath:       getEnvString("NOTES_SQLITE_PATH", "notes.db"),
			MaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  connMaxLifetime,
			ConnMaxIdleTime:  connMaxIdleTime,
			PingTimeout:      pingTimeout,
			FirestoreProject: getEnvString("NOTES_FIRESTORE_PROJECT", ""),
			Collection:       getEnvString("NOTES_COLLECTION", "dailyLogs"),
		},
		Server: models.ServerConfig{
			Address:        getEnvString("SERVER_ADDRESS", ":8080"),
			AllowedOrigins: getEnvList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			FrameFile:      getEnvString("FRAME_CONFIG_FILE", "frame.yaml"),
			ShutdownGrace:  shutdownGrace,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		if len(list) > 0 {
			return list
		}
	}
	return defaultValue
}
