package models

import "context"

// UserSession identifies the connected wallet for the duration of a session.
// It is replaced wholesale on identity-change events, never mutated in place.
type UserSession struct {
	Address     string `json:"address"` // lowercase hex
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	FID         int64  `json:"fid,omitempty"`
}

// HostUser is the identity object the host shell exposes.
type HostUser struct {
	FID         int64
	Username    string
	DisplayName string
	PfpURL      string
	Address     string
}

// HostWallet is the wallet object the host shell exposes.
type HostWallet struct {
	Address string
	ChainID int64
}

// HostTransaction is the minimal transaction request handed to the host
// shell for signing and broadcast.
type HostTransaction struct {
	To   string
	Data []byte
}

// HostContext is the capability surface a wallet/app shell injects when the
// mini-app runs hosted. It is modeled as an injected interface rather than
// ambient global state so that non-hosted environments can substitute a null
// implementation (see identity.NoHost).
type HostContext interface {
	GetUser(ctx context.Context) (*HostUser, error)
	GetWallet(ctx context.Context) (*HostWallet, error)
	// RequestTransaction returns the hash of the broadcast transaction.
	RequestTransaction(ctx context.Context, tx HostTransaction) (string, error)
	OnUserChange(handler func(*HostUser))
	OnWalletChange(handler func(*HostWallet))
}
