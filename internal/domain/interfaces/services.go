package interfaces

import (
	"context"
	"encoding/json"

	domaintypes "primis/internal/domain/types"
)

// AuthAPI is the slice of the backend the session store talks to.
type AuthAPI interface {
	Login(ctx context.Context, creds domaintypes.Credentials) (domaintypes.AuthToken, error)
	CurrentUser(ctx context.Context) (domaintypes.CurrentUser, error)
	Register(ctx context.Context, data domaintypes.RegisterData) (json.RawMessage, error)
	Logout(ctx context.Context) error

	// OnSessionInvalidated registers fn to run after every 401.
	OnSessionInvalidated(fn func(domaintypes.Invalidation)) (unsubscribe func())
}

// SessionService owns the signed-in identity.
type SessionService interface {
	Login(ctx context.Context, email, password string) (domaintypes.LoginResult, error)
	Register(ctx context.Context, data domaintypes.RegisterData) (json.RawMessage, error)
	SetUser(user domaintypes.Profile, userType domaintypes.UserType, token string) error
	Logout(ctx context.Context) error
	ClearAuth() error
	Snapshot() domaintypes.Session
}
