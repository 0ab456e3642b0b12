package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"plotmap/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByUsername(ctx context.Context, username string) (account.Account, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID   string
	Username    string
	DisplayName string
	Role        string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
}

var ErrInvalidCredentials = errors.New("invalid username or password")

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: Valid username and password provided
// POST: Returns account info on success
// INVARIANT: The same error is returned for unknown usernames and wrong
// passwords so the response does not leak which usernames exist
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByUsername(ctx, input.Username)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", input.Username, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	// Verify password
	if err := acct.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", input.Username, "reason", "wrong_password")
		return LoginResult{}, ErrInvalidCredentials
	}

	slog.Info("auth_event", "event", "login_success", "username", input.Username, "role", acct.Role)

	return LoginResult{
		AccountID:   acct.ID,
		Username:    acct.Username,
		DisplayName: acct.DisplayName,
		Role:        acct.Role,
	}, nil
}
