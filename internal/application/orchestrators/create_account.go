package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"plotmap/internal/domain/account"

	"github.com/google/uuid"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByUsername(ctx context.Context, username string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Username    string
	DisplayName string
	Password    string
	Role        string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
}

var ErrUsernameAlreadyExists = errors.New("an account with this username already exists")

// ExecuteCreateAccount coordinates account creation.
// PRE: Valid username, password >= 12 chars, valid role
// POST: Account created with hashed password
// INVARIANT: Username must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	if input.Username == "" {
		return "", errors.New("username cannot be empty")
	}
	if input.Password == "" {
		return "", errors.New("password cannot be empty")
	}
	if input.Role == "" {
		return "", errors.New("role cannot be empty")
	}

	// Check if username already exists
	_, err := deps.AccountStore.GetByUsername(ctx, input.Username)
	if err == nil {
		return "", ErrUsernameAlreadyExists
	}

	acct := account.Account{
		ID:          uuid.New().String(),
		Username:    input.Username,
		DisplayName: input.DisplayName,
		Role:        input.Role,
		CreatedAt:   time.Now(),
	}

	// Validate domain rules
	if err := acct.Validate(); err != nil {
		return "", err
	}

	// Set password (handles hashing and length validation)
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	// Save to store
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "username", input.Username, "role", input.Role)

	return acct.ID, nil
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, username, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}

	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		Username:    username,
		DisplayName: "Sales Admin",
		Password:    password,
		Role:        account.RoleAdmin,
	}, deps)
	if err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "username", username)
	return nil
}
