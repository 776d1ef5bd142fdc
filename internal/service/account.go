package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/auth"
	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/repository"
)

// Credentials is what a user types to register or log in.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// AccountService registers and authenticates accounts.
//
//	AuthHandler (HTTP) → AccountService → AccountRepository (DB)
//	                                    ↘ PasswordService (bcrypt)
//	                                    ↘ TokenService (JWT)
type AccountService struct {
	accounts  repository.AccountRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAccountService(
	accounts repository.AccountRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// AuthResult bundles the caller's identity with the JWT that proves it, so
// the handler can set the cookie and respond in one step.
type AuthResult struct {
	Identity auth.Identity
	Token    string
}

// Register creates an account. Only the bcrypt hash of the password is
// stored. An email that is already registered fails with
// apperror.ErrDuplicateAccount and the existing account is untouched.
//
// Emails are compared exactly as typed: "A@x.com" and "a@x.com" are two
// different accounts.
func (s *AccountService) Register(ctx context.Context, creds Credentials) (*model.Account, error) {
	if err := validateStruct(creds); err != nil {
		return nil, err
	}
	if len(creds.Password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}

	account := &model.Account{Email: creds.Email, PasswordHash: hash}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, apperror.ErrDuplicateAccount) {
			return nil, err
		}
		s.logger.Error("failed to create account",
			slog.String("email", creds.Email),
			slog.String("error", err.Error()),
		)
		return nil, apperror.StorageFailure("creating account")
	}

	s.logger.Info("account registered", slog.String("email", account.Email))
	return account, nil
}

// Authenticate succeeds only when an account with exactly this email exists
// and the password matches its hash. Every other outcome is
// apperror.ErrInvalidCredentials, without saying which half was wrong.
func (s *AccountService) Authenticate(ctx context.Context, creds Credentials) (*AuthResult, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, apperror.InvalidCredentials()
	}

	account, err := s.accounts.GetAccountByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		s.logger.Error("failed to load account",
			slog.String("email", creds.Email),
			slog.String("error", err.Error()),
		)
		return nil, apperror.StorageFailure("loading account")
	}

	if err := s.passwords.Verify(account.PasswordHash, creds.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash is unusable",
				slog.String("email", account.Email),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(account.Email)
	if err != nil {
		return nil, fmt.Errorf("service/account: issuing token for %s: %w", account.Email, err)
	}
	identity, err := s.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("service/account: reading back token: %w", err)
	}

	s.logger.Info("account authenticated",
		slog.String("email", identity.Email),
		slog.String("session", identity.SessionID),
	)
	return &AuthResult{Identity: identity, Token: token}, nil
}
