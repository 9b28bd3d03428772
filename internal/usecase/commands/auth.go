package commands

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/domain/client"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/jwt"
	"storefront/internal/pkg/password"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrClientInactive       = errs.New("client inactive")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
)

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	ClientID    uuid.UUID
	Email       string
	AccessToken string
	ExpiresIn   time.Duration
}

type AuthCommands interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
	clock      clock.Clock
	logger     *slog.Logger
}

func NewAuthCommands(uow shared.UnitOfWork, jwtService *jwt.Service, clock clock.Clock, logger *slog.Logger) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		jwtService: jwtService,
		clock:      clock,
		logger:     logger,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	creds, err := client.NewCredentials(in.Email, in.Password)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCredentials)
	}

	snap, err := a.validateClient(ctx, creds)
	if err != nil {
		return nil, err
	}

	accessToken, err := a.jwtService.GenerateToken(snap.ID, snap.Email)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Clients().UpdateLastLogin(ctx, tx.DB(), snap.ID, a.clock.Now())
	})
	if err != nil {
		// Login already succeeded; only the bookkeeping failed.
		a.logger.Warn("failed to update last login", "client_id", snap.ID, "error", err.Error())
	}

	return &LoginResult{
		ClientID:    snap.ID,
		Email:       snap.Email,
		AccessToken: accessToken,
		ExpiresIn:   a.jwtService.Duration(),
	}, nil
}

func (a *authCommandsImpl) validateClient(ctx context.Context, creds client.Credentials) (*shared.ClientSnapshot, error) {
	snap, err := a.uow.CommandReads().ClientByEmail(ctx, creds.Email().Value())
	if err != nil || snap == nil {
		// Same error as a password mismatch to prevent account enumeration
		return nil, ErrInvalidCredentials
	}

	if err := password.ComparePassword(snap.PasswordHash, creds.Password().Value()); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !snap.IsActive {
		return nil, ErrClientInactive
	}
	return snap, nil
}
