//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/password"
	"storefront/internal/usecase/commands"
	"storefront/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const loginPassword = "correct-horse-battery"

func seedLoginClient(t *testing.T, f *fixture, mutate func(*builder.ClientBuilder)) *builder.ClientBuilder {
	t.Helper()
	hash, err := password.HashPasswordWithCost(loginPassword, bcrypt.MinCost)
	require.NoError(t, err)
	b := builder.NewClientBuilder().WithEmail("login@example.com").WithPasswordHash(hash)
	if mutate != nil {
		mutate(b)
	}
	f.reads.AddClient(b.BuildSnapshot())
	return b
}

func TestAuthCommands_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success: issues a token and records the login", func(t *testing.T) {
		f := newFixture(t)
		b := seedLoginClient(t, f, nil)

		res, err := f.auth.Login(ctx, commands.LoginInput{Email: "login@example.com", Password: loginPassword})

		require.NoError(t, err)
		assert.Equal(t, b.ID, res.ClientID)
		assert.Equal(t, "login@example.com", res.Email)
		assert.NotEmpty(t, res.AccessToken)
		assert.Equal(t, f.clock.Now(), f.uow.Logins[b.ID])
	})

	t.Run("success: last-login failure does not block the login", func(t *testing.T) {
		f := newFixture(t)
		seedLoginClient(t, f, nil)
		f.uow.FailOn["clients.last_login"] = errors.New("read only transaction")

		res, err := f.auth.Login(ctx, commands.LoginInput{Email: "login@example.com", Password: loginPassword})

		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.Empty(t, f.uow.Logins)
	})

	testCases := []struct {
		name    string
		mutate  func(*builder.ClientBuilder)
		input   commands.LoginInput
		wantErr error
	}{
		{
			name:    "error: wrong password",
			input:   commands.LoginInput{Email: "login@example.com", Password: "not-the-password"},
			wantErr: commands.ErrInvalidCredentials,
		},
		{
			name:    "error: unknown email",
			input:   commands.LoginInput{Email: "nobody@example.com", Password: loginPassword},
			wantErr: commands.ErrInvalidCredentials,
		},
		{
			name:    "error: malformed email",
			input:   commands.LoginInput{Email: "not-an-email", Password: loginPassword},
			wantErr: commands.ErrInvalidCredentials,
		},
		{
			name:    "error: short password",
			input:   commands.LoginInput{Email: "login@example.com", Password: "short"},
			wantErr: commands.ErrInvalidCredentials,
		},
		{
			name:    "error: inactive client",
			mutate:  func(b *builder.ClientBuilder) { b.AsInactive() },
			input:   commands.LoginInput{Email: "login@example.com", Password: loginPassword},
			wantErr: commands.ErrClientInactive,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			seedLoginClient(t, f, tc.mutate)

			res, err := f.auth.Login(ctx, tc.input)

			assert.Nil(t, res)
			assert.True(t, errs.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
			assert.Empty(t, f.uow.Logins)
		})
	}
}
