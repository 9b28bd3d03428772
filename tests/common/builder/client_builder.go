//go:build unit || e2e

package builder

import (
	"storefront/internal/domain/client"
	"storefront/internal/usecase/queries"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type ClientBuilder struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	EmailVerified bool
	IsActive      bool
}

func NewClientBuilder() *ClientBuilder {
	return &ClientBuilder{
		ID:            uuid.New(),
		Email:         "buyer@example.com",
		PasswordHash:  "hashed_password",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		EmailVerified: true,
		IsActive:      true,
	}
}

func (b *ClientBuilder) With(mutate func(*ClientBuilder)) *ClientBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *ClientBuilder) BuildDomain() (*client.Client, error) {
	email, err := client.NewEmail(b.Email)
	if err != nil {
		return nil, err
	}
	return client.Reconstruct(b.ID, email, b.PasswordHash, b.FirstName, b.LastName, b.EmailVerified, b.IsActive, nil), nil
}

func (b *ClientBuilder) BuildSnapshot() *shared.ClientSnapshot {
	return &shared.ClientSnapshot{
		ID:            b.ID,
		Email:         b.Email,
		PasswordHash:  b.PasswordHash,
		FirstName:     b.FirstName,
		LastName:      b.LastName,
		EmailVerified: b.EmailVerified,
		IsActive:      b.IsActive,
	}
}

func (b *ClientBuilder) BuildReadModel() *queries.ClientView {
	return &queries.ClientView{
		ID:            b.ID,
		Email:         b.Email,
		FirstName:     b.FirstName,
		LastName:      b.LastName,
		EmailVerified: b.EmailVerified,
		IsActive:      b.IsActive,
	}
}

// Fluent builder methods
func (b *ClientBuilder) WithEmail(email string) *ClientBuilder {
	b.Email = email
	return b
}

func (b *ClientBuilder) WithPasswordHash(hash string) *ClientBuilder {
	b.PasswordHash = hash
	return b
}

func (b *ClientBuilder) Unverified() *ClientBuilder {
	b.EmailVerified = false
	return b
}

func (b *ClientBuilder) AsInactive() *ClientBuilder {
	b.IsActive = false
	return b
}
