package readstore

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/usecase/queries"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

const clientColumns = `id, email, password_hash, first_name, last_name, email_verified, is_active`

type ClientReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewClientReadStore(dbtx db.DBTX, logger *slog.Logger) *ClientReadStore {
	return &ClientReadStore{db: dbtx, logger: logger}
}

// FindByID returns the client view for queries.
func (r *ClientReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ClientView, error) {
	snap, err := r.SnapshotByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &queries.ClientView{
		ID:            snap.ID,
		Email:         snap.Email,
		FirstName:     snap.FirstName,
		LastName:      snap.LastName,
		EmailVerified: snap.EmailVerified,
		IsActive:      snap.IsActive,
	}, nil
}

func (r *ClientReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.ClientSnapshot, error) {
	var c shared.ClientSnapshot
	err := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName, &c.EmailVerified, &c.IsActive)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find client by id", err)
	}
	return &c, nil
}

func (r *ClientReadStore) SnapshotByEmail(ctx context.Context, email string) (*shared.ClientSnapshot, error) {
	var c shared.ClientSnapshot
	err := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName, &c.EmailVerified, &c.IsActive)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find client by email", err)
	}
	return &c, nil
}
