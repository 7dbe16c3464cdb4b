package auth

import (
	"context"

	"github.com/keyxmakerx/portfolio/internal/store"
)

// CredentialRepository reads and replaces the admin password hash.
type CredentialRepository interface {
	PasswordHash(ctx context.Context) (string, error)
	UpdatePasswordHash(ctx context.Context, hash string) error
}

// storeCredentials keeps the hash in the content store's db.json.
type storeCredentials struct {
	store *store.Store
}

// NewCredentialRepository returns a repository backed by st.
func NewCredentialRepository(st *store.Store) CredentialRepository {
	return &storeCredentials{store: st}
}

func (r *storeCredentials) PasswordHash(ctx context.Context) (string, error) {
	var hash string
	r.store.Read(func(d *store.Data) {
		hash = d.AdminPasswordHash
	})
	return hash, nil
}

func (r *storeCredentials) UpdatePasswordHash(ctx context.Context, hash string) error {
	return r.store.Update(ctx, func(d *store.Data) error {
		d.AdminPasswordHash = hash
		return nil
	})
}
