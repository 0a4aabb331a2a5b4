package organizations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/store"
	"github.com/taskhive/backend/pkg/slug"
)

// maxSlugAttempts bounds suffix disambiguation (acme, acme-2, ...).
const maxSlugAttempts = 50

// Repository handles organization persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an organization with a slug derived from its name.
// Collisions are disambiguated with numeric suffixes in order, so the
// outcome is deterministic for a given store state; the unique index
// arbitrates concurrent racers. Returns store.ErrSlugTaken when every
// candidate is taken.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	base := slug.Make(org.Name)
	if base == "" {
		return fmt.Errorf("derive slug from %q: %w", org.Name, store.ErrSlugTaken)
	}
	const q = `INSERT INTO organizations (name, slug, contact_email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		err := r.pool.QueryRow(ctx, q, org.Name, candidate, org.ContactEmail).
			Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
		if err == nil {
			org.Slug = candidate
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return err
	}
	return fmt.Errorf("slug %q: %w", base, store.ErrSlugTaken)
}

// GetBySlug returns the organization with the given slug.
func (r *Repository) GetBySlug(ctx context.Context, s string) (*models.Organization, error) {
	const q = `SELECT id, name, slug, contact_email, created_at, updated_at
		FROM organizations WHERE slug = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, s).
		Scan(&org.ID, &org.Name, &org.Slug, &org.ContactEmail, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// List returns all organizations. This is the only tenant-agnostic
// read in the system (discovery).
func (r *Repository) List(ctx context.Context) ([]models.Organization, error) {
	const q = `SELECT id, name, slug, contact_email, created_at, updated_at
		FROM organizations ORDER BY name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.ContactEmail, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
