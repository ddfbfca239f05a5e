package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/provider"
)

type providerRepository struct {
	db *sqlx.DB
}

var _ provider.Repository = (*providerRepository)(nil) // interface compliance check

func NewProviderRepository(db *sqlx.DB) *providerRepository {
	return &providerRepository{db: db}
}

type providerRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"name"`
	Email      string      `db:"email"`
	Role       string      `db:"role"`
	IsActive   null.Bool   `db:"is_active"`
	SchoolID   null.String `db:"school_id"`
	DistrictID null.String `db:"district_id"`
	StateID    null.String `db:"state_id"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func (repo providerRepository) row(prov provider.Provider) providerRow {
	return providerRow{
		ID:         prov.ID,
		Name:       prov.Name,
		Email:      prov.Email,
		Role:       prov.Role,
		IsActive:   null.BoolFromPtr(prov.IsActive),
		SchoolID:   prov.SchoolID,
		DistrictID: prov.DistrictID,
		StateID:    prov.StateID,
		CreatedAt:  prov.CreatedAt.UTC(),
		UpdatedAt:  prov.UpdatedAt.UTC(),
	}
}

func (repo providerRepository) unrow(r providerRow) provider.Provider {
	return provider.Provider{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Role:       r.Role,
		IsActive:   r.IsActive.Ptr(),
		SchoolID:   r.SchoolID,
		DistrictID: r.DistrictID,
		StateID:    r.StateID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to provider.ErrNotFound
func (repo providerRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return provider.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo providerRepository) CreateProvider(ctx context.Context, prov provider.Provider) (provider.Provider, error) {
	r := repo.row(prov)
	query := `
		INSERT INTO provider (name, email, role, is_active, school_id, district_id, state_id, created_at, updated_at)
		VALUES (:name, :email, :role, :is_active, :school_id, :district_id, :state_id, :created_at, :updated_at)
		RETURNING id`
	id, err := namedQueryID(ctx, repo.db, query, r)
	if err != nil {
		return provider.Provider{}, errors.Wrap(err, "inserting provider")
	}
	r.ID = id
	return repo.unrow(r), nil
}

func (repo providerRepository) GetProviderByID(ctx context.Context, id string) (provider.Provider, error) {
	var r providerRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM provider WHERE id = $1`, id); err != nil {
		return provider.Provider{}, repo.trapNoRowsErr(err, "getting provider by id")
	}
	return repo.unrow(r), nil
}

func (repo providerRepository) GetProviderByEmail(ctx context.Context, email string) (provider.Provider, error) {
	var r providerRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM provider WHERE lower(email) = lower($1)`, email); err != nil {
		return provider.Provider{}, repo.trapNoRowsErr(err, "getting provider by email")
	}
	return repo.unrow(r), nil
}

func (repo providerRepository) QueryAllProviders(ctx context.Context) ([]provider.Provider, error) {
	var rows []providerRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM provider ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying providers")
	}
	provs := make([]provider.Provider, 0, len(rows))
	for _, r := range rows {
		provs = append(provs, repo.unrow(r))
	}
	return provs, nil
}

func (repo providerRepository) UpdateProvider(ctx context.Context, prov provider.Provider) (provider.Provider, error) {
	r := repo.row(prov)
	query := `
		UPDATE provider
		SET name = :name, email = :email, role = :role, is_active = :is_active,
		    school_id = :school_id, district_id = :district_id, state_id = :state_id,
		    updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, r)
	if err != nil {
		return provider.Provider{}, errors.Wrap(err, "updating provider")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return provider.Provider{}, provider.ErrNotFound
	}
	return repo.unrow(r), nil
}

func (repo providerRepository) DeleteProvidersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM provider WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting providers")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting providers")
	}
	return nil
}
