package provider

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/okapitech/ratiba/core"
)

var (
	ErrNotFound    = errors.New("provider not found")
	ErrEmailExists = errors.New("a provider with this email already exists")
)

type (
	Repository interface {
		CreateProvider(ctx context.Context, prov Provider) (Provider, error)
		GetProviderByID(ctx context.Context, id string) (Provider, error)
		GetProviderByEmail(ctx context.Context, email string) (Provider, error)
		QueryAllProviders(ctx context.Context) ([]Provider, error)
		UpdateProvider(ctx context.Context, prov Provider) (Provider, error)
		DeleteProvidersByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, np NewProvider) (Provider, error)
		GetByID(ctx context.Context, id string) (Provider, error)
		GetByEmail(ctx context.Context, email string) (Provider, error)
		QueryAll(ctx context.Context) ([]Provider, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewProvider) (Provider, error) {
	email := core.CleanString(np.Email, true /* lower */)
	if _, err := svc.repo.GetProviderByEmail(ctx, email); err == nil {
		return Provider{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return Provider{}, err
	}

	now := time.Now().UTC()
	active := true
	prov := Provider{
		Name:       core.CleanString(np.Name),
		Email:      email,
		Role:       np.Role,
		IsActive:   &active,
		SchoolID:   np.SchoolID,
		DistrictID: np.DistrictID,
		StateID:    np.StateID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateProvider(ctx, prov)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Provider, error) {
	return svc.repo.GetProviderByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Provider, error) {
	return svc.repo.GetProviderByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Provider, error) {
	return svc.repo.QueryAllProviders(ctx)
}
