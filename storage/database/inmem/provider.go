package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/okapitech/ratiba/core/provider"
)

type providerRepository struct {
	db *providerTable
}

var _ provider.Repository = (*providerRepository)(nil) // interface compliance check

func NewProviderRepository(db *DB) *providerRepository {
	return &providerRepository{db: db.provider}
}

func (repo *providerRepository) query() []provider.Provider {
	provs := make([]provider.Provider, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		provs = append(provs, *p)
	}
	return provs
}

func (repo *providerRepository) CreateProvider(ctx context.Context, prov provider.Provider) (provider.Provider, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	prov.ID = uuid.New().String()
	repo.db.table[prov.ID] = &prov
	return prov, nil
}

func (repo *providerRepository) GetProviderByID(ctx context.Context, id string) (provider.Provider, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if prov, ok := repo.db.table[id]; ok {
		return *prov, nil
	}
	return provider.Provider{}, provider.ErrNotFound
}

func (repo *providerRepository) GetProviderByEmail(ctx context.Context, email string) (provider.Provider, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, prov := range repo.query() {
		if strings.EqualFold(prov.Email, email) {
			return prov, nil
		}
	}
	return provider.Provider{}, provider.ErrNotFound
}

func (repo *providerRepository) QueryAllProviders(ctx context.Context) ([]provider.Provider, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	provs := repo.query()
	sort.Slice(provs, func(i, j int) bool { return provs[i].Name < provs[j].Name })
	return provs, nil
}

func (repo *providerRepository) UpdateProvider(ctx context.Context, prov provider.Provider) (provider.Provider, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[prov.ID]; !ok {
		return provider.Provider{}, provider.ErrNotFound
	}
	repo.db.table[prov.ID] = &prov
	return prov, nil
}

func (repo *providerRepository) DeleteProvidersByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
