package inmemdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/document"
)

type documentRepository struct {
	db *documentTable
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *DB) *documentRepository {
	return &documentRepository{db: db.document}
}

func (repo *documentRepository) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	doc.ID = uuid.New().String()
	repo.db.table[doc.ID] = &doc
	return doc, nil
}

func (repo *documentRepository) QueryDocuments(ctx context.Context, sessionID, groupID null.String) ([]document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	docs := make([]document.Document, 0)
	for _, doc := range repo.db.table {
		bySession := sessionID.Valid && doc.SessionID.Valid && doc.SessionID.String == sessionID.String
		byGroup := groupID.Valid && doc.GroupID.Valid && doc.GroupID.String == groupID.String
		if bySession || byGroup {
			docs = append(docs, *doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

func (repo *documentRepository) GetDocumentByID(ctx context.Context, id string) (document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if doc, ok := repo.db.table[id]; ok {
		return *doc, nil
	}
	return document.Document{}, document.ErrNotFound
}

func (repo *documentRepository) DeleteDocument(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return document.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *documentRepository) SignedURL(ctx context.Context, doc document.Document) (string, error) {
	return fmt.Sprintf("%s/v1/documents/%s/file", core.Conf.FrontendBaseURL, doc.ID), nil
}
