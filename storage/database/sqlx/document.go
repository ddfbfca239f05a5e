package sqlxrepos

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/document"
)

// signedURLTTL bounds how long a minted download link stays valid.
const signedURLTTL = 15 * time.Minute

type documentRepository struct {
	db *sqlx.DB
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *sqlx.DB) *documentRepository {
	return &documentRepository{db: db}
}

type documentRow struct {
	ID          string      `db:"id"`
	SessionID   null.String `db:"session_id"`
	GroupID     null.String `db:"group_id"`
	Kind        string      `db:"kind"`
	Name        string      `db:"name"`
	URL         string      `db:"url"`
	Size        int64       `db:"size"`
	ContentType string      `db:"content_type"`
	CreatedBy   string      `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (repo documentRepository) row(doc document.Document) documentRow {
	return documentRow{
		ID:          doc.ID,
		SessionID:   doc.SessionID,
		GroupID:     doc.GroupID,
		Kind:        doc.Kind,
		Name:        doc.Name,
		URL:         doc.URL,
		Size:        doc.Size,
		ContentType: doc.ContentType,
		CreatedBy:   doc.CreatedBy,
		CreatedAt:   doc.CreatedAt.UTC(),
	}
}

func (repo documentRepository) unrow(r documentRow) document.Document {
	return document.Document{
		ID:          r.ID,
		SessionID:   r.SessionID,
		GroupID:     r.GroupID,
		Kind:        r.Kind,
		Name:        r.Name,
		URL:         r.URL,
		Size:        r.Size,
		ContentType: r.ContentType,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to document.ErrNotFound
func (repo documentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return document.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo documentRepository) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	r := repo.row(doc)
	query := `
		INSERT INTO document (session_id, group_id, kind, name, url, size, content_type, created_by, created_at)
		VALUES (:session_id, :group_id, :kind, :name, :url, :size, :content_type, :created_by, :created_at)
		RETURNING id`
	id, err := namedQueryID(ctx, repo.db, query, r)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "inserting document")
	}
	r.ID = id
	return repo.unrow(r), nil
}

func (repo documentRepository) QueryDocuments(ctx context.Context, sessionID, groupID null.String) ([]document.Document, error) {
	query := `
		SELECT * FROM document
		WHERE ($1::text IS NOT NULL AND session_id = $1)
		   OR ($2::text IS NOT NULL AND group_id = $2)
		ORDER BY created_at DESC`
	var rows []documentRow
	if err := repo.db.SelectContext(ctx, &rows, query, sessionID, groupID); err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	docs := make([]document.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, repo.unrow(r))
	}
	return docs, nil
}

func (repo documentRepository) GetDocumentByID(ctx context.Context, id string) (document.Document, error) {
	var r documentRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM document WHERE id = $1`, id); err != nil {
		return document.Document{}, repo.trapNoRowsErr(err, "getting document by id")
	}
	return repo.unrow(r), nil
}

func (repo documentRepository) DeleteDocument(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM document WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return document.ErrNotFound
	}
	return nil
}

// SignedURL mints an expiring HMAC-signed download link served by the API's
// file endpoint.
func (repo documentRepository) SignedURL(ctx context.Context, doc document.Document) (string, error) {
	expires := time.Now().UTC().Add(signedURLTTL).Unix()

	mac := hmac.New(sha256.New, []byte(core.Conf.SecretKey))
	fmt.Fprintf(mac, "%s|%d", doc.ID, expires)
	sig := hex.EncodeToString(mac.Sum(nil))

	q := make(url.Values)
	q.Set("expires", fmt.Sprintf("%d", expires))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/v1/documents/%s/file?%s", core.Conf.FrontendBaseURL, doc.ID, q.Encode()), nil
}
