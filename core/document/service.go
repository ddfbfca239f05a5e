package document

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
)

var ErrNotFound = errors.New("document not found")

type (
	Repository interface {
		CreateDocument(ctx context.Context, doc Document) (Document, error)
		QueryDocuments(ctx context.Context, sessionID, groupID null.String) ([]Document, error)
		GetDocumentByID(ctx context.Context, id string) (Document, error)
		DeleteDocument(ctx context.Context, id string) error
		// SignedURL mints a short-lived download URL for a stored file.
		SignedURL(ctx context.Context, doc Document) (string, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Attach validates and stores an attachment. Validation failures are
// rejected here, before any storage call.
func (svc *Service) Attach(ctx context.Context, nd NewDocument, createdBy string) (Document, error) {
	if !nd.SessionID.Valid && !nd.GroupID.Valid {
		return Document{}, core.NewValidationError(errors.New("a session id or group id is required"))
	}

	switch nd.Kind {
	case KindLink:
		u, err := url.Parse(nd.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Document{}, core.NewValidationError(nil, core.FieldError{Field: "url", Error: "must be a valid http(s) URL"})
		}
	case KindFile:
		if nd.Size > core.Conf.MaxDocumentSize {
			return Document{}, core.NewValidationError(nil, core.FieldError{
				Field: "size",
				Error: fmt.Sprintf("file exceeds the %d MB limit", core.Conf.MaxDocumentSize>>20),
			})
		}
		if !allowedType(nd.ContentType) {
			return Document{}, core.NewValidationError(nil, core.FieldError{Field: "content_type", Error: "unsupported file type"})
		}
	default:
		return Document{}, core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "must be file or link"})
	}

	return svc.repo.CreateDocument(ctx, Document{
		SessionID:   nd.SessionID,
		GroupID:     nd.GroupID,
		Kind:        nd.Kind,
		Name:        core.CleanString(nd.Name),
		URL:         nd.URL,
		Size:        nd.Size,
		ContentType: nd.ContentType,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	})
}

// Query lists the attachments of a session or group.
func (svc *Service) Query(ctx context.Context, sessionID, groupID null.String) ([]Document, error) {
	return svc.repo.QueryDocuments(ctx, sessionID, groupID)
}

// Delete removes an attachment. A missing row is nothing to do.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteDocument(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}

// DownloadURL returns the target for links and a signed URL for files.
func (svc *Service) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := svc.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.Kind == KindLink {
		return doc.URL, nil
	}
	return svc.repo.SignedURL(ctx, doc)
}

func allowedType(contentType string) bool {
	for _, t := range core.Conf.AllowedDocTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
