package document

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Document kinds
const (
	KindFile = "file"
	KindLink = "link"
)

// Document is a supporting attachment on a session or a group: an uploaded
// file or an external link.
type Document struct {
	ID        string      `json:"id"`
	SessionID null.String `json:"session_id"`
	GroupID   null.String `json:"group_id"`
	Kind      string      `json:"kind"` // file|link
	Name      string      `json:"name"`
	URL       string      `json:"url"`          // storage key for files, target for links
	Size      int64       `json:"size"`         // bytes; 0 for links
	ContentType string    `json:"content_type"` // empty for links
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDocument is the attach payload.
type NewDocument struct {
	SessionID   null.String `json:"session_id"`
	GroupID     null.String `json:"group_id"`
	Kind        string      `json:"kind" validate:"required,oneof=file link"`
	Name        string      `json:"name" validate:"required"`
	URL         string      `json:"url" validate:"required"`
	Size        int64       `json:"size"`
	ContentType string      `json:"content_type"`
}
