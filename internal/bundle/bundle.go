// Package bundle assembles uploaded documents into a DocumentBundle.
package bundle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pactscan/pactscan/pkg/models"
)

// Sentinel errors for bundle construction failures.
var (
	ErrBundleEmpty    = errors.New("bundle must contain at least one document")
	ErrBundleTooLarge = fmt.Errorf("bundle must contain at most %d documents", models.MaxBundleSize)
	ErrEmptyDocument  = errors.New("document has no content")
	ErrNoFilename     = errors.New("document has no filename")
)

// Builder accumulates documents and produces an immutable DocumentBundle.
// One builder per upload request; not safe for concurrent use (and never
// shared across requests by construction).
type Builder struct {
	docs []models.DocumentInput
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends one document. The declared type is normalized to the closed
// set; anything unrecognized becomes "other". Data is copied so later caller
// mutation cannot reach the bundle.
func (b *Builder) Add(filename string, docType models.DocumentType, label string, data []byte) error {
	if len(b.docs) >= models.MaxBundleSize {
		return ErrBundleTooLarge
	}
	if strings.TrimSpace(filename) == "" {
		return ErrNoFilename
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	dt := models.DocumentType(strings.ToLower(strings.TrimSpace(string(docType))))
	if !models.ValidDocumentTypes[dt] {
		dt = models.DocOther
	}

	owned := make([]byte, len(data))
	copy(owned, data)

	b.docs = append(b.docs, models.DocumentInput{
		Filename: strings.TrimSpace(filename),
		Type:     dt,
		Label:    strings.TrimSpace(label),
		Data:     owned,
	})
	return nil
}

// Build returns the bundle, enforcing the [1,5] size invariant.
func (b *Builder) Build() (*models.DocumentBundle, error) {
	if len(b.docs) < models.MinBundleSize {
		return nil, ErrBundleEmpty
	}
	docs := make([]models.DocumentInput, len(b.docs))
	copy(docs, b.docs)
	return &models.DocumentBundle{Documents: docs}, nil
}
