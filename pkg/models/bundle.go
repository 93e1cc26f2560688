package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// DocumentType is the declared role of one document within a bundle.
type DocumentType string

const (
	DocMainAgreement DocumentType = "main_agreement"
	DocSOW           DocumentType = "sow"
	DocTerms         DocumentType = "terms_conditions"
	DocAmendment     DocumentType = "amendment"
	DocAddendum      DocumentType = "addendum"
	DocExhibit       DocumentType = "exhibit"
	DocSchedule      DocumentType = "schedule"
	DocOther         DocumentType = "other"
)

// ValidDocumentTypes is the closed declared-type set.
var ValidDocumentTypes = map[DocumentType]bool{
	DocMainAgreement: true,
	DocSOW:           true,
	DocTerms:         true,
	DocAmendment:     true,
	DocAddendum:      true,
	DocExhibit:       true,
	DocSchedule:      true,
	DocOther:         true,
}

// DocumentInput is one raw document handed to the pipeline. Immutable once
// constructed; owned by its bundle for the lifetime of one extraction call.
type DocumentInput struct {
	Filename string
	Type     DocumentType
	Label    string
	Data     []byte
}

// DocumentBundle is an ordered set of 1–5 related documents analyzed as one
// contract package. Insertion order is analysis order.
type DocumentBundle struct {
	Documents []DocumentInput
}

// Bundle size limits.
const (
	MinBundleSize = 1
	MaxBundleSize = 5
)

// Digest returns a hex SHA-256 over the bundle content, declared types and
// labels, in order. Two bundles with the same digest produce the same
// extraction, which makes the digest a safe cache key.
func (b *DocumentBundle) Digest() string {
	h := sha256.New()
	for i, d := range b.Documents {
		h.Write([]byte(strconv.Itoa(i)))
		h.Write([]byte(d.Filename))
		h.Write([]byte{0})
		h.Write([]byte(d.Type))
		h.Write([]byte{0})
		h.Write([]byte(d.Label))
		h.Write([]byte{0})
		h.Write(d.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}
