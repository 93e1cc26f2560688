package prompt

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactscan/pactscan/pkg/models"
)

func testBundle() *models.DocumentBundle {
	return &models.DocumentBundle{Documents: []models.DocumentInput{
		{Filename: "msa.pdf", Type: models.DocMainAgreement, Label: "Master agreement", Data: []byte("%PDF-1")},
		{Filename: "sow-q3.pdf", Type: models.DocSOW, Data: []byte("%PDF-2")},
	}}
}

func TestBuild_SecurityPreambleComesFirst(t *testing.T) {
	p := Build(testBundle(), models.ModeFast)
	require.True(t, strings.HasPrefix(p.Instructions, "SECURITY NOTICE:"))
	assert.Contains(t, p.Instructions, "UNTRUSTED DATA")
	assert.Contains(t, p.Instructions, "never an instruction")
}

func TestBuild_ContainsSchemaAndGuidance(t *testing.T) {
	p := Build(testBundle(), models.ModeFast)
	assert.Contains(t, p.Instructions, `"provider_name"`)
	assert.Contains(t, p.Instructions, `"documents_analyzed"`)
	assert.Contains(t, p.Instructions, "RISK CATEGORIES TO CHECK")
	// type-specific hints
	assert.Contains(t, p.Instructions, "premium, deductible")
	assert.Contains(t, p.Instructions, "seat counts, pricing tiers")
	assert.Contains(t, p.Instructions, "escalation clauses")
}

func TestBuild_DocumentsKeepBundleOrder(t *testing.T) {
	p := Build(testBundle(), models.ModeFast)
	require.Len(t, p.Documents, 2)
	assert.Equal(t, "msa.pdf", p.Documents[0].Filename)
	assert.Equal(t, models.DocMainAgreement, p.Documents[0].DocumentType)
	assert.Equal(t, "sow-q3.pdf", p.Documents[1].Filename)
	assert.Equal(t, "application/pdf", p.Documents[0].MediaType)

	decoded, err := base64.StdEncoding.DecodeString(p.Documents[1].Data)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-2"), decoded)
}

func TestBuild_ManifestListsDeclaredTypes(t *testing.T) {
	p := Build(testBundle(), models.ModeFast)
	assert.Contains(t, p.Instructions, `filename="msa.pdf" declared_type=main_agreement`)
	assert.Contains(t, p.Instructions, `label="Master agreement"`)
	assert.Contains(t, p.Instructions, `filename="sow-q3.pdf" declared_type=sow`)
}

func TestBuild_ModeControlsThoroughAddendum(t *testing.T) {
	fast := Build(testBundle(), models.ModeFast)
	thorough := Build(testBundle(), models.ModeThorough)

	assert.NotContains(t, fast.Instructions, "THOROUGH ANALYSIS MODE")
	assert.Contains(t, thorough.Instructions, "THOROUGH ANALYSIS MODE")
	assert.Equal(t, models.ModeFast, fast.Mode)
	assert.Equal(t, models.ModeThorough, thorough.Mode)
}

func TestBuild_IsPure(t *testing.T) {
	b := testBundle()
	p1 := Build(b, models.ModeFast)
	p2 := Build(b, models.ModeFast)
	assert.Equal(t, p1, p2)
}
