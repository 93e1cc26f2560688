package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactscan/pactscan/pkg/models"
)

func TestBuild_SingleDocument(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("lease.pdf", models.DocMainAgreement, "Office lease", []byte("%PDF-1.4")))

	bun, err := b.Build()
	require.NoError(t, err)
	require.Len(t, bun.Documents, 1)
	assert.Equal(t, "lease.pdf", bun.Documents[0].Filename)
	assert.Equal(t, models.DocMainAgreement, bun.Documents[0].Type)
	assert.Equal(t, "Office lease", bun.Documents[0].Label)
}

func TestBuild_Empty(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.ErrorIs(t, err, ErrBundleEmpty)
}

func TestAdd_TooManyDocuments(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < models.MaxBundleSize; i++ {
		require.NoError(t, b.Add("doc.pdf", models.DocOther, "", []byte("x")))
	}
	err := b.Add("one-too-many.pdf", models.DocOther, "", []byte("x"))
	assert.ErrorIs(t, err, ErrBundleTooLarge)
}

func TestAdd_EmptyContent(t *testing.T) {
	err := NewBuilder().Add("empty.pdf", models.DocSOW, "", nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestAdd_MissingFilename(t *testing.T) {
	err := NewBuilder().Add("   ", models.DocSOW, "", []byte("x"))
	assert.ErrorIs(t, err, ErrNoFilename)
}

func TestAdd_NormalizesDeclaredType(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("a.pdf", " SOW ", "", []byte("x")))
	require.NoError(t, b.Add("b.pdf", "purchase_order", "", []byte("x")))

	bun, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, models.DocSOW, bun.Documents[0].Type)
	assert.Equal(t, models.DocOther, bun.Documents[1].Type)
}

func TestBuild_PreservesInsertionOrder(t *testing.T) {
	b := NewBuilder()
	names := []string{"main.pdf", "amendment-1.pdf", "exhibit-a.pdf"}
	types := []models.DocumentType{models.DocMainAgreement, models.DocAmendment, models.DocExhibit}
	for i := range names {
		require.NoError(t, b.Add(names[i], types[i], "", []byte{byte(i)}))
	}

	bun, err := b.Build()
	require.NoError(t, err)
	for i := range names {
		assert.Equal(t, names[i], bun.Documents[i].Filename)
		assert.Equal(t, types[i], bun.Documents[i].Type)
	}
}

func TestAdd_CopiesData(t *testing.T) {
	data := []byte("original")
	b := NewBuilder()
	require.NoError(t, b.Add("a.pdf", models.DocOther, "", data))
	data[0] = 'X'

	bun, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), bun.Documents[0].Data)
}

func TestDigest_StableAndOrderSensitive(t *testing.T) {
	build := func(names ...string) *models.DocumentBundle {
		b := NewBuilder()
		for _, n := range names {
			require.NoError(t, b.Add(n, models.DocOther, "", []byte(n)))
		}
		bun, err := b.Build()
		require.NoError(t, err)
		return bun
	}

	a := build("one.pdf", "two.pdf")
	b := build("one.pdf", "two.pdf")
	c := build("two.pdf", "one.pdf")

	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
}
