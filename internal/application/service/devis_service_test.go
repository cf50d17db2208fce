package service

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
)

func uploadDevis(t *testing.T, env *testEnv, orderID uuid.UUID, name, content string) *entity.DevisFile {
	t.Helper()
	devis, err := env.devis.UploadDevis(context.Background(), &UploadDevisInput{
		OrderID:     orderID,
		FileName:    name,
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	})
	require.NoError(t, err)
	return devis
}

func TestUploadDevisAppendsPositions(t *testing.T) {
	env := newTestEnv(t)
	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	first := uploadDevis(t, env, order.ID, "devis-durand.pdf", "premier devis")
	second := uploadDevis(t, env, order.ID, "devis-revise.pdf", "devis révisé")

	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)

	files, err := env.devis.ListDevis(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, first.ID, files[0].ID)
	assert.Equal(t, second.ID, files[1].ID)
}

func TestUploadDevisRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t)
	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	_, err := env.devis.UploadDevis(context.Background(), &UploadDevisInput{
		OrderID:  order.ID,
		FileName: "enorme.pdf",
		Size:     2 << 20,
		Content:  strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestUploadDevisReadOnlyOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	_, err := env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusOrdered)
	require.NoError(t, err)

	_, err = env.devis.UploadDevis(ctx, &UploadDevisInput{
		OrderID:  order.ID,
		FileName: "tardif.pdf",
		Size:     4,
		Content:  strings.NewReader("tard"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsReadOnly(err))
}

func TestDeleteDevisResequencesRemaining(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	first := uploadDevis(t, env, order.ID, "a.pdf", "a")
	second := uploadDevis(t, env, order.ID, "b.pdf", "b")
	third := uploadDevis(t, env, order.ID, "c.pdf", "c")

	require.NoError(t, env.devis.DeleteDevis(ctx, second.ID))

	files, err := env.devis.ListDevis(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, first.ID, files[0].ID)
	assert.Equal(t, 1, files[0].Position)
	assert.Equal(t, third.ID, files[1].ID)
	assert.Equal(t, 2, files[1].Position)
}

func TestReorderDevisValidatesExactSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	first := uploadDevis(t, env, order.ID, "a.pdf", "a")
	second := uploadDevis(t, env, order.ID, "b.pdf", "b")

	_, err := env.devis.ReorderDevis(ctx, order.ID, []uuid.UUID{first.ID})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	files, err := env.devis.ReorderDevis(ctx, order.ID, []uuid.UUID{second.ID, first.ID})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, second.ID, files[0].ID)
	assert.Equal(t, 1, files[0].Position)
	assert.Equal(t, first.ID, files[1].ID)
	assert.Equal(t, 2, files[1].Position)
}

func TestRenameDevisKeepsStoredFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	devis := uploadDevis(t, env, order.ID, "original.pdf", "contenu")

	renamed, err := env.devis.RenameDevis(ctx, devis.ID, "devis-final.pdf")
	require.NoError(t, err)
	assert.Equal(t, "devis-final.pdf", renamed.FileName)
	assert.Equal(t, devis.StoredPath, renamed.StoredPath)
}

func TestWriteArchiveBundlesFilesInOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	uploadDevis(t, env, order.ID, "devis.pdf", "premier")
	uploadDevis(t, env, order.ID, "devis.pdf", "second")

	var buf bytes.Buffer
	require.NoError(t, env.devis.WriteArchive(ctx, order.ID, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	// Duplicate display names are disambiguated, so both entries survive
	names := []string{zr.File[0].Name, zr.File[1].Name}
	assert.NotEqual(t, names[0], names[1])
	for _, f := range zr.File {
		assert.True(t, strings.HasSuffix(f.Name, "devis.pdf"))
	}
}

func TestWriteArchiveEmptyOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	var buf bytes.Buffer
	err := env.devis.WriteArchive(ctx, order.ID, &buf)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
	assert.Zero(t, buf.Len())
}
