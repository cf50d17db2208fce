package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
)

func createDraftVersion(t *testing.T, env *testEnv) *entity.EstimateVersion {
	t.Helper()
	version, err := env.estimates.CreateVersion(context.Background(), &CreateVersionInput{
		ProjectID:        env.project.ID,
		Label:            "Variante A",
		MarginMultiplier: 1.5,
		TaxRateBp:        2000,
	})
	require.NoError(t, err)
	return version
}

func float64Ptr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64       { return &v }

func TestCreateVersionDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	version, err := env.estimates.CreateVersion(ctx, &CreateVersionInput{
		ProjectID: env.project.ID,
		Label:     "Base",
		TaxRateBp: 2000,
	})
	require.NoError(t, err)

	assert.Equal(t, enum.EstimateStatusDraft, version.Status)
	assert.Equal(t, 1.0, version.MarginMultiplier)
	assert.Equal(t, enum.RoundingModeNone, version.RoundingMode)
}

func TestCreateVersionUnknownProject(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.estimates.CreateVersion(context.Background(), &CreateVersionInput{
		ProjectID: uuid.New(),
		Label:     "Orpheline",
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestAddLineComputesDerivedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	// FO: 2 x 100.00 x 1.2 = 240.00, MO: 3h x 45.00 = 135.00,
	// cost 375.00, sale 375.00 x 1.5 = 562.50
	item, err := env.estimates.AddLine(ctx, version.ID, nil, &LineInput{
		Title:            "Chemin de câbles",
		Quantity:         2,
		UnitPriceHTCents: 10000,
		KFo:              float64Ptr(1.2),
		HMo:              3,
		LaborRoleID:      &env.role.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, enum.ItemTypeLine, item.ItemType)
	assert.Equal(t, 1, item.Position)
	assert.Equal(t, 1.0, item.KMo)
	assert.Equal(t, int64(2000), item.TaxRateBp)
	assert.Equal(t, int64(28125), item.PuHTCents)
	assert.Equal(t, int64(56250), item.LineTotalHTCents)
	assert.Equal(t, int64(11250), item.LineTaxCents)
	assert.Equal(t, int64(67500), item.LineTotalTTCCents)
}

func TestGetVersionFlushesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	_, err := env.estimates.AddLine(ctx, version.ID, nil, &LineInput{
		Title:            "Chemin de câbles",
		Quantity:         2,
		UnitPriceHTCents: 10000,
		KFo:              float64Ptr(1.2),
		HMo:              3,
		LaborRoleID:      &env.role.ID,
	})
	require.NoError(t, err)

	view, err := env.estimates.GetVersion(ctx, version.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(37500), view.Totals.CostSubtotalCents)
	assert.Equal(t, int64(56250), view.Totals.SaleSubtotalCents)
	assert.Equal(t, int64(56250), view.Totals.SaleTotalCents)
	assert.Equal(t, int64(11250), view.Totals.AdjustedTaxCents)
	assert.Equal(t, int64(67500), view.Totals.RoundedTtcCents)

	// The read flushed the debounced write, so the persisted row agrees
	// with the computed block.
	stored, err := env.versionRepo.GetByID(ctx, version.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(56250), stored.TotalHTCents)
	assert.Equal(t, int64(11250), stored.TotalTaxCents)
	assert.Equal(t, int64(67500), stored.TotalTTCCents)
}

func TestUpdateVersionDiscountCents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	_, err := env.estimates.AddLine(ctx, version.ID, nil, &LineInput{
		Title:            "Chemin de câbles",
		Quantity:         2,
		UnitPriceHTCents: 10000,
		KFo:              float64Ptr(1.2),
		HMo:              3,
		LaborRoleID:      &env.role.ID,
	})
	require.NoError(t, err)

	// 62.50 off a 562.50 sale subtotal -> 1111 bp, redisplayed as 62.49
	view, err := env.estimates.UpdateVersion(ctx, version.ID, &UpdateVersionInput{
		DiscountCents: int64Ptr(6250),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1111), view.Version.DiscountBp)
	assert.Equal(t, int64(6249), view.DiscountCents)
	assert.Equal(t, int64(50001), view.Totals.SaleTotalCents)
}

func TestUpdateVersionRoundingUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	_, err := env.estimates.AddLine(ctx, version.ID, nil, &LineInput{
		Title:            "Chemin de câbles",
		Quantity:         2,
		UnitPriceHTCents: 10000,
		KFo:              float64Ptr(1.2),
		HMo:              3,
		LaborRoleID:      &env.role.ID,
	})
	require.NoError(t, err)

	mode := enum.RoundingModeUp
	view, err := env.estimates.UpdateVersion(ctx, version.ID, &UpdateVersionInput{
		RoundingMode:      &mode,
		RoundingStepCents: int64Ptr(10000),
	})
	require.NoError(t, err)

	// 675.00 TTC rounded up to the next 100 EUR; the gap lands in the
	// adjusted tax so HT + tax still equals the rounded TTC.
	assert.Equal(t, int64(70000), view.Totals.RoundedTtcCents)
	assert.Equal(t, int64(56250), view.Totals.SaleTotalCents)
	assert.Equal(t, int64(13750), view.Totals.AdjustedTaxCents)
}

func TestDeleteItemCascadesAndResequences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	secA, err := env.estimates.AddSection(ctx, version.ID, nil, "Courants forts")
	require.NoError(t, err)
	secB, err := env.estimates.AddSection(ctx, version.ID, nil, "Courants faibles")
	require.NoError(t, err)
	secC, err := env.estimates.AddSection(ctx, version.ID, nil, "Divers")
	require.NoError(t, err)

	_, err = env.estimates.AddLine(ctx, version.ID, &secB.ID, &LineInput{Title: "RJ45", Quantity: 10, UnitPriceHTCents: 500})
	require.NoError(t, err)
	_, err = env.estimates.AddLine(ctx, version.ID, &secB.ID, &LineInput{Title: "Baie", Quantity: 1, UnitPriceHTCents: 80000})
	require.NoError(t, err)

	require.NoError(t, env.estimates.DeleteItem(ctx, secB.ID))

	view, err := env.estimates.GetVersion(ctx, version.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	// Remaining root siblings are contiguous again
	assert.Equal(t, secA.ID, view.Items[0].ID)
	assert.Equal(t, 1, view.Items[0].Position)
	assert.Equal(t, secC.ID, view.Items[1].ID)
	assert.Equal(t, 2, view.Items[1].Position)
}

func TestReorderItemsValidatesSiblingSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	secA, err := env.estimates.AddSection(ctx, version.ID, nil, "A")
	require.NoError(t, err)
	secB, err := env.estimates.AddSection(ctx, version.ID, nil, "B")
	require.NoError(t, err)
	secC, err := env.estimates.AddSection(ctx, version.ID, nil, "C")
	require.NoError(t, err)

	// Partial set is rejected
	err = env.estimates.ReorderItems(ctx, version.ID, nil, []uuid.UUID{secC.ID, secA.ID})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	// Full permutation is applied
	require.NoError(t, env.estimates.ReorderItems(ctx, version.ID, nil, []uuid.UUID{secC.ID, secA.ID, secB.ID}))

	view, err := env.estimates.GetVersion(ctx, version.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 3)
	assert.Equal(t, secC.ID, view.Items[0].ID)
	assert.Equal(t, secA.ID, view.Items[1].ID)
	assert.Equal(t, secB.ID, view.Items[2].ID)
}

func TestAddLineRejectsLineParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	line, err := env.estimates.AddLine(ctx, version.ID, nil, &LineInput{Title: "Goulotte", Quantity: 1, UnitPriceHTCents: 1500})
	require.NoError(t, err)

	_, err = env.estimates.AddLine(ctx, version.ID, &line.ID, &LineInput{Title: "Vis", Quantity: 50, UnitPriceHTCents: 10})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestVersionReadOnlyAfterSent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	_, err := env.estimates.UpdateVersionStatus(ctx, version.ID, enum.EstimateStatusSent)
	require.NoError(t, err)

	_, err = env.estimates.UpdateVersion(ctx, version.ID, &UpdateVersionInput{
		MarginMultiplier: float64Ptr(2),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsReadOnly(err))

	_, err = env.estimates.AddSection(ctx, version.ID, nil, "Trop tard")
	require.Error(t, err)
	assert.True(t, apperror.IsReadOnly(err))

	err = env.estimates.DeleteVersion(ctx, version.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsReadOnly(err))
}

func TestUpdateVersionStatusRejectsSkippedTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	_, err := env.estimates.UpdateVersionStatus(ctx, version.ID, enum.EstimateStatusAccepted)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	// Archiving is allowed from any non-archived status
	_, err = env.estimates.UpdateVersionStatus(ctx, version.ID, enum.EstimateStatusArchived)
	require.NoError(t, err)
}

func TestDeleteVersionRemovesItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	version := createDraftVersion(t, env)

	_, err := env.estimates.AddSection(ctx, version.ID, nil, "Section")
	require.NoError(t, err)

	require.NoError(t, env.estimates.DeleteVersion(ctx, version.ID))

	var count int64
	require.NoError(t, env.db.Model(&entity.EstimateItem{}).Where("version_id = ?", version.ID).Count(&count).Error)
	assert.Zero(t, count)
}
