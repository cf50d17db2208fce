package service

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
	"github.com/tleroux/chiffrage-api/pkg/reference"
)

func createDraftOrder(t *testing.T, env *testEnv, lines []OrderLineInput) *entity.PurchaseOrder {
	t.Helper()
	order, err := env.orders.CreateOrder(context.Background(), &CreateOrderInput{
		SupplierID: env.supplier.ID,
		SiteID:     env.site.ID,
		ProjectID:  &env.project.ID,
		UserID:     env.user.ID,
		Date:       time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		Lines:      lines,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderComputesTotals(t *testing.T) {
	env := newTestEnv(t)

	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble U1000 R2V", Quantity: 2.5, UnitPriceHTCents: 1999, TaxRateBp: 2000},
		{Label: "Disjoncteur", Quantity: 1, UnitPriceHTCents: 10000, TaxRateBp: 550},
	})

	require.Len(t, order.Lines, 2)
	assert.Equal(t, 1, order.Lines[0].Position)
	assert.Equal(t, 2, order.Lines[1].Position)

	// 2.5 x 19.99 = 49.98 HT, 20% -> 10.00 tax
	assert.Equal(t, int64(4998), order.Lines[0].LineTotalHTCents)
	assert.Equal(t, int64(1000), order.Lines[0].LineTaxCents)
	// 100.00 HT at 5.5% -> 5.50 tax
	assert.Equal(t, int64(550), order.Lines[1].LineTaxCents)

	assert.Equal(t, int64(14998), order.TotalHTCents)
	assert.Equal(t, int64(1550), order.TotalTaxCents)
	assert.Equal(t, int64(16548), order.TotalTTCCents)

	assert.Equal(t, enum.OrderStatusDraft, order.Status)
	assert.True(t, strings.HasPrefix(order.Reference, "BC-"))
}

func TestCreateOrderWithoutProjectUsesFallbackSegment(t *testing.T) {
	env := newTestEnv(t)

	order, err := env.orders.CreateOrder(context.Background(), &CreateOrderInput{
		SupplierID: env.supplier.ID,
		SiteID:     env.site.ID,
		UserID:     env.user.ID,
		Date:       time.Now(),
		Lines:      []OrderLineInput{{Label: "Gaine ICTA", Quantity: 1, UnitPriceHTCents: 2000, TaxRateBp: 2000}},
	})
	require.NoError(t, err)
	assert.Contains(t, order.Reference, "-GEN-")
}

func TestCreateOrderRejectsEmptyLines(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.CreateOrder(context.Background(), &CreateOrderInput{
		SupplierID: env.supplier.ID,
		SiteID:     env.site.ID,
		UserID:     env.user.ID,
		Date:       time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestCreateOrderRetriesOnReferenceCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fixed := time.Date(2026, 8, 29, 15, 4, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	// Occupy the exact reference the service's generator will produce on
	// its first attempt.
	colliding := reference.NewWithSource(now, rand.New(rand.NewSource(7))).
		NewReference(env.supplier.Name, env.project.Code, "JD")
	require.NoError(t, env.db.Create(&entity.PurchaseOrder{
		Reference:  colliding,
		SupplierID: env.supplier.ID,
		SiteID:     env.site.ID,
		Date:       fixed,
	}).Error)

	orders := NewOrderService(env.orderRepo, env.supplierRepo, env.siteRepo, env.projectRepo, env.userRepo,
		reference.NewWithSource(now, rand.New(rand.NewSource(7))), zap.NewNop())

	order, err := orders.CreateOrder(ctx, &CreateOrderInput{
		SupplierID: env.supplier.ID,
		SiteID:     env.site.ID,
		ProjectID:  &env.project.ID,
		UserID:     env.user.ID,
		Date:       fixed,
		Lines:      []OrderLineInput{{Label: "Tableau", Quantity: 1, UnitPriceHTCents: 50000, TaxRateBp: 2000}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, colliding, order.Reference)

	// Same deterministic stamp, different random suffix
	stamp := colliding[:strings.LastIndex(colliding, "-")]
	assert.True(t, strings.HasPrefix(order.Reference, stamp))
}

func TestUpdateOrderReplacesLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 2, UnitPriceHTCents: 1000, TaxRateBp: 2000},
		{Label: "Goulotte", Quantity: 5, UnitPriceHTCents: 300, TaxRateBp: 2000},
	})

	updated, err := env.orders.UpdateOrder(ctx, order.ID, &UpdateOrderInput{
		Lines: []OrderLineInput{
			{Label: "Câble blindé", Quantity: 3, UnitPriceHTCents: 1500, TaxRateBp: 2000},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 1)
	assert.Equal(t, "Câble blindé", updated.Lines[0].Label)
	assert.Equal(t, 1, updated.Lines[0].Position)
	assert.Equal(t, int64(4500), updated.TotalHTCents)
	assert.Equal(t, int64(900), updated.TotalTaxCents)
	assert.Equal(t, int64(5400), updated.TotalTTCCents)
}

func TestOrderStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	// Draft cannot jump straight to received
	_, err := env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusReceived)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	ordered, err := env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusOrdered)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusOrdered, ordered.Status)

	// Ordered is no longer editable or deletable
	_, err = env.orders.UpdateOrder(ctx, order.ID, &UpdateOrderInput{
		Lines: []OrderLineInput{{Label: "Autre", Quantity: 1, UnitPriceHTCents: 100, TaxRateBp: 2000}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsReadOnly(err))

	err = env.orders.DeleteOrder(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsReadOnly(err))

	// No way back to draft
	_, err = env.orders.UpdateOrderStatus(ctx, order.ID, enum.OrderStatusDraft)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestDeleteDraftOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := createDraftOrder(t, env, []OrderLineInput{
		{Label: "Câble", Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 2000},
	})

	require.NoError(t, env.orders.DeleteOrder(ctx, order.ID))

	got, err := env.orders.GetOrder(ctx, order.ID)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}
