package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tleroux/chiffrage-api/internal/config"
	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	domainRepo "github.com/tleroux/chiffrage-api/internal/domain/repository"
	infra "github.com/tleroux/chiffrage-api/internal/infrastructure/repository"
	"github.com/tleroux/chiffrage-api/pkg/reference"
)

// newTestDB opens a fresh in-memory SQLite database named after the test
// so parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Supplier{},
		&entity.Site{},
		&entity.Project{},
		&entity.Product{},
		&entity.LaborRole{},
		&entity.EstimateCategory{},
		&entity.PurchaseOrder{},
		&entity.OrderLine{},
		&entity.DevisFile{},
		&entity.EstimateVersion{},
		&entity.EstimateItem{},
	))
	return db
}

// testEnv wires repositories, services and a handful of fixture rows on
// top of an in-memory database.
type testEnv struct {
	db *gorm.DB

	orderRepo    domainRepo.OrderRepository
	devisRepo    domainRepo.DevisRepository
	versionRepo  domainRepo.EstimateVersionRepository
	itemRepo     domainRepo.EstimateItemRepository
	supplierRepo domainRepo.SupplierRepository
	siteRepo     domainRepo.SiteRepository
	projectRepo  domainRepo.ProjectRepository
	userRepo     domainRepo.UserRepository
	roleRepo     domainRepo.LaborRoleRepository
	categoryRepo domainRepo.EstimateCategoryRepository

	orders    *OrderService
	estimates *EstimateService
	devis     *DevisService
	flusher   *TotalsFlusher

	supplier *entity.Supplier
	site     *entity.Site
	project  *entity.Project
	user     *entity.User
	role     *entity.LaborRole
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	logger := zap.NewNop()

	env := &testEnv{
		db:           db,
		orderRepo:    infra.NewOrderRepository(db),
		devisRepo:    infra.NewDevisRepository(db),
		versionRepo:  infra.NewEstimateVersionRepository(db),
		itemRepo:     infra.NewEstimateItemRepository(db),
		supplierRepo: infra.NewSupplierRepository(db),
		siteRepo:     infra.NewSiteRepository(db),
		projectRepo:  infra.NewProjectRepository(db),
		userRepo:     infra.NewUserRepository(db),
		roleRepo:     infra.NewLaborRoleRepository(db),
		categoryRepo: infra.NewEstimateCategoryRepository(db),
	}

	env.flusher = NewTotalsFlusher(env.versionRepo, 20*time.Millisecond, logger)
	t.Cleanup(env.flusher.Stop)

	env.orders = NewOrderService(env.orderRepo, env.supplierRepo, env.siteRepo, env.projectRepo, env.userRepo, reference.New(), logger)
	env.estimates = NewEstimateService(env.versionRepo, env.itemRepo, env.projectRepo, env.roleRepo, env.categoryRepo, env.flusher, logger)
	env.devis = NewDevisService(env.devisRepo, env.orderRepo, config.StorageConfig{
		Path:          t.TempDir(),
		UploadMaxSize: 1 << 20,
	}, logger)

	env.supplier = &entity.Supplier{Name: "Durand Matériaux"}
	require.NoError(t, db.Create(env.supplier).Error)

	env.site = &entity.Site{Name: "Chantier Lyon"}
	require.NoError(t, db.Create(env.site).Error)

	env.project = &entity.Project{Name: "Résidence Alpha", Code: "ALPHA1"}
	require.NoError(t, db.Create(env.project).Error)

	env.user = &entity.User{
		FirstName: "Jean",
		LastName:  "Dupont",
		Email:     "jean.dupont@example.com",
		Password:  "irrelevant",
		IsActive:  true,
	}
	require.NoError(t, db.Create(env.user).Error)

	env.role = &entity.LaborRole{Name: "Ouvrier", HourlyRateCents: 4500, IsActive: true}
	require.NoError(t, db.Create(env.role).Error)

	return env
}
