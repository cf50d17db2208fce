package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/internal/domain/pricing"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
)

// EstimateService owns the estimate editor semantics: the item tree,
// server-side recomputation of derived fields on every write, sibling
// ordering, the pricing context of a version and its debounced totals.
type EstimateService struct {
	versionRepo  repository.EstimateVersionRepository
	itemRepo     repository.EstimateItemRepository
	projectRepo  repository.ProjectRepository
	roleRepo     repository.LaborRoleRepository
	categoryRepo repository.EstimateCategoryRepository
	flusher      *TotalsFlusher
	logger       *zap.Logger
}

// NewEstimateService creates a new estimate service
func NewEstimateService(
	versionRepo repository.EstimateVersionRepository,
	itemRepo repository.EstimateItemRepository,
	projectRepo repository.ProjectRepository,
	roleRepo repository.LaborRoleRepository,
	categoryRepo repository.EstimateCategoryRepository,
	flusher *TotalsFlusher,
	logger *zap.Logger,
) *EstimateService {
	return &EstimateService{
		versionRepo:  versionRepo,
		itemRepo:     itemRepo,
		projectRepo:  projectRepo,
		roleRepo:     roleRepo,
		categoryRepo: categoryRepo,
		flusher:      flusher,
		logger:       logger,
	}
}

// CreateVersionInput represents the create estimate version input
type CreateVersionInput struct {
	ProjectID         uuid.UUID
	Label             string
	MarginMultiplier  float64
	TaxRateBp         int64
	RoundingMode      enum.RoundingMode
	RoundingStepCents int64
}

// CreateVersion creates a new draft estimate version for a project
func (s *EstimateService) CreateVersion(ctx context.Context, input *CreateVersionInput) (*entity.EstimateVersion, error) {
	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NewNotFoundError("Project")
	}

	margin := input.MarginMultiplier
	if margin <= 0 {
		margin = 1
	}
	taxRate := input.TaxRateBp
	if taxRate < 0 || taxRate > 10000 {
		return nil, apperror.NewBadRequestError("Tax rate must be between 0 and 10000 basis points")
	}
	mode := input.RoundingMode
	if mode == "" {
		mode = enum.RoundingModeNone
	}
	if !mode.IsValid() {
		return nil, apperror.NewBadRequestError("Unknown rounding mode")
	}

	version := &entity.EstimateVersion{
		ProjectID:         input.ProjectID,
		Label:             input.Label,
		Status:            enum.EstimateStatusDraft,
		MarginMultiplier:  margin,
		TaxRateBp:         taxRate,
		RoundingMode:      mode,
		RoundingStepCents: input.RoundingStepCents,
	}
	if err := s.versionRepo.Create(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// VersionView bundles a version, its full item tree in (parent,
// position) order and the freshly computed totals block.
type VersionView struct {
	Version       *entity.EstimateVersion
	Items         []entity.EstimateItem
	Totals        pricing.EstimateTotals
	DiscountCents int64
}

// GetVersion returns the version with its items and totals. Pending
// debounced totals are flushed first so reads are consistent.
func (s *EstimateService) GetVersion(ctx context.Context, id uuid.UUID) (*VersionView, error) {
	if err := s.flusher.Flush(ctx, id); err != nil {
		return nil, err
	}

	version, err := s.versionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperror.NewNotFoundError("Estimate version")
	}

	items, err := s.itemRepo.ListByVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	totals, discountCents := s.computeTotals(version, items)
	return &VersionView{Version: version, Items: items, Totals: totals, DiscountCents: discountCents}, nil
}

// ListVersions lists estimate versions with pagination and filters
func (s *EstimateService) ListVersions(ctx context.Context, params *pagination.PaginationParams, search string, status *enum.EstimateStatus, projectID *uuid.UUID) (*pagination.PaginatedResult[entity.EstimateVersion], error) {
	versions, total, err := s.versionRepo.List(ctx, &repository.EstimateFilterParams{
		Pagination: params,
		Search:     search,
		Status:     status,
		ProjectID:  projectID,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(versions, pag), nil
}

// UpdateVersionInput represents the update of a version's pricing
// context. Nil fields keep their current value. The discount may be
// given either as basis points or as flat cents of the current sale
// subtotal; cents win when both are present.
type UpdateVersionInput struct {
	Label             *string
	MarginMultiplier  *float64
	DiscountBp        *int64
	DiscountCents     *int64
	TaxRateBp         *int64
	RoundingMode      *enum.RoundingMode
	RoundingStepCents *int64
}

// UpdateVersion updates a draft version's pricing context, recomputes
// every line under the new context and schedules a totals flush.
func (s *EstimateService) UpdateVersion(ctx context.Context, id uuid.UUID, input *UpdateVersionInput) (*VersionView, error) {
	version, err := s.editableVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Label != nil {
		version.Label = *input.Label
	}
	if input.MarginMultiplier != nil {
		if *input.MarginMultiplier <= 0 {
			return nil, apperror.NewBadRequestError("Margin multiplier must be positive")
		}
		version.MarginMultiplier = *input.MarginMultiplier
	}
	if input.TaxRateBp != nil {
		if *input.TaxRateBp < 0 || *input.TaxRateBp > 10000 {
			return nil, apperror.NewBadRequestError("Tax rate must be between 0 and 10000 basis points")
		}
		version.TaxRateBp = *input.TaxRateBp
	}
	if input.RoundingMode != nil {
		if !input.RoundingMode.IsValid() {
			return nil, apperror.NewBadRequestError("Unknown rounding mode")
		}
		version.RoundingMode = *input.RoundingMode
	}
	if input.RoundingStepCents != nil {
		if *input.RoundingStepCents < 0 {
			return nil, apperror.NewBadRequestError("Rounding step cannot be negative")
		}
		version.RoundingStepCents = *input.RoundingStepCents
	}
	if input.DiscountBp != nil {
		if *input.DiscountBp < 0 {
			return nil, apperror.NewBadRequestError("Discount cannot be negative")
		}
		version.DiscountBp = *input.DiscountBp
	}

	items, err := s.itemRepo.ListByVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	// A flat cents discount is converted to basis points of the current
	// sale subtotal before persisting; the stored rate then survives
	// later price changes. The round trip may drift by a few cents.
	if input.DiscountCents != nil {
		if *input.DiscountCents < 0 {
			return nil, apperror.NewBadRequestError("Discount cannot be negative")
		}
		subtotal := s.saleSubtotal(version, items)
		version.DiscountBp = pricing.DiscountBpFromCents(*input.DiscountCents, subtotal)
	}

	if err := s.versionRepo.Update(ctx, version); err != nil {
		return nil, err
	}

	// The pricing context changed, so every line's derived fields are
	// stale. Recompute and persist them.
	for i := range items {
		if items[i].IsSection() {
			continue
		}
		if err := s.recomputeItem(ctx, &items[i], version); err != nil {
			return nil, err
		}
		if err := s.itemRepo.Update(ctx, &items[i]); err != nil {
			return nil, err
		}
	}

	totals, discountCents := s.computeTotals(version, items)
	s.scheduleTotals(version.ID, totals)
	return &VersionView{Version: version, Items: items, Totals: totals, DiscountCents: discountCents}, nil
}

// UpdateVersionStatus applies a forward status transition
func (s *EstimateService) UpdateVersionStatus(ctx context.Context, id uuid.UUID, target enum.EstimateStatus) (*entity.EstimateVersion, error) {
	if !target.IsValid() {
		return nil, apperror.NewBadRequestError("Unknown estimate status")
	}

	version, err := s.versionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperror.NewNotFoundError("Estimate version")
	}
	if !version.Status.CanTransitionTo(target) {
		return nil, apperror.NewBadRequestError("Cannot change status from " + version.Status.String() + " to " + target.String())
	}

	// Leaving draft freezes the version; make sure the persisted totals
	// are current first.
	if err := s.flusher.Flush(ctx, id); err != nil {
		return nil, err
	}
	if err := s.versionRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	version.Status = target
	return version, nil
}

// DeleteVersion deletes a draft version and all its items
func (s *EstimateService) DeleteVersion(ctx context.Context, id uuid.UUID) error {
	version, err := s.versionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if version == nil {
		return apperror.NewNotFoundError("Estimate version")
	}
	if !version.Status.IsEditable() {
		return apperror.NewReadOnlyError("Estimate version " + version.Label)
	}
	return s.versionRepo.Delete(ctx, id)
}

// AddSection appends a section as last sibling under parentID (nil for
// root level).
func (s *EstimateService) AddSection(ctx context.Context, versionID uuid.UUID, parentID *uuid.UUID, title string) (*entity.EstimateItem, error) {
	version, err := s.editableVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if err := s.validateParent(ctx, version.ID, parentID); err != nil {
		return nil, err
	}

	maxPos, err := s.itemRepo.MaxPosition(ctx, versionID, parentID)
	if err != nil {
		return nil, err
	}

	item := &entity.EstimateItem{
		VersionID: versionID,
		ParentID:  parentID,
		Position:  maxPos + 1,
		ItemType:  enum.ItemTypeSection,
		Title:     title,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// LineInput represents the client-writable fields of an estimate line.
// Derived fields are never accepted from the client.
type LineInput struct {
	Title            string
	Quantity         float64
	UnitPriceHTCents int64
	KFo              *float64
	HMo              float64
	KMo              *float64
	LaborRoleID      *uuid.UUID
	CategoryID       *uuid.UUID
	CategoryName     *string
	TaxRateBp        *int64
}

// AddLine appends a priced line as last sibling under parentID and
// computes its derived fields.
func (s *EstimateService) AddLine(ctx context.Context, versionID uuid.UUID, parentID *uuid.UUID, input *LineInput) (*entity.EstimateItem, error) {
	version, err := s.editableVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if err := s.validateParent(ctx, version.ID, parentID); err != nil {
		return nil, err
	}

	maxPos, err := s.itemRepo.MaxPosition(ctx, versionID, parentID)
	if err != nil {
		return nil, err
	}

	item := &entity.EstimateItem{
		VersionID: versionID,
		ParentID:  parentID,
		Position:  maxPos + 1,
		ItemType:  enum.ItemTypeLine,
		KFo:       1,
		KMo:       1,
		TaxRateBp: version.TaxRateBp,
	}
	if err := s.applyLineInput(ctx, item, input); err != nil {
		return nil, err
	}
	if err := s.recomputeItem(ctx, item, version); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.refreshTotals(ctx, version)
	return item, nil
}

// UpdateItem updates an item's fields. Sections accept a title only;
// lines get their derived fields recomputed from the stored inputs and
// the version context.
func (s *EstimateService) UpdateItem(ctx context.Context, itemID uuid.UUID, input *LineInput) (*entity.EstimateItem, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Estimate item")
	}

	version, err := s.editableVersion(ctx, item.VersionID)
	if err != nil {
		return nil, err
	}

	if item.IsSection() {
		if input.Title != "" {
			item.Title = input.Title
		}
		if err := s.itemRepo.Update(ctx, item); err != nil {
			return nil, err
		}
		return item, nil
	}

	if err := s.applyLineInput(ctx, item, input); err != nil {
		return nil, err
	}
	if err := s.recomputeItem(ctx, item, version); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.refreshTotals(ctx, version)
	return item, nil
}

// DeleteItem removes an item and every descendant, then closes the
// position gap among the remaining siblings.
func (s *EstimateService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperror.NewNotFoundError("Estimate item")
	}

	version, err := s.editableVersion(ctx, item.VersionID)
	if err != nil {
		return err
	}

	items, err := s.itemRepo.ListByVersion(ctx, item.VersionID)
	if err != nil {
		return err
	}

	// Collect the subtree by walking parent links breadth-first.
	children := make(map[uuid.UUID][]uuid.UUID, len(items))
	for _, it := range items {
		if it.ParentID != nil {
			children[*it.ParentID] = append(children[*it.ParentID], it.ID)
		}
	}
	doomed := []uuid.UUID{item.ID}
	for i := 0; i < len(doomed); i++ {
		doomed = append(doomed, children[doomed[i]]...)
	}

	if err := s.itemRepo.DeleteByIDs(ctx, doomed); err != nil {
		return err
	}

	// Resequence the deleted item's sibling group.
	var siblings []uuid.UUID
	for _, it := range items {
		if it.ID == item.ID || !sameParent(it.ParentID, item.ParentID) {
			continue
		}
		siblings = append(siblings, it.ID)
	}
	if len(siblings) > 0 {
		if err := s.itemRepo.ReorderSiblings(ctx, item.VersionID, siblings); err != nil {
			return err
		}
	}

	s.refreshTotals(ctx, version)
	return nil
}

// ReorderItems rewrites the positions of one sibling group to match
// orderedIDs. The set must cover exactly the siblings of parentID.
func (s *EstimateService) ReorderItems(ctx context.Context, versionID uuid.UUID, parentID *uuid.UUID, orderedIDs []uuid.UUID) error {
	if _, err := s.editableVersion(ctx, versionID); err != nil {
		return err
	}

	items, err := s.itemRepo.ListByVersion(ctx, versionID)
	if err != nil {
		return err
	}

	siblings := make(map[uuid.UUID]bool)
	for _, it := range items {
		if sameParent(it.ParentID, parentID) {
			siblings[it.ID] = true
		}
	}
	if len(orderedIDs) != len(siblings) {
		return apperror.NewBadRequestError("Reorder must include every sibling of the group")
	}
	for _, id := range orderedIDs {
		if !siblings[id] {
			return apperror.NewBadRequestError("Item is not part of the sibling group")
		}
		delete(siblings, id)
	}

	return s.itemRepo.ReorderSiblings(ctx, versionID, orderedIDs)
}

func (s *EstimateService) editableVersion(ctx context.Context, id uuid.UUID) (*entity.EstimateVersion, error) {
	version, err := s.versionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperror.NewNotFoundError("Estimate version")
	}
	if !version.Status.IsEditable() {
		return nil, apperror.NewReadOnlyError("Estimate version " + version.Label)
	}
	return version, nil
}

func (s *EstimateService) validateParent(ctx context.Context, versionID uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	parent, err := s.itemRepo.GetByID(ctx, *parentID)
	if err != nil {
		return err
	}
	if parent == nil || parent.VersionID != versionID {
		return apperror.NewNotFoundError("Parent item")
	}
	if !parent.IsSection() {
		return apperror.NewBadRequestError("Only sections can hold children")
	}
	return nil
}

// applyLineInput copies client-writable fields onto the item, resolving
// the category by name (match-or-create, case-insensitive) when one is
// given.
func (s *EstimateService) applyLineInput(ctx context.Context, item *entity.EstimateItem, input *LineInput) error {
	if input.Title != "" {
		item.Title = input.Title
	}
	item.Quantity = input.Quantity
	item.UnitPriceHTCents = input.UnitPriceHTCents
	item.HMo = input.HMo
	if input.KFo != nil {
		item.KFo = *input.KFo
	}
	if input.KMo != nil {
		item.KMo = *input.KMo
	}
	if input.TaxRateBp != nil {
		if *input.TaxRateBp < 0 || *input.TaxRateBp > 10000 {
			return apperror.NewBadRequestError("Tax rate must be between 0 and 10000 basis points")
		}
		item.TaxRateBp = *input.TaxRateBp
	}

	if input.LaborRoleID != nil {
		role, err := s.roleRepo.GetByID(ctx, *input.LaborRoleID)
		if err != nil {
			return err
		}
		if role == nil {
			return apperror.NewNotFoundError("Labor role")
		}
	}
	item.LaborRoleID = input.LaborRoleID

	switch {
	case input.CategoryName != nil && strings.TrimSpace(*input.CategoryName) != "":
		name := strings.TrimSpace(*input.CategoryName)
		category, err := s.categoryRepo.GetByNameFold(ctx, name)
		if err != nil {
			return err
		}
		if category == nil {
			category = &entity.EstimateCategory{Name: name}
			if err := s.categoryRepo.Create(ctx, category); err != nil {
				return err
			}
		}
		item.CategoryID = &category.ID
	case input.CategoryID != nil:
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return apperror.NewNotFoundError("Category")
		}
		item.CategoryID = input.CategoryID
	default:
		item.CategoryID = nil
	}
	return nil
}

// recomputeItem rewrites the derived fields of a line from its stored
// inputs, the resolved hourly rate and the version's margin. The line's
// own tax rate drives its display tax; the version rate drives totals.
func (s *EstimateService) recomputeItem(ctx context.Context, item *entity.EstimateItem, version *entity.EstimateVersion) error {
	if item.IsSection() {
		return nil
	}

	var hourlyRate int64
	if item.LaborRoleID != nil {
		role, err := s.roleRepo.GetByID(ctx, *item.LaborRoleID)
		if err != nil {
			return err
		}
		if role != nil {
			hourlyRate = role.HourlyRateCents
		}
	}

	values := pricing.ComputeEstimateLineValues(
		pricing.EstimateLineInput{
			Quantity:         item.Quantity,
			UnitPriceHTCents: item.UnitPriceHTCents,
			KFo:              item.KFo,
			HMo:              item.HMo,
			KMo:              item.KMo,
			HourlyRateCents:  hourlyRate,
		},
		pricing.LineContext{
			MarginMultiplier: version.MarginMultiplier,
			TaxRateBp:        item.TaxRateBp,
		},
	)

	item.PuHTCents = values.PuHTCents
	item.LineTotalHTCents = values.SaleLineCents
	item.LineTaxCents = values.TaxLineCents
	item.LineTotalTTCCents = values.TtcLineCents
	return nil
}

// lineInputs converts the leaf lines of the item set into calculator
// inputs, resolving hourly rates from the preloaded labor roles.
func (s *EstimateService) lineInputs(items []entity.EstimateItem) []pricing.EstimateLineInput {
	inputs := make([]pricing.EstimateLineInput, 0, len(items))
	for _, it := range items {
		if it.IsSection() {
			continue
		}
		var hourlyRate int64
		if it.LaborRole != nil {
			hourlyRate = it.LaborRole.HourlyRateCents
		}
		inputs = append(inputs, pricing.EstimateLineInput{
			Quantity:         it.Quantity,
			UnitPriceHTCents: it.UnitPriceHTCents,
			KFo:              it.KFo,
			HMo:              it.HMo,
			KMo:              it.KMo,
			HourlyRateCents:  hourlyRate,
		})
	}
	return inputs
}

func (s *EstimateService) saleSubtotal(version *entity.EstimateVersion, items []entity.EstimateItem) int64 {
	totals := pricing.ComputeEstimateTotals(pricing.EstimateTotalsInput{
		Lines:            s.lineInputs(items),
		MarginMultiplier: version.MarginMultiplier,
		TaxRateBp:        version.TaxRateBp,
		RoundingMode:     enum.RoundingModeNone,
	})
	return totals.SaleSubtotalCents
}

// computeTotals derives the full totals block of a version under its
// pricing context, including the flat discount reconstructed from the
// stored basis points.
func (s *EstimateService) computeTotals(version *entity.EstimateVersion, items []entity.EstimateItem) (pricing.EstimateTotals, int64) {
	lines := s.lineInputs(items)
	subtotal := s.saleSubtotal(version, items)
	discountCents := pricing.DiscountCentsFromBp(subtotal, version.DiscountBp)

	totals := pricing.ComputeEstimateTotals(pricing.EstimateTotalsInput{
		Lines:             lines,
		MarginMultiplier:  version.MarginMultiplier,
		DiscountCents:     discountCents,
		TaxRateBp:         version.TaxRateBp,
		RoundingMode:      version.RoundingMode,
		RoundingStepCents: version.RoundingStepCents,
	})
	return totals, discountCents
}

// refreshTotals recomputes the version totals and hands them to the
// debounced flusher. Failures to reload items only cost freshness, not
// correctness, so they are logged rather than surfaced.
func (s *EstimateService) refreshTotals(ctx context.Context, version *entity.EstimateVersion) {
	items, err := s.itemRepo.ListByVersion(ctx, version.ID)
	if err != nil {
		s.logger.Error("failed to reload items for totals",
			zap.String("version_id", version.ID.String()), zap.Error(err))
		return
	}
	totals, _ := s.computeTotals(version, items)
	s.scheduleTotals(version.ID, totals)
}

func (s *EstimateService) scheduleTotals(versionID uuid.UUID, totals pricing.EstimateTotals) {
	s.flusher.Schedule(versionID, totals.SaleTotalCents, totals.AdjustedTaxCents, totals.RoundedTtcCents)
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
