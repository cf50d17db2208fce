package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tleroux/chiffrage-api/internal/config"
	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
)

// DevisService handles supplier quote attachments on purchase orders.
// Files live on disk under the configured storage path; metadata and
// ordering live in the database.
type DevisService struct {
	devisRepo repository.DevisRepository
	orderRepo repository.OrderRepository
	storage   config.StorageConfig
	logger    *zap.Logger
}

// NewDevisService creates a new devis service
func NewDevisService(devisRepo repository.DevisRepository, orderRepo repository.OrderRepository, storage config.StorageConfig, logger *zap.Logger) *DevisService {
	return &DevisService{
		devisRepo: devisRepo,
		orderRepo: orderRepo,
		storage:   storage,
		logger:    logger,
	}
}

// editableOrder loads the order and rejects attachments mutations on
// non-draft orders.
func (s *DevisService) editableOrder(ctx context.Context, orderID uuid.UUID) (*entity.PurchaseOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if !order.Status.IsEditable() {
		return nil, apperror.NewReadOnlyError("Order " + order.Reference)
	}
	return order, nil
}

// UploadDevisInput represents one uploaded quote file
type UploadDevisInput struct {
	OrderID     uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadDevis stores the file on disk and appends it at the last
// position of the order's attachment list.
func (s *DevisService) UploadDevis(ctx context.Context, input *UploadDevisInput) (*entity.DevisFile, error) {
	if _, err := s.editableOrder(ctx, input.OrderID); err != nil {
		return nil, err
	}
	if input.Size > s.storage.UploadMaxSize {
		return nil, apperror.NewBadRequestError("File exceeds the upload size limit")
	}
	fileName := filepath.Base(strings.TrimSpace(input.FileName))
	if fileName == "" || fileName == "." {
		return nil, apperror.NewBadRequestError("File name is required")
	}

	dir := filepath.Join(s.storage.Path, "devis", input.OrderID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	storedPath := filepath.Join(dir, uuid.NewString()+filepath.Ext(fileName))
	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, err
	}
	written, err := io.Copy(dst, input.Content)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	maxPos, err := s.devisRepo.MaxPosition(ctx, input.OrderID)
	if err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	devis := &entity.DevisFile{
		OrderID:     input.OrderID,
		Position:    maxPos + 1,
		FileName:    fileName,
		StoredPath:  storedPath,
		ContentType: input.ContentType,
		SizeBytes:   written,
	}
	if err := s.devisRepo.Create(ctx, devis); err != nil {
		os.Remove(storedPath)
		return nil, err
	}
	return devis, nil
}

// ListDevis lists an order's attachments in position order
func (s *DevisService) ListDevis(ctx context.Context, orderID uuid.UUID) ([]entity.DevisFile, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return s.devisRepo.ListByOrder(ctx, orderID)
}

// GetDevis retrieves one attachment's metadata
func (s *DevisService) GetDevis(ctx context.Context, id uuid.UUID) (*entity.DevisFile, error) {
	devis, err := s.devisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if devis == nil {
		return nil, apperror.NewNotFoundError("Devis file")
	}
	return devis, nil
}

// RenameDevis changes the display name of an attachment. The stored path
// is untouched.
func (s *DevisService) RenameDevis(ctx context.Context, id uuid.UUID, newName string) (*entity.DevisFile, error) {
	devis, err := s.GetDevis(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableOrder(ctx, devis.OrderID); err != nil {
		return nil, err
	}

	newName = filepath.Base(strings.TrimSpace(newName))
	if newName == "" || newName == "." {
		return nil, apperror.NewBadRequestError("File name is required")
	}
	devis.FileName = newName
	if err := s.devisRepo.Update(ctx, devis); err != nil {
		return nil, err
	}
	return devis, nil
}

// DeleteDevis removes the attachment row, its file on disk, and closes
// the position gap left behind.
func (s *DevisService) DeleteDevis(ctx context.Context, id uuid.UUID) error {
	devis, err := s.GetDevis(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.editableOrder(ctx, devis.OrderID); err != nil {
		return err
	}

	if err := s.devisRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(devis.StoredPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove devis file from disk",
			zap.String("path", devis.StoredPath), zap.Error(err))
	}

	remaining, err := s.devisRepo.ListByOrder(ctx, devis.OrderID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(remaining))
	for i, d := range remaining {
		ids[i] = d.ID
	}
	return s.devisRepo.Reorder(ctx, devis.OrderID, ids)
}

// ReorderDevis rewrites attachment positions to match orderedIDs. The
// set must cover exactly the order's attachments.
func (s *DevisService) ReorderDevis(ctx context.Context, orderID uuid.UUID, orderedIDs []uuid.UUID) ([]entity.DevisFile, error) {
	if _, err := s.editableOrder(ctx, orderID); err != nil {
		return nil, err
	}

	existing, err := s.devisRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(orderedIDs) != len(existing) {
		return nil, apperror.NewBadRequestError("Reorder must include every attachment of the order")
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, d := range existing {
		known[d.ID] = true
	}
	for _, id := range orderedIDs {
		if !known[id] {
			return nil, apperror.NewBadRequestError("Unknown attachment in reorder")
		}
		delete(known, id)
	}

	if err := s.devisRepo.Reorder(ctx, orderID, orderedIDs); err != nil {
		return nil, err
	}
	return s.devisRepo.ListByOrder(ctx, orderID)
}

// WriteArchive streams a zip of all the order's attachments to w, in
// position order. Duplicate display names are disambiguated with the
// position prefix.
func (s *DevisService) WriteArchive(ctx context.Context, orderID uuid.UUID, w io.Writer) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return apperror.NewNotFoundError("Order")
	}

	files, err := s.devisRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return apperror.NewNotFoundError("Devis files")
	}

	zw := zip.NewWriter(w)
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		src, err := os.Open(f.StoredPath)
		if err != nil {
			zw.Close()
			return err
		}
		entryName := filepath.Base(f.FileName)
		if seen[entryName] {
			entryName = fmt.Sprintf("%02d-%s", f.Position, entryName)
		}
		seen[entryName] = true
		entry, err := zw.Create(entryName)
		if err == nil {
			_, err = io.Copy(entry, src)
		}
		src.Close()
		if err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}
