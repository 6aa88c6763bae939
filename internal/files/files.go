// Package files validates uploads, writes their bytes to a BlobStore and
// records AppFile metadata.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	MaxImageBytes int64 = 25 << 20
	MaxPDFBytes   int64 = 25 << 20

	mimePDF = "application/pdf"
)

// Upload is a file received from a client.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (u *Upload) empty() bool {
	return u == nil || u.Body == nil || u.Size <= 0
}

func (u *Upload) isPDF() bool {
	return strings.EqualFold(u.ContentType, mimePDF) || strings.HasSuffix(strings.ToLower(u.Name), ".pdf")
}

func (u *Upload) isImage() bool {
	return strings.HasPrefix(strings.ToLower(u.ContentType), "image/")
}

type Service struct {
	store  store.Store
	blobs  BlobStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewService(st store.Store, blobs BlobStore, logger *logrus.Logger) *Service {
	return &Service{
		store:  st,
		blobs:  blobs,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) StoreImage(ctx context.Context, ownerID string, up *Upload) (*types.AppFile, error) {
	if up.empty() {
		return nil, apperr.Validation("IMAGE_FILE_REQUIRED")
	}
	if !up.isImage() {
		return nil, apperr.Validation("ONLY_IMAGE_FILES_ALLOWED")
	}
	if up.Size > MaxImageBytes {
		return nil, apperr.Validation("IMAGE_TOO_LARGE_MAX_25MB")
	}
	return s.put(ctx, ownerID, up, up.ContentType, MaxImageBytes, "IMAGE_TOO_LARGE_MAX_25MB")
}

func (s *Service) StorePDF(ctx context.Context, ownerID string, up *Upload) (*types.AppFile, error) {
	if up.empty() {
		return nil, apperr.Validation("PDF_FILE_REQUIRED")
	}
	if !up.isPDF() {
		return nil, apperr.Validation("ONLY_PDF_FILES_ALLOWED")
	}
	if up.Size > MaxPDFBytes {
		return nil, apperr.Validation("PDF_TOO_LARGE_MAX_25MB")
	}
	return s.put(ctx, ownerID, up, mimePDF, MaxPDFBytes, "PDF_TOO_LARGE_MAX_25MB")
}

func (s *Service) put(ctx context.Context, ownerID string, up *Upload, mime string, limit int64, tooLarge string) (*types.AppFile, error) {
	id := utils.NanoID()
	key := path.Join("users", ownerID, id)

	blob, err := s.blobs.Put(ctx, key, io.LimitReader(up.Body, limit+1))
	if err != nil {
		s.logger.WithError(err).WithField("storage_key", key).Error("failed to write blob")
		return nil, apperr.Storage("FAILED_TO_STORE_FILE", err)
	}
	if blob.Size > limit {
		s.deleteBlob(ctx, key)
		return nil, apperr.Validation(tooLarge)
	}

	file := &types.AppFile{
		ID:           id,
		OwnerUserID:  utils.NonBlankPtr(ownerID),
		OriginalName: safeName(up.Name),
		MimeType:     mime,
		SizeBytes:    blob.Size,
		StorageKey:   key,
		Sha256:       blob.Sha256,
		CreatedAt:    s.now(),
	}
	if err := s.store.Files().Create(ctx, file); err != nil {
		s.deleteBlob(ctx, key)
		return nil, apperr.Storage("FAILED_TO_STORE_FILE", fmt.Errorf("failed to save file metadata: %w", err))
	}

	return file, nil
}

// Open returns the metadata and content of a stored file. The caller closes
// the reader.
func (s *Service) Open(ctx context.Context, fileID string) (*types.AppFile, io.ReadCloser, error) {
	file, err := s.store.Files().File(ctx, fileID)
	if err != nil {
		if errors.Is(err, types.ErrFileNotFound) {
			return nil, nil, apperr.NotFound("FILE_NOT_FOUND")
		}
		return nil, nil, apperr.Storage("FAILED_TO_READ_FILE", err)
	}

	body, err := s.blobs.Open(ctx, file.StorageKey)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, nil, apperr.NotFound("FILE_NOT_FOUND")
		}
		return nil, nil, apperr.Storage("FAILED_TO_READ_FILE", err)
	}

	return file, body, nil
}

// Linked opens the file held by an entity's tag slot.
func (s *Service) Linked(ctx context.Context, entityType types.EntityType, entityID string, tag types.FileTag) (*types.AppFile, io.ReadCloser, error) {
	link, err := s.store.FileLinks().Link(ctx, entityType, entityID, tag)
	if err != nil {
		if errors.Is(err, types.ErrFileLinkNotFound) {
			return nil, nil, apperr.NotFound("FILE_LINK_NOT_FOUND")
		}
		return nil, nil, apperr.Storage("FAILED_TO_READ_FILE", err)
	}
	return s.Open(ctx, link.FileID)
}

// Discard removes files whose owning operation failed. Failures are logged
// and dropped.
func (s *Service) Discard(ctx context.Context, files ...*types.AppFile) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := s.store.Files().Delete(ctx, f.ID); err != nil {
			s.logger.WithError(err).WithField("file_id", f.ID).Warn("failed to delete discarded file metadata")
		}
		s.deleteBlob(ctx, f.StorageKey)
	}
}

func (s *Service) deleteBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("storage_key", key).Warn("failed to delete blob")
	}
}

func safeName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\x00", "_"))
	if name == "" {
		return "upload"
	}
	return name
}

// RequireImage accepts PNG and JPEG uploads only.
func RequireImage(up *Upload) error {
	if up.empty() {
		return apperr.Validation("IMAGE_REQUIRED")
	}
	if !up.isImage() {
		return apperr.Validation("ONLY_IMAGE_ALLOWED")
	}
	if !strings.EqualFold(up.ContentType, "image/png") && !strings.EqualFold(up.ContentType, "image/jpeg") {
		return apperr.Validation("ONLY_PNG_OR_JPG_ALLOWED")
	}
	return nil
}

func RequirePDF(up *Upload) error {
	if up.empty() {
		return apperr.Validation("PDF_REQUIRED")
	}
	if !up.isPDF() {
		return apperr.Validation("ONLY_PDF_ALLOWED")
	}
	return nil
}
