package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/auth"
	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/dmitrijs2005/rms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rms/internal/server/storage"
	"github.com/google/uuid"
)

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"doc":  "application/msword",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xls":  "application/vnd.ms-excel",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"ppt":  "application/vnd.ms-powerpoint",
	"csv":  "text/csv",
	"txt":  "text/plain",
}

// ContentType maps a file extension (without the dot) to its MIME type.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// UploadTarget is where a client should PUT a file.
type UploadTarget struct {
	Key string
	URL string
}

// UploadService hands out presigned upload URLs scoped to the caller's vendor.
type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     storage.Gateway
	urlTTL      time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewUploadService(db *sql.DB, m repomanager.RepositoryManager, g storage.Gateway, urlTTL time.Duration, l logging.Logger) *UploadService {
	return &UploadService{
		db:          db,
		repomanager: m,
		gateway:     g,
		urlTTL:      urlTTL,
		logger:      l.With("module", "upload_service"),
		now:         time.Now,
	}
}

// UploadURL reserves a key under the caller's vendor and presigns a PUT for it.
func (s *UploadService) UploadURL(ctx context.Context, p auth.Principal, filename string) (*UploadTarget, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", common.ErrValidation)
	}

	vendor, err := s.vendorOf(ctx, p)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	ext = strings.ToLower(ext)

	key := fmt.Sprintf("%s/%s-%s.%s", vendor.Name, uuid.NewString(), s.now().UTC().Format("2006-01-02_15-04-05"), ext)

	url, err := s.gateway.PresignPut(ctx, key, ContentType(ext), s.urlTTL)
	if err != nil {
		return nil, err
	}

	return &UploadTarget{Key: key, URL: url}, nil
}

// Delete removes a stored object. Vendor users may only delete keys of the
// form "<vendor>/<object>" under their own vendor; platform users may delete
// any key.
func (s *UploadService) Delete(ctx context.Context, p auth.Principal, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key is required", common.ErrValidation)
	}
	if !p.Authenticated() {
		return common.ErrorUnauthorized
	}

	if !p.Role.Platform() {
		vendor, err := s.vendorOf(ctx, p)
		if err != nil {
			return err
		}
		if !ownedBy(key, vendor.Name) {
			return common.ErrForbidden
		}
	}

	if err := s.gateway.Delete(ctx, key); err != nil {
		return err
	}

	s.logger.Info(ctx, "object deleted", "key", key, "user_id", p.UserID)
	return nil
}

func ownedBy(key, vendorName string) bool {
	prefix, object, ok := strings.Cut(key, "/")
	if !ok || prefix != vendorName {
		return false
	}
	return object != "" && object != "." && object != ".." && !strings.ContainsAny(object, `/\`)
}

func (s *UploadService) vendorOf(ctx context.Context, p auth.Principal) (*models.Vendor, error) {
	if !p.Authenticated() {
		return nil, common.ErrorUnauthorized
	}
	if p.VendorID == "" {
		return nil, common.ErrForbidden
	}
	return s.repomanager.Vendors(s.db).GetByID(ctx, p.VendorID)
}
