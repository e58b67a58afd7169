package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/repository"
	"github.com/maheshrc27/blog-cms/internal/storage"
	"github.com/maheshrc27/blog-cms/internal/transfer"
	"github.com/maheshrc27/blog-cms/pkg/pagination"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var allowedImageTypes = map[types.Type]bool{
	matchers.TypeJpeg: true,
	matchers.TypePng:  true,
	matchers.TypeGif:  true,
	matchers.TypeWebp: true,
}

type MediaService interface {
	Upload(ctx context.Context, userID int64, fileName string, r io.Reader) (*models.MediaAsset, error)
	List(ctx context.Context, page int) (*transfer.MediaList, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type mediaService struct {
	cfg   config.Config
	ma    repository.MediaAssetRepository
	store storage.ObjectStore
	now   func() time.Time
}

func NewMediaService(cfg config.Config, ma repository.MediaAssetRepository, store storage.ObjectStore) MediaService {
	return &mediaService{cfg: cfg, ma: ma, store: store, now: time.Now}
}

// Upload stores an image after checking its size and magic bytes. The client's
// file name is kept for display only; the object key is generated.
func (s *mediaService) Upload(ctx context.Context, userID int64, fileName string, r io.Reader) (*models.MediaAsset, error) {
	limit := s.cfg.MaxUploadSize
	if limit <= 0 {
		limit = 10 << 20
	}

	fileBytes, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}
	if int64(len(fileBytes)) > limit {
		return nil, ErrFileTooLarge
	}
	if len(fileBytes) == 0 {
		return nil, invalid("file is empty")
	}

	kind, err := filetype.Match(fileBytes)
	if err != nil || kind == types.Unknown || !allowedImageTypes[kind] {
		return nil, ErrUnsupportedType
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	now := s.now().UTC()
	key := fmt.Sprintf("images/%04d/%02d/%s.%s", now.Year(), int(now.Month()), id, kind.Extension)

	fileURL, err := s.store.Put(ctx, key, fileBytes, kind.MIME.Value)
	if err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	asset := &models.MediaAsset{
		UserID:    userID,
		FileName:  path.Base(fileName),
		ObjectKey: key,
		FileType:  kind.MIME.Value,
		FileSize:  int64(len(fileBytes)),
		FileURL:   fileURL,
		CreatedAt: now,
	}
	assetID, err := s.ma.Create(ctx, asset)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			slog.Warn("orphaned upload", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("error saving media asset: %w", err)
	}
	asset.ID = assetID

	slog.Info("image uploaded", "asset_id", assetID, "key", key, "size", asset.FileSize)
	return asset, nil
}

func (s *mediaService) List(ctx context.Context, page int) (*transfer.MediaList, error) {
	size := s.cfg.PageSize
	if size <= 0 {
		size = 12
	}
	if page < 1 {
		page = 1
	}

	total, err := s.ma.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count media: %w", err)
	}
	assets, err := s.ma.List(ctx, size, pagination.Offset(page, size))
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	if assets == nil {
		assets = []*models.MediaAsset{}
	}
	return &transfer.MediaList{Assets: assets, Pagination: pagination.NewPage(page, size, total)}, nil
}

// Remove deletes the stored object, then the row.
func (s *mediaService) Remove(ctx context.Context, id uuid.UUID) error {
	asset, err := s.ma.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get media: %w", err)
	}
	if asset == nil {
		return ErrNotFound
	}

	if err := s.store.Delete(ctx, asset.ObjectKey); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	if err := s.ma.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove media: %w", err)
	}
	return nil
}
