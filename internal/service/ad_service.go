package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/maheshrc27/blog-cms/internal/content"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/repository"
	"github.com/maheshrc27/blog-cms/internal/transfer"
)

type AdService interface {
	List(ctx context.Context, activeOnly bool) ([]*models.Ad, error)
	Create(ctx context.Context, req *transfer.AdRequest) (*models.Ad, error)
	Update(ctx context.Context, id uuid.UUID, req *transfer.AdRequest) (*models.Ad, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Settings(ctx context.Context) (*models.AdSettings, error)
	UpdateSettings(ctx context.Context, req *transfer.AdSettingsRequest) (*models.AdSettings, error)
	Placement(ctx context.Context) content.AdPlacement
}

type adService struct {
	ar repository.AdRepository
	sr repository.AdSettingsRepository
}

func NewAdService(ar repository.AdRepository, sr repository.AdSettingsRepository) AdService {
	return &adService{ar: ar, sr: sr}
}

func (s *adService) List(ctx context.Context, activeOnly bool) ([]*models.Ad, error) {
	ads, err := s.ar.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	if ads == nil {
		ads = []*models.Ad{}
	}
	return ads, nil
}

func (s *adService) Create(ctx context.Context, req *transfer.AdRequest) (*models.Ad, error) {
	if err := transfer.Validate(req); err != nil {
		return nil, invalid("%v", err)
	}

	ad := adFromRequest(req)
	id, err := s.ar.Create(ctx, ad)
	if err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}
	return s.get(ctx, id)
}

func (s *adService) Update(ctx context.Context, id uuid.UUID, req *transfer.AdRequest) (*models.Ad, error) {
	if err := transfer.Validate(req); err != nil {
		return nil, invalid("%v", err)
	}
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}

	ad := adFromRequest(req)
	ad.ID = id
	if err := s.ar.Update(ctx, ad); err != nil {
		return nil, fmt.Errorf("update ad: %w", err)
	}
	return s.get(ctx, id)
}

func (s *adService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.ar.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove ad: %w", err)
	}
	return nil
}

func (s *adService) get(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	ad, err := s.ar.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}
	if ad == nil {
		return nil, ErrNotFound
	}
	return ad, nil
}

func adFromRequest(req *transfer.AdRequest) *models.Ad {
	ad := &models.Ad{
		Name:     req.Name,
		Location: req.Location,
		SlotID:   req.SlotID,
		Format:   req.Format,
		IsActive: true,
	}
	if ad.Format == "" {
		ad.Format = "auto"
	}
	if req.IsActive != nil {
		ad.IsActive = *req.IsActive
	}
	return ad
}

// Settings never returns nil; a missing row reads as all-empty and inactive.
func (s *adService) Settings(ctx context.Context) (*models.AdSettings, error) {
	settings, err := s.sr.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get ad settings: %w", err)
	}
	if settings == nil {
		settings = &models.AdSettings{ID: 1}
	}
	return settings, nil
}

func (s *adService) UpdateSettings(ctx context.Context, req *transfer.AdSettingsRequest) (*models.AdSettings, error) {
	if err := transfer.Validate(req); err != nil {
		return nil, invalid("%v", err)
	}

	settings := &models.AdSettings{
		ID:            1,
		ClientID:      req.ClientID,
		Sidebar:       req.Sidebar,
		ArticleTop:    req.ArticleTop,
		InArticle1:    req.InArticle1,
		InArticle2:    req.InArticle2,
		InArticle3:    req.InArticle3,
		InArticle4:    req.InArticle4,
		InArticle5:    req.InArticle5,
		ArticleBottom: req.ArticleBottom,
		IsActive:      req.IsActive,
	}
	if err := s.sr.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("save ad settings: %w", err)
	}
	return s.Settings(ctx)
}

// Placement reports how in-article ads should be rendered. Lookup failures
// disable ads rather than failing the page.
func (s *adService) Placement(ctx context.Context) content.AdPlacement {
	settings, err := s.Settings(ctx)
	if err != nil {
		slog.Warn("ad settings unavailable", "error", err)
		return content.AdPlacement{}
	}
	return content.AdPlacement{
		Enabled: settings.IsActive && settings.ClientID != "",
		Client:  settings.ClientID,
		Slots:   settings.InArticleSlots(),
	}
}
