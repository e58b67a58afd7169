package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdRepo struct {
	ads map[uuid.UUID]*models.Ad
}

func (r *fakeAdRepo) Create(_ context.Context, ad *models.Ad) (uuid.UUID, error) {
	cp := *ad
	cp.ID = uuid.New()
	r.ads[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeAdRepo) Update(_ context.Context, ad *models.Ad) error {
	cp := *ad
	r.ads[ad.ID] = &cp
	return nil
}

func (r *fakeAdRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Ad, error) {
	if ad, ok := r.ads[id]; ok {
		cp := *ad
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAdRepo) List(_ context.Context, activeOnly bool) ([]*models.Ad, error) {
	var out []*models.Ad
	for _, ad := range r.ads {
		if !activeOnly || ad.IsActive {
			out = append(out, ad)
		}
	}
	return out, nil
}

func (r *fakeAdRepo) Remove(_ context.Context, id uuid.UUID) error {
	delete(r.ads, id)
	return nil
}

type fakeAdSettingsRepo struct {
	row *models.AdSettings
	err error
}

func (r *fakeAdSettingsRepo) Get(context.Context) (*models.AdSettings, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.row == nil {
		return nil, nil
	}
	cp := *r.row
	return &cp, nil
}

func (r *fakeAdSettingsRepo) Upsert(_ context.Context, s *models.AdSettings) error {
	cp := *s
	r.row = &cp
	return nil
}

func TestAdLifecycle(t *testing.T) {
	repo := &fakeAdRepo{ads: map[uuid.UUID]*models.Ad{}}
	svc := NewAdService(repo, &fakeAdSettingsRepo{})
	ctx := context.Background()

	ad, err := svc.Create(ctx, &transfer.AdRequest{Name: "Sidebar", Location: "sidebar", SlotID: "123"})
	require.NoError(t, err)
	assert.Equal(t, "auto", ad.Format)
	assert.True(t, ad.IsActive)

	_, err = svc.Create(ctx, &transfer.AdRequest{Name: "Bad", Location: "footer", SlotID: "123"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	off := false
	ad, err = svc.Update(ctx, ad.ID, &transfer.AdRequest{Name: "Sidebar", Location: "sidebar", SlotID: "456", IsActive: &off})
	require.NoError(t, err)
	assert.False(t, ad.IsActive)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.NotNil(t, active)

	require.NoError(t, svc.Remove(ctx, ad.ID))
	assert.ErrorIs(t, svc.Remove(ctx, ad.ID), ErrNotFound)
	_, err = svc.Update(ctx, uuid.New(), &transfer.AdRequest{Name: "X", Location: "sidebar", SlotID: "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdSettingsAndPlacement(t *testing.T) {
	settingsRepo := &fakeAdSettingsRepo{}
	svc := NewAdService(&fakeAdRepo{ads: map[uuid.UUID]*models.Ad{}}, settingsRepo)
	ctx := context.Background()

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.False(t, settings.IsActive)
	assert.False(t, svc.Placement(ctx).Enabled)

	_, err = svc.UpdateSettings(ctx, &transfer.AdSettingsRequest{ClientID: "pub-1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateSettings(ctx, &transfer.AdSettingsRequest{InArticle1: "111", IsActive: true})
	require.NoError(t, err)
	assert.False(t, svc.Placement(ctx).Enabled, "no client configured")

	settings, err = svc.UpdateSettings(ctx, &transfer.AdSettingsRequest{ClientID: "ca-pub-1", InArticle1: "111", InArticle3: "333", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "ca-pub-1", settings.ClientID)

	placement := svc.Placement(ctx)
	assert.True(t, placement.Enabled)
	assert.Equal(t, "ca-pub-1", placement.Client)
	assert.Equal(t, []string{"111", "", "333", "", ""}, placement.Slots)

	settingsRepo.err = errors.New("db down")
	assert.False(t, svc.Placement(ctx).Enabled)
}
