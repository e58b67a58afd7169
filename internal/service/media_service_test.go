package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newMediaFixture(limit int64) (*mediaService, *fakeMediaRepo, *fakeStore) {
	repo := &fakeMediaRepo{}
	store := &fakeStore{}
	svc := NewMediaService(config.Config{MaxUploadSize: limit, PageSize: 10}, repo, store).(*mediaService)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	return svc, repo, store
}

func TestUploadImage(t *testing.T) {
	svc, repo, store := newMediaFixture(1 << 20)

	asset, err := svc.Upload(context.Background(), 7, "../../etc/photo.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(asset.ObjectKey, "images/2026/03/"), asset.ObjectKey)
	assert.True(t, strings.HasSuffix(asset.ObjectKey, ".png"), asset.ObjectKey)
	assert.Equal(t, "image/png", asset.FileType)
	assert.Equal(t, "photo.png", asset.FileName)
	assert.Equal(t, int64(len(pngHeader)), asset.FileSize)
	assert.Equal(t, "https://cdn.example.com/"+asset.ObjectKey, asset.FileURL)
	assert.Contains(t, store.objects, asset.ObjectKey)
	assert.Len(t, repo.assets, 1)

	list, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, list.Assets, 1)

	require.NoError(t, svc.Remove(context.Background(), asset.ID))
	assert.Empty(t, store.objects)
	assert.ErrorIs(t, svc.Remove(context.Background(), uuid.New()), ErrNotFound)
}

func TestUploadRejects(t *testing.T) {
	svc, _, store := newMediaFixture(16)
	ctx := context.Background()

	_, err := svc.Upload(ctx, 7, "big.png", bytes.NewReader(append(pngHeader, make([]byte, 16)...)))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.Upload(ctx, 7, "notes.png", strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = svc.Upload(ctx, 7, "empty.png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, store.objects)
}

func TestUploadCleansUpOnRowFailure(t *testing.T) {
	svc, repo, store := newMediaFixture(1 << 20)
	repo.err = errors.New("db down")

	_, err := svc.Upload(context.Background(), 7, "photo.png", bytes.NewReader(pngHeader))
	assert.Error(t, err)
	assert.Empty(t, store.objects)
}
