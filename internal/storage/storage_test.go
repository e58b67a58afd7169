package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	puts    map[string][]byte
	types   map[string]string
	deleted []string
	err     error
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts[*in.Key] = body
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestPutReturnsPublicURL(t *testing.T) {
	api := &fakeObjectAPI{puts: map[string][]byte{}, types: map[string]string{}}
	store := NewObjectStore(api, config.Storage{BucketName: "images", PublicURL: "https://cdn.example.com/images/"})

	url, err := store.Put(context.Background(), "images/2026/10/abc.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/images/2026/10/abc.png", url)
	assert.Equal(t, []byte("png"), api.puts["images/2026/10/abc.png"])
	assert.Equal(t, "image/png", api.types["images/2026/10/abc.png"])
}

func TestDelete(t *testing.T) {
	api := &fakeObjectAPI{puts: map[string][]byte{}, types: map[string]string{}}
	store := NewObjectStore(api, config.Storage{BucketName: "images"})

	require.NoError(t, store.Delete(context.Background(), "a.png"))
	assert.Equal(t, []string{"a.png"}, api.deleted)
}

func TestErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	store := NewObjectStore(&fakeObjectAPI{err: boom}, config.Storage{BucketName: "images"})

	_, err := store.Put(context.Background(), "a.png", nil, "image/png")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Delete(context.Background(), "a.png"), boom)
}
