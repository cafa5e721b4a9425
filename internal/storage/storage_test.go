package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/media")
	ctx := context.Background()

	url, err := store.Put(ctx, "recipes/pancakes-1.webp", []byte("webp"), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/pancakes-1.webp", url)

	data, err := os.ReadFile(filepath.Join(dir, "recipes", "pancakes-1.webp"))
	require.NoError(t, err)
	assert.Equal(t, []byte("webp"), data)

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, "recipes", "pancakes-1.webp"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, store.Delete(ctx, url), "deleting twice is not an error")
}

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		url     string
		want    string
		wantErr bool
	}{
		{"Relative base", "/media", "/media/a/b.webp", "a/b.webp", false},
		{"Absolute base with slash", "https://cdn.example.com/", "https://cdn.example.com/x.webp", "x.webp", false},
		{"Other host", "/media", "https://evil.example.com/x.webp", "", true},
		{"Traversal", "/media", "/media/../etc/passwd", "", true},
		{"Bare base", "/media", "/media/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keyFromURL(tt.base, tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForeignURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = body
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_PutAndDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store := newS3Store(fake, &config.Config{S3Bucket: "media", S3Endpoint: "http://minio:9000"})
	ctx := context.Background()

	url, err := store.Put(ctx, "avatars/alice.webp", []byte("img"), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/media/avatars/alice.webp", url)
	assert.Equal(t, []byte("img"), fake.objects["media/avatars/alice.webp"])
	assert.Equal(t, "image/webp", fake.types["media/avatars/alice.webp"])

	require.NoError(t, store.Delete(ctx, url))
	assert.Empty(t, fake.objects)

	assert.ErrorIs(t, store.Delete(ctx, "/media/local.webp"), ErrForeignURL)
}

func TestS3PublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", s3PublicURL(&config.Config{S3PublicURL: "https://cdn.example.com", S3Bucket: "b"}))
	assert.Equal(t, "http://minio:9000/b", s3PublicURL(&config.Config{S3Endpoint: "http://minio:9000", S3Bucket: "b"}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", s3PublicURL(&config.Config{S3Bucket: "b", S3Region: "eu-west-1"}))
}

func TestNew_SelectsLocalByDefault(t *testing.T) {
	store, err := New(context.Background(), &config.Config{StorageDriver: config.StorageLocal, UploadDir: t.TempDir(), MediaURL: "/media"})
	require.NoError(t, err)
	assert.Equal(t, "local", store.Backend())

	_, err = New(context.Background(), &config.Config{StorageDriver: "ftp"})
	assert.Error(t, err)
}
