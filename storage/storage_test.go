package storage

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	err     error
	uploads []string
}

func (f *fakeStore) Upload(_ context.Context, bucket, name, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, bucket+"/"+name)
	return name, nil
}

func (f *fakeStore) PublicURL(bucket, path string) string {
	return "https://cdn.test/" + bucket + "/" + path
}

func TestObjectName(t *testing.T) {
	now := time.Unix(0, 1700000000000000000)

	assert.Equal(t, "1700000000000000000_summer_sale.jpg", ObjectName(now, "summer sale.jpg"))
	assert.Equal(t, "1700000000000000000_hero.png", ObjectName(now, "hero.jpg.png"))
	assert.Equal(t, "1700000000000000000_a_b_.jpeg", ObjectName(now, "../a$b?.JPEG"))
	assert.Equal(t, "1700000000000000000_file", ObjectName(now, ""))
}

func TestCreateWithImage_UploadsBeforeInsert(t *testing.T) {
	store := &fakeStore{}
	up := NewUploader(store, "media", "promos")
	up.now = func() time.Time { return time.Unix(0, 42) }

	var got string
	err := up.CreateWithImage(context.Background(), &Attachment{Filename: "x.png", Data: []byte("png")}, func(url string) error {
		require.Len(t, store.uploads, 1)
		got = url
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/media/promos/42_x.png", got)
}

func TestCreateWithImage_UploadFailureSkipsInsert(t *testing.T) {
	up := NewUploader(&fakeStore{err: errors.New("bucket offline")}, "media", "")

	called := false
	err := up.CreateWithImage(context.Background(), &Attachment{Filename: "x.png"}, func(string) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrUploadFailure)
	assert.False(t, called)
}

func TestCreateWithImage_NoAttachment(t *testing.T) {
	store := &fakeStore{}
	up := NewUploader(store, "media", "")

	var got = "unset"
	require.NoError(t, up.CreateWithImage(context.Background(), nil, func(url string) error {
		got = url
		return nil
	}))
	assert.Equal(t, "", got)
	assert.Empty(t, store.uploads)
}

func TestCreateWithImage_InsertErrorPropagates(t *testing.T) {
	up := NewUploader(&fakeStore{}, "media", "")
	boom := errors.New("insert failed")

	err := up.CreateWithImage(context.Background(), &Attachment{Filename: "x.png"}, func(string) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "http://localhost:8080/")

	path, err := store.Upload(context.Background(), "media", "../banners/1_a.png", "image/png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "banners/1_a.png", path)

	data, err := os.ReadFile(filepath.Join(root, "media", "banners", "1_a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))
	assert.Equal(t, "http://localhost:8080/uploads/media/banners/1_a.png", store.PublicURL("media", path))
}

func TestGCSPublicURL(t *testing.T) {
	g := &GCSStore{PublicBaseURL: "https://storage.googleapis.com/"}
	assert.Equal(t,
		"https://storage.googleapis.com/media/promos/1_summer%20sale.png",
		g.PublicURL("media", "promos/1_summer sale.png"),
	)
}

func TestMissingFile(t *testing.T) {
	assert.True(t, MissingFile(http.ErrMissingFile))
	assert.True(t, MissingFile(http.ErrNotMultipart))
	assert.False(t, MissingFile(errors.New("disk full")))
	assert.False(t, MissingFile(nil))
}
