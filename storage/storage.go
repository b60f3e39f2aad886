package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrUploadFailure = errors.New("upload failed")

// ObjectStore is the external blob store that holds uploaded images.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, name, contentType string, data []byte) (string, error)
	PublicURL(bucket, path string) string
}

// Attachment is an uploaded file already read into memory.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

const maxAttachmentSize = 10 << 20

// AttachmentFromForm reads a multipart file. A nil header yields a nil
// attachment.
func AttachmentFromForm(fh *multipart.FileHeader) (*Attachment, error) {
	if fh == nil {
		return nil, nil
	}
	if fh.Size > maxAttachmentSize {
		return nil, fmt.Errorf("file %q exceeds %d bytes", fh.Filename, maxAttachmentSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAttachmentSize+1))
	if err != nil {
		return nil, err
	}
	return &Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// MissingFile reports whether a form file lookup failed only because no file
// was sent: the part is absent or the body is not multipart at all.
func MissingFile(err error) bool {
	return errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart)
}

var unsafeChars = regexp.MustCompile(`[^\w\-.]`)
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// ObjectName builds a collision-resistant name: unix-nano timestamp, then the
// sanitized original name with repeated image extensions collapsed.
func ObjectName(now time.Time, original string) string {
	base := filepath.Base(original)
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for {
		e := strings.ToLower(filepath.Ext(stem))
		if e == "" || !imageExts[e] {
			break
		}
		stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	}
	stem = unsafeChars.ReplaceAllString(strings.ReplaceAll(stem, " ", "_"), "_")
	if stem == "" || stem == "." {
		stem = "file"
	}
	return fmt.Sprintf("%d_%s%s", now.UnixNano(), stem, ext)
}

// Uploader writes attachments under a folder of one bucket.
type Uploader struct {
	store  ObjectStore
	bucket string
	folder string
	now    func() time.Time
}

func NewUploader(store ObjectStore, bucket, folder string) *Uploader {
	return &Uploader{store: store, bucket: bucket, folder: strings.Trim(folder, "/"), now: time.Now}
}

// Store uploads att and returns its public URL.
func (u *Uploader) Store(ctx context.Context, att *Attachment) (string, error) {
	name := ObjectName(u.now(), att.Filename)
	if u.folder != "" {
		name = u.folder + "/" + name
	}
	path, err := u.store.Upload(ctx, u.bucket, name, att.ContentType, att.Data)
	if err != nil {
		log.Error().Err(err).Str("bucket", u.bucket).Str("object", name).Msg("❌ object upload failed")
		return "", fmt.Errorf("%w: %v", ErrUploadFailure, err)
	}
	return u.store.PublicURL(u.bucket, path), nil
}

// CreateWithImage uploads att (when present) and then calls insert with the
// resulting URL. A failed upload aborts before insert runs.
func (u *Uploader) CreateWithImage(ctx context.Context, att *Attachment, insert func(imageURL string) error) error {
	var imageURL string
	if att != nil {
		url, err := u.Store(ctx, att)
		if err != nil {
			return err
		}
		imageURL = url
	}
	return insert(imageURL)
}
