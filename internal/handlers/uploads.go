// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"blogpress/internal/models"
	"blogpress/internal/storage"
)

const (
	// maxUploadSize is the maximum size of a single uploaded file.
	maxUploadSize = 10 << 20 // 10 MB

	// MaxRequestSize bounds a whole post form: two files plus text fields.
	MaxRequestSize = 2*maxUploadSize + 1<<20
)

// headImageTypes are the MIME types accepted for a post head image.
var headImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// thumbableTypes are image types that support thumbnail generation.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// objectStore is the subset of the storage client used by handlers.
type objectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
}

// errUpload is a user-facing upload problem, shown on the post form.
type errUpload struct{ msg string }

func (e *errUpload) Error() string { return e.msg }

// uploaded holds the object keys written for one post form submission.
type uploaded struct {
	headImage *string
	thumb     *string
	file      *string
}

// keys lists every stored key, for cleanup when the post cannot be saved.
func (u *uploaded) keys() []string {
	var keys []string
	for _, k := range []*string{u.headImage, u.thumb, u.file} {
		if k != nil {
			keys = append(keys, *k)
		}
	}
	return keys
}

// saveUploads stores the head_image and file_upload parts of a multipart
// post form. Missing parts are skipped.
func (b *Blog) saveUploads(ctx context.Context, r *http.Request) (*uploaded, error) {
	up := &uploaded{}
	if r.MultipartForm == nil {
		return up, nil
	}

	now := time.Now().UTC()

	if file, header, err := r.FormFile("head_image"); err == nil {
		defer file.Close()
		if err := b.saveHeadImage(ctx, up, now, file, header); err != nil {
			b.removeObjects(ctx, up.keys())
			return nil, err
		}
	}

	if file, header, err := r.FormFile("file_upload"); err == nil {
		defer file.Close()
		if err := b.saveAttachment(ctx, up, now, file, header); err != nil {
			b.removeObjects(ctx, up.keys())
			return nil, err
		}
	}

	return up, nil
}

// readUpload checks the size of an uploaded part, reads it into memory,
// and sniffs its content type.
func (b *Blog) readUpload(file multipart.File, header *multipart.FileHeader) ([]byte, string, error) {
	if b.objects == nil {
		return nil, "", &errUpload{"File uploads are not configured."}
	}
	if header.Size > maxUploadSize {
		return nil, "", &errUpload{fmt.Sprintf("%s is too large. Maximum size is 10 MB.", header.Filename)}
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload %s: %w", header.Filename, err)
	}
	if len(data) > maxUploadSize {
		return nil, "", &errUpload{fmt.Sprintf("%s is too large. Maximum size is 10 MB.", header.Filename)}
	}

	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	return data, http.DetectContentType(sniff), nil
}

func (b *Blog) saveHeadImage(ctx context.Context, up *uploaded, now time.Time, file multipart.File, header *multipart.FileHeader) error {
	data, contentType, err := b.readUpload(file, header)
	if err != nil {
		return err
	}
	if !headImageTypes[contentType] {
		return &errUpload{fmt.Sprintf("Head image type %q is not allowed.", contentType)}
	}

	key := storage.ImageKey(now, extensionFromType(contentType))
	if err := b.objects.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("upload head image: %w", err)
	}
	up.headImage = &key

	if !thumbableTypes[contentType] {
		return nil
	}
	thumb, err := storage.Thumbnail(data, storage.ThumbMaxWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "error", err, "key", key)
		return nil
	}
	if thumb == nil {
		return nil
	}
	tk := storage.ThumbKey(key)
	if err := b.objects.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		slog.Warn("thumbnail upload failed", "error", err, "key", tk)
		return nil
	}
	up.thumb = &tk
	return nil
}

func (b *Blog) saveAttachment(ctx context.Context, up *uploaded, now time.Time, file multipart.File, header *multipart.FileHeader) error {
	data, contentType, err := b.readUpload(file, header)
	if err != nil {
		return err
	}

	name := header.Filename
	if filepath.Ext(name) == "" {
		name += extensionFromType(contentType)
	}
	key := storage.FileKey(now, name)
	if err := b.objects.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("upload attachment: %w", err)
	}
	up.file = &key
	return nil
}

// removeObjects deletes stored objects, best-effort.
func (b *Blog) removeObjects(ctx context.Context, keys []string) {
	if b.objects == nil {
		return
	}
	for _, key := range keys {
		if err := b.objects.Delete(ctx, key); err != nil {
			slog.Warn("s3 delete failed", "error", err, "key", key)
		}
	}
}

// postObjects lists the stored keys a post references.
func postObjects(p *models.Post) []string {
	var keys []string
	for _, k := range []*string{p.HeadImage, p.HeadImageThumb, p.FileUpload} {
		if k != nil && *k != "" {
			keys = append(keys, *k)
		}
	}
	return keys
}

// isUploadError reports whether err should be shown on the form.
func isUploadError(err error) (string, bool) {
	var ue *errUpload
	if errors.As(err, &ue) {
		return ue.msg, true
	}
	return "", false
}

// Media redirects /media/<key> to the public object storage URL.
func (b *Blog) Media(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if b.objects == nil || key == "" || !strings.HasPrefix(key, "blog/") || strings.Contains(key, "..") {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, b.objects.FileURL(key), http.StatusFound)
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	case "application/zip":
		return ".zip"
	default:
		if strings.HasPrefix(contentType, "text/plain") {
			return ".txt"
		}
		return ""
	}
}
