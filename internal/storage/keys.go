package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageKey returns the object key for a post head image uploaded at t.
func ImageKey(t time.Time, ext string) string {
	return fmt.Sprintf("blog/images/%s/%s%s", t.Format("2006/01/02"), uuid.NewString(), strings.ToLower(ext))
}

// ThumbKey returns the object key of the thumbnail generated for an image key.
func ThumbKey(imageKey string) string {
	ext := path.Ext(imageKey)
	return strings.TrimSuffix(imageKey, ext) + "_thumb.jpg"
}

// FileKey returns the object key for an attachment uploaded at t. The
// original file name is kept as the last segment, below a short random
// directory, so two uploads with the same name never collide.
func FileKey(t time.Time, filename string) string {
	return fmt.Sprintf("blog/files/%s/%s/%s", t.Format("2006/01/02"), uuid.NewString()[:8], SafeFileName(filename))
}

// SafeFileName strips any directory part and path separators a browser
// may send, and falls back to "file" for names that end up empty.
func SafeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}
