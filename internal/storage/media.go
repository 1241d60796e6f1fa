package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize caps a single product image upload.
const MaxImageSize = 5 << 20

var (
	ErrImageType = errors.New("invalid file type, allowed: png, jpg, jpeg, webp")
	ErrImageSize = errors.New("image exceeds 5MB")

	allowedExt  = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}
	allowedMIME = map[string]bool{"image/png": true, "image/jpeg": true, "image/webp": true}
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// Media stores uploaded files under Dir and serves them below URLPrefix.
type Media struct {
	Dir       string
	URLPrefix string
}

func NewMedia(dir string) *Media { return &Media{Dir: dir, URLPrefix: "/uploads"} }

// SaveProductImage validates and writes an uploaded image, returning its public URL.
func (m *Media) SaveProductImage(fh *multipart.FileHeader) (string, error) {
	name := unsafeChars.ReplaceAllString(filepath.Base(fh.Filename), "_")
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExt[ext] {
		return "", ErrImageType
	}
	if fh.Size > MaxImageSize {
		return "", ErrImageSize
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if !allowedMIME[http.DetectContentType(head[:n])] {
		return "", ErrImageType
	}

	dir := filepath.Join(m.Dir, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	stored := uuid.NewString() + "_" + name
	dst, err := os.OpenFile(filepath.Join(dir, stored), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	// cap at one byte over the limit so an understated Size is still caught
	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(bytes.NewReader(head[:n]), src), MaxImageSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxImageSize {
		err = ErrImageSize
	}
	if err != nil {
		_ = os.Remove(filepath.Join(dir, stored))
		return "", err
	}
	return path.Join(m.URLPrefix, "products", stored), nil
}

// Remove deletes a file previously returned by SaveProductImage. Unknown URLs are ignored.
func (m *Media) Remove(url string) error {
	rel := strings.TrimPrefix(url, m.URLPrefix+"/")
	if rel == url || strings.Contains(rel, "..") {
		return fmt.Errorf("not a media url: %s", url)
	}
	err := os.Remove(filepath.Join(m.Dir, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Resolve maps a request path below URLPrefix to a file on disk, refusing traversal.
func (m *Media) Resolve(rel string) (string, bool) {
	lower := strings.ToLower(rel)
	if strings.Contains(lower, "..") || strings.Contains(lower, "%2e") || strings.Contains(lower, "\x00") {
		return "", false
	}
	clean := filepath.Clean(rel)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", false
	}
	return filepath.Join(m.Dir, clean), true
}
