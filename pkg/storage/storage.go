// Package storage keeps uploaded product images on an afero filesystem.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("only JPEG, PNG and WebP images are allowed")
	ErrTooLarge        = errors.New("image exceeds the 5MB limit")
	ErrInvalidPath     = errors.New("invalid image path")
)

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// StoredImage describes a saved file.
type StoredImage struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// ImageStore writes images below a root directory of fs.
type ImageStore struct {
	fs            afero.Fs
	publicBaseURL string
	now           func() time.Time
}

// NewImageStore returns a store rooted at dir on the OS filesystem.
func NewImageStore(dir, publicBaseURL string) *ImageStore {
	return NewImageStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir), publicBaseURL)
}

// NewImageStoreFs returns a store on an arbitrary filesystem.
func NewImageStoreFs(fs afero.Fs, publicBaseURL string) *ImageStore {
	return &ImageStore{
		fs:            fs,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// Save validates the content type by sniffing the data and writes it to
// products/<unix-millis>-<random>.<ext>.
func (s *ImageStore) Save(r io.Reader) (*StoredImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	var contentType, ext string
	for allowed, e := range allowedTypes {
		if mtype.Is(allowed) {
			contentType, ext = allowed, e
			break
		}
	}
	if ext == "" {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedType, mtype.String())
	}

	name := fmt.Sprintf("products/%d-%s.%s", s.now().UnixMilli(), strconv.FormatInt(rand.Int63(), 36), ext)
	if err := s.fs.MkdirAll("products", 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := afero.WriteReader(s.fs, name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	return &StoredImage{Path: name, URL: s.URL(name), ContentType: contentType}, nil
}

// URL returns the public address of a stored path.
func (s *ImageStore) URL(p string) string {
	return s.publicBaseURL + "/media/" + p
}

// Open reads a stored image and its content type.
func (s *ImageStore) Open(p string) ([]byte, string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" || strings.Contains(p, "..") {
		return nil, "", ErrInvalidPath
	}
	data, err := afero.ReadFile(s.fs, strings.TrimPrefix(clean, "/"))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image %s: %w", p, err)
	}
	return data, mimetype.Detect(data).String(), nil
}
