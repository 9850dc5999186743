package staging

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes staged images from staged results.
type Kind string

const (
	KindImage  Kind = "image"
	KindResult Kind = "result"
)

const (
	imagePrefix  = "images/"
	resultPrefix = "results/"
	resultExt    = ".json"

	// DefaultFilename names uploads that arrive without one.
	DefaultFilename = "card.png"
)

// Ref locates one staged object.
type Ref struct {
	Kind     Kind      `json:"kind"`
	Handle   uuid.UUID `json:"handle"`
	Key      string    `json:"key"`
	Filename string    `json:"filename,omitempty"`
}

func (k Kind) prefix() string {
	if k == KindResult {
		return resultPrefix
	}
	return imagePrefix
}

func imageKey(handle uuid.UUID, filename string) string {
	return imagePrefix + handle.String() + "/" + filename
}

func resultKey(handle uuid.UUID) string {
	return resultPrefix + handle.String() + resultExt
}

// parseKey recovers a Ref from a storage key. Keys outside the staging
// layout are reported as not ok.
func parseKey(key string) (Ref, bool) {
	switch {
	case strings.HasPrefix(key, imagePrefix):
		id, name, found := strings.Cut(strings.TrimPrefix(key, imagePrefix), "/")
		if !found || name == "" || strings.Contains(name, "/") {
			return Ref{}, false
		}
		h, err := uuid.Parse(id)
		if err != nil {
			return Ref{}, false
		}
		return Ref{Kind: KindImage, Handle: h, Key: key, Filename: name}, true

	case strings.HasPrefix(key, resultPrefix) && strings.HasSuffix(key, resultExt):
		id := strings.TrimSuffix(strings.TrimPrefix(key, resultPrefix), resultExt)
		h, err := uuid.Parse(id)
		if err != nil {
			return Ref{}, false
		}
		return Ref{Kind: KindResult, Handle: h, Key: key}, true
	}
	return Ref{}, false
}

// SanitizeFilename reduces name to its base element and checks it carries an
// image extension. An empty name becomes DefaultFilename.
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return DefaultFilename, nil
	}

	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidImage, name)
	}

	switch strings.ToLower(path.Ext(base)) {
	case ".png", ".jpg", ".jpeg":
		return base, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidImage, base)
}
