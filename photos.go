package evergreen

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
)

// ErrNotImage is returned when photo bytes are not a recognized image format.
var ErrNotImage = errors.New("evergreen: not an image")

// Photo is one user image shown as a card. ID is the focus identifier; URL is
// whatever the render collaborator can display (http, file or data URL).
type Photo struct {
	ID  string `json:"id" toml:"id"`
	URL string `json:"url" toml:"url"`
}

// photoManifest is the top-level JSON structure of a photo manifest.
type photoManifest struct {
	Photos []Photo `json:"photos"`
}

// LoadPhotoManifest parses a JSON manifest of the form
// {"photos": [{"id": "...", "url": "..."}]}.
func LoadPhotoManifest(jsonData []byte) ([]Photo, error) {
	var m photoManifest
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parse photo manifest: %w", err)
	}
	seen := make(map[string]bool, len(m.Photos))
	for i, p := range m.Photos {
		if p.ID == "" {
			return nil, fmt.Errorf("parse photo manifest: photo %d has no id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse photo manifest: duplicate id %q", p.ID)
		}
		if strings.TrimSpace(p.URL) == "" {
			return nil, fmt.Errorf("parse photo manifest: photo %q has no url", p.ID)
		}
		seen[p.ID] = true
	}
	return m.Photos, nil
}

// NewPhotoFromBytes sniffs the image type of data and wraps it in a data URL.
func NewPhotoFromBytes(id string, data []byte) (Photo, error) {
	if id == "" {
		return Photo{}, fmt.Errorf("new photo: empty id")
	}
	if !filetype.IsImage(data) {
		return Photo{}, fmt.Errorf("new photo %q: %w", id, ErrNotImage)
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return Photo{}, fmt.Errorf("new photo %q: %w", id, err)
	}
	url := "data:" + kind.MIME.Value + ";base64," + base64.StdEncoding.EncodeToString(data)
	return Photo{ID: id, URL: url}, nil
}

// mergePhotos appends add to base, replacing entries with a matching ID in
// place so existing cards keep their slot.
func mergePhotos(base, add []Photo) []Photo {
	out := append([]Photo(nil), base...)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.ID] = i
	}
	for _, p := range add {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}
