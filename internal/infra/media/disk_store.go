// Package media stores uploaded attachments on disk and serves them back as
// public URLs under the configured base.
package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/ports/repository"
)

var _ repository.MediaStore = (*DiskStore)(nil)

// URLPrefix is the route the HTTP layer mounts FileServer on.
const URLPrefix = "/media/"

const maxUploadBytes = 8 << 20 // 8 MiB

type DiskStore struct {
	dir     string
	baseURL string // e.g. http://localhost:8080
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the binary under <ownerID>/<ulid>.<ext> and returns its public
// URL. Object names are ULIDs so listings sort by upload time.
func (s *DiskStore) Save(ctx context.Context, ownerID, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrInvalidArgument
	}
	if len(data) > maxUploadBytes {
		return "", &domain.PersistenceError{Op: "upload", Err: fmt.Errorf("attachment exceeds %d bytes", maxUploadBytes)}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	name := ulid.Make().String() + ext

	owner := ownerID
	if owner == "" {
		owner = "guest"
	}
	dir := filepath.Join(s.dir, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.PersistenceError{Op: "upload", Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", &domain.PersistenceError{Op: "upload", Err: err}
	}
	return s.baseURL + URLPrefix + path.Join(owner, name), nil
}

// Handler serves stored objects. Mount under URLPrefix.
func (s *DiskStore) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}
