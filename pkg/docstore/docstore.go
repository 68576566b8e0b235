// Package docstore abstracts the remote document hierarchy that filed
// attachments are moved into. Backends address folders and files by a site
// identifier plus a slash-separated path relative to that site's root.
package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/MGhunch/dot-file/pkg/lifecycle"
)

// Location addresses a folder or file within a site.
type Location struct {
	Site string `json:"site"`
	Path string `json:"path"`
}

// Child returns the location of name beneath l.
func (l Location) Child(name string) Location {
	return Location{Site: l.Site, Path: Join(l.Path, name)}
}

// Name is the final path segment.
func (l Location) Name() string {
	return path.Base("/" + l.Path)
}

func (l Location) String() string {
	return l.Site + ":/" + l.Path
}

// Item is a folder reported by a backend.
type Item struct {
	Name     string   `json:"name"`
	Location Location `json:"location"`
	WebURL   string   `json:"web_url,omitempty"`
}

// System is the document store contract consumed by folder resolution and filing.
type System interface {
	// Start registers backend initialisation with the lifecycle.
	Start(lc *lifecycle.Coordinator) error
	// ListFolders returns the immediate subfolders of folder.
	ListFolders(ctx context.Context, folder Location) ([]Item, error)
	// CreateFolder creates name beneath parent. Returns ErrConflict if it already exists.
	CreateFolder(ctx context.Context, parent Location, name string) (Item, error)
	// Move relocates file into folder, keeping its name.
	Move(ctx context.Context, file, folder Location) error
	// Write stores data at file, replacing any existing content.
	Write(ctx context.Context, file Location, data []byte, contentType string) error
}

// New builds the backend selected by cfg.Backend.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendGraph:
		return NewGraph(&cfg.Graph, logger)
	case BackendAzure:
		return NewAzure(&cfg.Azure, logger)
	case BackendS3:
		return NewS3(&cfg.S3, logger)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown docstore backend %q", cfg.Backend)
	}
}

// Join joins path segments with single slashes and no leading or trailing slash.
func Join(parts ...string) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "/")
}

func validate(l Location) error {
	if l.Site == "" {
		return ErrInvalidLocation
	}
	for seg := range strings.SplitSeq(l.Path, "/") {
		if seg == ".." {
			return ErrInvalidLocation
		}
	}
	return nil
}
