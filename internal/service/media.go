package service

import (
	"path/filepath"
	"strings"
)

// Media resolves image paths stored relative to the media root.
type Media struct {
	Root        string
	URL         string
	Placeholder string
}

// URLDe returns the public URL of a stored image, or the placeholder.
func (m Media) URLDe(path string) string {
	if path == "" {
		return m.Placeholder
	}
	return strings.TrimRight(m.URL, "/") + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}

// Ruta returns the filesystem path of a stored image, "" when none.
func (m Media) Ruta(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Join(m.Root, filepath.FromSlash(path))
}
