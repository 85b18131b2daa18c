// Package loader turns dropped or picked paths into selectable files.
package loader

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/0xcro3dile/polit/internal/domain/entities"
	"github.com/0xcro3dile/polit/internal/domain/ports"
	"github.com/0xcro3dile/polit/internal/logging"
)

// FileLoader implements ports.FileLoader.
type FileLoader struct {
	inspector ports.DocumentInspector
	logger    *logging.Logger
}

// NewFileLoader creates a loader. inspector may be nil, in which case page
// counts are left unknown.
func NewFileLoader(inspector ports.DocumentInspector, logger *logging.Logger) *FileLoader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FileLoader{inspector: inspector, logger: logger}
}

// Load stats path and classifies it. It never rejects a file for its type or
// size; that decision belongs to the upload flow.
func (l *FileLoader) Load(ctx context.Context, path string) (*entities.SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	file := &entities.SelectedFile{
		Path:      path,
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
		MimeType:  DetectMimeType(path),
	}

	if file.IsPDF() && l.inspector != nil && !file.ExceedsLimit() {
		pages, err := l.inspector.PageCount(ctx, path)
		if err != nil {
			l.logger.Warn("PDF may be unreadable or password protected", "file", file.Name, "error", err)
		} else {
			file.Pages = pages
		}
	}

	return file, nil
}

// DetectMimeType maps the extension to a MIME type, falling back to content
// sniffing when the extension is missing or unknown.
func DetectMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return entities.PDFMimeType
	case ".txt":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			mediaType, _, err := mime.ParseMediaType(t)
			if err == nil {
				return mediaType
			}
		}
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String()
	}
	return mediaType
}
