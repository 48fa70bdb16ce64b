// Package document validates uploaded PDF files before they reach storage.
package document

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ContentType is the MIME type stored alongside every uploaded document.
const ContentType = "application/pdf"

var (
	// ErrInvalidName is returned for file names that cannot be stored as-is.
	ErrInvalidName = errors.New("invalid file name")
	// ErrNotPDF is returned when the content does not parse as a PDF.
	ErrNotPDF = errors.New("file is not a readable PDF")
)

func init() {
	// Keep pdfcpu from writing a config directory under $HOME.
	api.DisableConfigDir()
}

// Info is what Inspect learns about a PDF.
type Info struct {
	Pages int `json:"pages"`
}

// CheckName verifies that name is a plain ".pdf" file name.
func CheckName(name string) error {
	switch {
	case name == "", strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`), path.Base(name) != name:
		return fmt.Errorf("%w: %q must not contain a path", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q must not be hidden", ErrInvalidName, name)
	case !strings.EqualFold(path.Ext(name), ".pdf"):
		return fmt.Errorf("%w: %q must have a .pdf extension", ErrInvalidName, name)
	}
	return nil
}

// Inspect parses rs as a PDF and rewinds it so it can be uploaded afterwards.
func Inspect(rs io.ReadSeeker) (Info, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.PageCount(rs, conf)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrNotPDF, err)
	}
	if pages < 1 {
		return Info{}, fmt.Errorf("%w: no pages", ErrNotPDF)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("rewind document: %w", err)
	}
	return Info{Pages: pages}, nil
}
