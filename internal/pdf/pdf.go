// Package pdf converts Markdown reports to PDF.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
)

type Options struct {
	// Orientation is "P" (portrait) or "L" (landscape).
	Orientation string
	PaperSize   string
	Dark        bool
}

func DefaultOptions() Options {
	return Options{Orientation: "P", PaperSize: "A4"}
}

// ConvertMarkdownToPDF writes a PDF next to markdownPath and returns its absolute path.
func ConvertMarkdownToPDF(markdownPath string, options Options) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	defaults := DefaultOptions()
	if options.Orientation == "" {
		options.Orientation = defaults.Orientation
	}
	if options.PaperSize == "" {
		options.PaperSize = defaults.PaperSize
	}
	theme := mdtopdf.LIGHT
	if options.Dark {
		theme = mdtopdf.DARK
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	renderer := mdtopdf.NewPdfRenderer(options.Orientation, options.PaperSize, pdfPath, "", nil, theme)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}
