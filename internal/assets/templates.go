// Package assets renders Markdown documents from templates, preferring a file on disk
// over the embedded copy.
package assets

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

const masteryBarWidth = 10

var funcMap = template.FuncMap{
	"join": strings.Join,
	"bar":  masteryBar,
	"date": formatDate,
}

func parseTemplateWithFallback(templatePath string, fallbackName string, fallbackTemplate string) (*template.Template, error) {
	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			fileName := filepath.Base(templatePath)
			tmpl, err := template.New(fileName).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// masteryBar draws level (0-100) as a fixed-width bar.
func masteryBar(level int) string {
	filled := max(0, min(masteryBarWidth, level*masteryBarWidth/100))
	return strings.Repeat("█", filled) + strings.Repeat("░", masteryBarWidth-filled)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
