// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/erik/where/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Comments are HTML-escaped at write time, so the unsafe helper is
// needed to render them without a second escaping pass.
var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"humanize": func(t time.Time) string {
		return humanize.Time(t)
	},
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return template.JS(b), nil
	},
	"unsafe": func(s string) template.HTML {
		return template.HTML(s)
	},
}).ParseFS(templatesFS, "templates/*.html"))

// WherePage is the data for the public timeline page.
type WherePage struct {
	Who    string
	Points []models.Point
}

// HerePage is the data for the owner's check-in page.
type HerePage struct {
	Points []models.Point
	Why    string
}

// Render writes the named page to w.
func Render(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}
