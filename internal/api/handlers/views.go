package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

//go:embed views/*.html views/static/*
var viewFS embed.FS

var pageNames = []string{
	"index",
	"search_by_gps",
	"location",
	"area",
	"find_by_location_name",
	"error",
	"404",
}

var viewFuncs = template.FuncMap{
	"km":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"inc": func(n int) int { return n + 1 },
	"dec": func(n int) int { return n - 1 },
}

// Views renders the embedded page templates and serves the static assets,
// both minified once at startup or per response.
type Views struct {
	pages  map[string]*template.Template
	min    *minify.M
	static map[string]staticAsset
}

type staticAsset struct {
	contentType string
	body        []byte
}

// NewViews parses every page template and minifies the static assets.
func NewViews() (*Views, error) {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/javascript", js.Minify)

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(viewFuncs).ParseFS(viewFS, "views/layout.html", "views/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		pages[name] = t
	}

	static := make(map[string]staticAsset)
	for file, mediaType := range map[string]string{
		"app.css": "text/css",
		"app.js":  "text/javascript",
	} {
		raw, err := fs.ReadFile(viewFS, "views/static/"+file)
		if err != nil {
			return nil, fmt.Errorf("views: read static %s: %w", file, err)
		}
		body, err := m.Bytes(mediaType, raw)
		if err != nil {
			return nil, fmt.Errorf("views: minify static %s: %w", file, err)
		}
		static[file] = staticAsset{contentType: mediaType + "; charset=utf-8", body: body}
	}

	return &Views{pages: pages, min: m, static: static}, nil
}

// Render executes the named page with data and writes it with status.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := v.pages[name]
	if !ok {
		log.Error().Str("page", name).Msg("unknown page template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", name).Str("path", r.URL.Path).Msg("render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	body, err := v.min.Bytes("text/html", buf.Bytes())
	if err != nil {
		log.Warn().Err(err).Str("page", name).Msg("minify failed, sending unminified page")
		body = buf.Bytes()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("write response failed")
	}
}

// Static serves GET /static/{file}.
func (v *Views) Static(w http.ResponseWriter, r *http.Request) {
	asset, ok := v.static[r.PathValue("file")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", asset.contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(asset.body)
}
