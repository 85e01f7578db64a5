package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Heading}} | {{.SiteTitle}}</title>
</head>
<body>
<h1>{{.Heading}}</h1>
<p>{{.Path}}</p>
</body>
</html>
`))

type pageData struct {
	SiteTitle string
	Heading   string
	Path      string
}

// PageHandler renders the public site. Every path is a page.
type PageHandler struct {
	siteTitle string
}

func NewPageHandler(siteTitle string) *PageHandler {
	return &PageHandler{siteTitle: siteTitle}
}

func (h *PageHandler) Render(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		SiteTitle: h.siteTitle,
		Heading:   headingFor(r.URL.Path),
		Path:      r.URL.Path,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to render page")
	}
}

func headingFor(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "Home"
	}
	segments := strings.Split(path, "/")
	last := strings.ReplaceAll(segments[len(segments)-1], "-", " ")
	if last == "" {
		return "Home"
	}
	return strings.ToUpper(last[:1]) + last[1:]
}
