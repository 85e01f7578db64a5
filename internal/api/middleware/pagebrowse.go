package middleware

import (
	"net/http"
	"strings"

	"sitetrack/internal/engine/tracking"
)

const (
	TrackingCookie = "liana_t"
	PVUIDParam     = "liana_pv"
)

// Dispatcher accepts page views for submission.
type Dispatcher interface {
	Dispatch(visitor tracking.Visitor, pageURL string) tracking.Result
}

// PageBrowseMiddleware reports every rendered page to the automation API.
// Tracking runs after the page is rendered and its result never reaches
// the response.
type PageBrowseMiddleware struct {
	dispatcher Dispatcher
	homeURL    string
}

func NewPageBrowseMiddleware(dispatcher Dispatcher, homeURL string) *PageBrowseMiddleware {
	return &PageBrowseMiddleware{
		dispatcher: dispatcher,
		homeURL:    strings.TrimRight(homeURL, "/"),
	}
}

func (m *PageBrowseMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r)

		if r.Method != http.MethodGet {
			return
		}
		m.dispatcher.Dispatch(VisitorFromRequest(r), m.CurrentURL(r))
	}
}

// VisitorFromRequest reads the tracking cookie and the optional pv_uid
// query parameter. Values are sanitized by the submitter.
func VisitorFromRequest(r *http.Request) tracking.Visitor {
	var v tracking.Visitor
	if c, err := r.Cookie(TrackingCookie); err == nil {
		v.Token = c.Value
	}
	v.PVUID = r.URL.Query().Get(PVUIDParam)
	return v
}

// CurrentURL is the home URL joined with the escaped request path. The
// query string is not part of it.
func (m *PageBrowseMiddleware) CurrentURL(r *http.Request) string {
	home := m.homeURL
	if home == "" {
		home = requestOrigin(r)
	}

	path := strings.Trim(r.URL.EscapedPath(), "/")
	if path == "" {
		return home
	}
	return home + "/" + path
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
