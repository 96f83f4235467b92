package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-catalog-admin/internal/i18n"
	"github.com/jrsteele09/go-catalog-admin/sessions"
	"golang.org/x/text/message"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

type alert struct {
	Kind    string // "error" or "success"
	Message string
}

// pageData is what every page template receives.
type pageData struct {
	AppName string
	Lang    string
	Title   string
	Session *sessions.Session
	Alert   *alert
	Content any

	printer *message.Printer
}

// T translates key into the request language.
func (p pageData) T(key string, args ...any) string {
	return p.printer.Sprintf(key, args...)
}

func (s *Server) page(r *http.Request, title string, content any) pageData {
	data := pageData{
		AppName: s.config.GetAppName(),
		Lang:    i18n.Code(r.Context()),
		Content: content,
		printer: i18n.Printer(r.Context()),
	}
	data.Title = data.T(title)
	if current, ok := s.deps.Sessions.Current(); ok {
		data.Session = &current
	}
	return data
}

func errorAlert(message string) *alert {
	return &alert{Kind: "error", Message: message}
}

func successAlert(message string) *alert {
	return &alert{Kind: "success", Message: message}
}

func (s *Server) render(w http.ResponseWriter, name string, status int, data pageData) {
	tmpl, ok := s.templates[name]
	if !ok {
		s.logger.Error().Str("template", name).Msg("unknown template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
