package web

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/rostercheck/internal/core"
	"github.com/JonMunkholm/rostercheck/internal/logging"
	"github.com/JonMunkholm/rostercheck/internal/mail"
	"github.com/JonMunkholm/rostercheck/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// maxTemplateBody bounds email template request bodies.
const maxTemplateBody = 1 << 20

// handleDashboard renders the verification form and the template editor.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tmpls, err := s.composer.Templates(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Dashboard(templates.DashboardData{
		Sources:   core.Sources(),
		Templates: tmpls,
		Saved:     r.URL.Query().Get("saved") == "1",
	}).Render(ctx, w)
}

// handleListSources returns the registered input sources.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Sources())
}

// handleDownloadTemplate serves a header-only CSV for a CSV source.
// The file starts with a UTF-8 BOM so spreadsheet programs detect the encoding.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "source")

	def, ok := core.GetSource(key)
	if !ok {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}
	if def.Format != core.FormatCSV {
		writeError(w, http.StatusBadRequest, "templates are only available for csv sources")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, def.Key))

	w.Write([]byte("\ufeff"))
	csvWriter := csv.NewWriter(w)
	csvWriter.Write(def.Columns)
	csvWriter.Flush()
}

// emailTemplateBody is the JSON shape of one email template.
type emailTemplateBody struct {
	Key   string  `json:"key,omitempty"`
	Value *string `json:"value"`
}

// handleGetEmailTemplate returns the template stored under {key}.
func (s *Server) handleGetEmailTemplate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := s.composer.Template(r.Context(), key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, emailTemplateBody{Key: key, Value: &value})
}

// handlePutEmailTemplate replaces the template stored under {key}.
func (s *Server) handlePutEmailTemplate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !mail.ValidKey(key) {
		s.respondError(w, r, fmt.Errorf("%w: %q", mail.ErrUnknownTemplate, key))
		return
	}

	var req emailTemplateBody
	r.Body = http.MaxBytesReader(w, r.Body, maxTemplateBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.composer.SetTemplate(r.Context(), key, *req.Value); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("email template saved", "key", key, "length", len(*req.Value))
	writeJSON(w, http.StatusOK, emailTemplateBody{Key: key, Value: req.Value})
}

// handleSaveEmailTemplates saves the dashboard template form and redirects
// back to the dashboard. Keys absent from the form are left unchanged.
func (s *Server) handleSaveEmailTemplates(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxTemplateBody)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	for _, key := range mail.TemplateKeys() {
		if _, ok := r.PostForm[key]; !ok {
			continue
		}
		if err := s.composer.SetTemplate(r.Context(), key, r.PostForm.Get(key)); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/?saved=1", http.StatusSeeOther)
}

// handleVerifyStatus returns the current state of the verification limiter.
func (s *Server) handleVerifyStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
