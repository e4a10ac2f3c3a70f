package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/rostercheck/internal/core"
	"github.com/JonMunkholm/rostercheck/internal/logging"
	"github.com/JonMunkholm/rostercheck/internal/web/templates"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

// VerifyResponse is the JSON report of a verification run.
type VerifyResponse struct {
	*core.VerifyResult
	DurationMS int64 `json:"durationMs"`
}

// handleVerify runs a verification and renders the report page, or the
// JSON report when the client asks for JSON.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	result, ok := s.verify(w, r)
	if !ok {
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, VerifyResponse{VerifyResult: result, DurationMS: result.Duration.Milliseconds()})
		return
	}

	links, err := s.composer.Links(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Report(templates.ReportData{Result: result, Links: links}).Render(r.Context(), w)
}

// handleVerifyAPI runs a verification and returns the JSON report.
func (s *Server) handleVerifyAPI(w http.ResponseWriter, r *http.Request) {
	result, ok := s.verify(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{VerifyResult: result, DurationMS: result.Duration.Milliseconds()})
}

// verify reads the three uploaded files and runs the service. On failure
// it has already written the error response.
func (s *Server) verify(w http.ResponseWriter, r *http.Request) (*core.VerifyResult, bool) {
	maxSize := s.cfg.Verify.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, 3*maxSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: request exceeds %d bytes", errFileTooLarge, tooLarge.Limit))
			return nil, false
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	files := make(map[string]io.Reader, 3)
	for _, key := range []string{core.SourceRegistrations, core.SourceStudents, core.SourceCourses} {
		f, err := openUpload(r, key, maxSize)
		if err != nil {
			s.respondError(w, r, err)
			return nil, false
		}
		defer f.Close()
		files[key] = f
	}

	logging.FromContext(r.Context()).Debug("verification files received",
		"registrations", r.MultipartForm.File[core.SourceRegistrations][0].Filename,
		"students", r.MultipartForm.File[core.SourceStudents][0].Filename,
		"courses", r.MultipartForm.File[core.SourceCourses][0].Filename,
	)

	result, err := s.service.Verify(r.Context(), core.VerifyInput{
		Registrations: files[core.SourceRegistrations],
		Students:      files[core.SourceStudents],
		Courses:       files[core.SourceCourses],
	})
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return result, true
}

// openUpload opens the form file named key, enforcing the per-file size limit.
func openUpload(r *http.Request, key string, maxSize int64) (multipart.File, error) {
	f, header, err := r.FormFile(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errNoFile, key)
	}
	if header.Size > maxSize {
		f.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", errFileTooLarge, key, header.Size, maxSize)
	}
	return f, nil
}
