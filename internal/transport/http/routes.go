package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"study-companion/internal/app"
	"study-companion/internal/domain"
)

// multipartSlack covers form overhead on top of the document size limit.
const multipartSlack = 1 << 20

// API serves the REST side: uploads, history, question sets and scoring.
type API struct {
	study    *app.StudyService
	uploads  *app.UploadService
	maxBytes int64
	logger   logrus.FieldLogger
}

func NewAPI(study *app.StudyService, uploads *app.UploadService, maxBytes int64, logger logrus.FieldLogger) *API {
	if maxBytes <= 0 {
		maxBytes = app.DefaultMaxDocumentBytes
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &API{study: study, uploads: uploads, maxBytes: maxBytes, logger: logger}
}

// NewRouter mounts the REST API and the websocket endpoint.
func NewRouter(api *API, ws *WSHandler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/uploads", func(r chi.Router) {
		r.Post("/", api.Upload)
		r.Get("/", api.History)
		r.Delete("/{id}", api.DeleteHistory)
	})
	r.Route("/question-sets/{id}", func(r chi.Router) {
		r.Get("/", api.QuestionSet)
		r.Post("/score", api.Score)
	})
	return r
}

// Upload accepts multipart field "file" and returns the generated question set.
func (a *API) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBytes+multipartSlack)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.writeError(w, r, domain.ErrDocumentTooLarge)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "missing file"})
		return
	}
	defer file.Close()

	result, err := a.uploads.Generate(r.Context(), domain.Document{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (a *API) History(w http.ResponseWriter, r *http.Request) {
	entries, err := a.uploads.History(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := a.uploads.DeleteHistory(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) QuestionSet(w http.ResponseWriter, r *http.Request) {
	set, err := a.study.QuestionSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

type scoreRequest struct {
	Selections []domain.Selection `json:"userSelection"`
}

type scoreResponse struct {
	domain.ScoreSummary
	Message        string `json:"message"`
	MasteryPercent int    `json:"masteryPercent"`
}

// Score grades a selection list against a stored question set.
func (a *API) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return
	}
	summary, err := a.study.Score(r.Context(), chi.URLParam(r, "id"), req.Selections)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		ScoreSummary:   summary,
		Message:        summary.Tier.Message(),
		MasteryPercent: summary.MasteryPercent(),
	})
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuestionSetNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrHistoryEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNoFlashcards):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGenerationFailed),
		errors.Is(err, domain.ErrMalformedQuestionSet):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
