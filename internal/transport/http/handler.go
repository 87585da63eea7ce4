package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quiz-proctor-service/internal/app"
	"quiz-proctor-service/internal/domain"
	"quiz-proctor-service/internal/export"
)

// Uploaded definitions are small JSON documents; anything bigger is
// either a mistake or abuse.
const maxUploadBytes = 1 << 20

// Handler exposes the session core over REST. Participants poll
// /api/status for phase changes; there is no push channel.
type Handler struct {
	service *app.Service
	logger  *slog.Logger
}

func NewHandler(service *app.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.handleStatus)
		r.Get("/quiz", h.handleGetQuiz)
		r.Post("/quiz/upload", h.handleUpload)
		r.Post("/quiz/start", h.handleStart)
		r.Post("/quiz/advance", h.handleAdvance)
		r.Post("/quiz/reset", h.handleReset)
		r.Get("/clients", h.handleClients)
		r.Post("/client/connect", h.handleConnect)
		r.Post("/client/submit", h.handleSubmit)
		r.Get("/results", h.handleResults)
		r.Get("/results/download", h.handleDownload)
	})
	return r
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Status())
}

func (h *Handler) handleGetQuiz(w http.ResponseWriter, _ *http.Request) {
	def, ok := h.service.Definition()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrNoQuizLoaded.Error())
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing quiz file in upload")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read quiz file")
		return
	}

	def, err := h.service.Upload(r.Context(), raw)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Quiz uploaded successfully",
		"quizTitle":      def.Title,
		"totalQuestions": len(def.Questions),
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, _ *http.Request) {
	if err := h.service.Start(); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz started successfully"})
}

func (h *Handler) handleAdvance(w http.ResponseWriter, _ *http.Request) {
	index, err := h.service.Advance()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Advanced to next question",
		"currentQuestion": index,
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, _ *http.Request) {
	h.service.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz reset successfully"})
}

func (h *Handler) handleClients(w http.ResponseWriter, _ *http.Request) {
	clients := h.service.Participants()
	writeJSON(w, http.StatusOK, map[string]any{
		"totalClients": len(clients),
		"clients":      clients,
	})
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	// The connect body is optional; clients may POST nothing at all.
	_ = readJSON(r, &req)
	writeJSON(w, http.StatusOK, h.service.Connect(req.Name))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID string `json:"clientId"`
		Answers  []any  `json:"answers"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := h.service.Submit(req.ClientID, req.Answers)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleResults(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"results": h.service.Results()})
}

func (h *Handler) handleDownload(w http.ResponseWriter, _ *http.Request) {
	data, err := export.Results(h.service.Results())
	if errors.Is(err, domain.ErrNoResults) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("export failed: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="quiz-results.xlsx"`)
	w.Write(data)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, domain.ErrNoQuizLoaded),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrNoResults):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQuizInProgress),
		errors.Is(err, domain.ErrSessionBusy),
		errors.Is(err, domain.ErrQuizNotActive):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
