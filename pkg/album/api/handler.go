// Package api exposes the album service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/wedshare/album-backend/pkg/album"
)

// Handler handles the album API endpoints
type Handler struct {
	service        album.Service
	validate       *validator.Validate
	allowedOrigins []string
}

// NewHandler creates a new Handler. allowedOrigins is the CORS allow-list;
// an empty list disables CORS headers entirely.
func NewHandler(service album.Service, allowedOrigins []string) *Handler {
	return &Handler{
		service:        service,
		validate:       validator.New(),
		allowedOrigins: allowedOrigins,
	}
}

// Routes returns the router for the album endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	if len(h.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Post("/upload-url", h.CreateUploadURL)
	r.Get("/ping", h.Ping)
	r.Get("/download", h.ListMedia)
	r.Post("/media", h.SaveMediaMetadata)
	return r
}

// UploadURLRequest represents the request for a presigned upload URL
type UploadURLRequest struct {
	Filename     string `json:"filename" validate:"required"`
	Filetype     string `json:"filetype" validate:"required"`
	Filesize     int64  `json:"filesize" validate:"required,gt=0"`
	Title        string `json:"title,omitempty"`
	UploaderName string `json:"uploader_name,omitempty"`
}

// UploadURLResponse carries the minted write grant back to the client
type UploadURLResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// SaveMediaRequest represents the request to record caption metadata for an
// uploaded object
type SaveMediaRequest struct {
	MediaURL     string `json:"media_url" validate:"required"`
	Title        string `json:"title,omitempty"`
	MediaType    string `json:"media_type,omitempty"`
	UploaderName string `json:"uploader_name,omitempty"`
}

// CreateUploadURL validates the proposed upload and returns a presigned URL
func (h *Handler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode upload-url request", "error", err)
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST",
			"Missing required fields: filename, filetype, and filesize are required")
		return
	}

	grant, err := h.service.IssueUploadURL(r.Context(), album.IssueUploadURLRequest{
		Filename:     req.Filename,
		Filetype:     req.Filetype,
		Filesize:     req.Filesize,
		Title:        req.Title,
		UploaderName: req.UploaderName,
	})
	if err != nil {
		switch {
		case errors.Is(err, album.ErrUnsupportedFileType):
			writeError(w, r, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", err.Error())
		case errors.Is(err, album.ErrFileTooLarge):
			writeError(w, r, http.StatusBadRequest, "FILE_TOO_LARGE", err.Error())
		default:
			slog.Error("Failed to generate upload URL", "error", err)
			writeError(w, r, http.StatusInternalServerError, "UPLOAD_URL_ERROR",
				"Failed to generate upload URL")
		}
		return
	}

	slog.Info("Upload URL issued", "key", grant.Key, "filetype", req.Filetype, "filesize", req.Filesize)
	render.JSON(w, r, UploadURLResponse{URL: grant.URL, Key: grant.Key})
}

// Ping is the liveness endpoint
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListMedia returns one page of the reconciled album listing
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.ListMedia(r.Context(), album.ListMediaRequest{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		slog.Error("Failed to list uploaded files", "error", err)
		writeCodedMessage(w, r, http.StatusInternalServerError, "LIST_FILES_ERROR",
			"Failed to retrieve uploaded files.")
		return
	}

	render.JSON(w, r, result)
}

// SaveMediaMetadata records title/uploader metadata for an uploaded object
func (h *Handler) SaveMediaMetadata(w http.ResponseWriter, r *http.Request) {
	var req SaveMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode media request", "error", err)
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "media_url is required")
		return
	}

	key, err := h.service.SaveMediaMetadata(r.Context(), album.SaveMediaMetadataRequest{
		MediaURL:     req.MediaURL,
		Title:        req.Title,
		MediaType:    req.MediaType,
		UploaderName: req.UploaderName,
	})
	if err != nil {
		if errors.Is(err, album.ErrInvalidReference) {
			writeMessage(w, r, http.StatusBadRequest, "Invalid media_url provided")
			return
		}
		slog.Error("Failed to save media metadata", "error", err)
		writeMessage(w, r, http.StatusInternalServerError, "Failed to save media item metadata")
		return
	}

	slog.Info("Media metadata saved", "key", key)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{
		"message": "Media item metadata saved",
		"key":     key,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{
		"code":  code,
		"error": message,
	})
}

func writeCodedMessage(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{
		"code":    code,
		"message": message,
	})
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{
		"message": message,
	})
}
