package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// 500 MB; payloads beyond this are rejected before hitting object storage.
const maxUploadBytes = 500 << 20

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	kind := strings.ToLower(strings.TrimSpace(r.FormValue("type")))
	if title == "" || kind == "" {
		writeError(w, http.StatusBadRequest, "Title and type are required")
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Media file is required")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("media/%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(header.Filename)))
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fileURL, err := h.storage.Upload(r.Context(), key, contentType, file)
	if err != nil {
		h.log.WithError(err).Error("Media upload failed")
		writeError(w, http.StatusBadGateway, "Media upload failed")
		return
	}

	asset, err := h.svc.CreateAsset(r.Context(), title, kind, fileURL, key)
	if err != nil {
		// The row failed, so the stored payload is orphaned. Best effort
		// cleanup; a leftover object is invisible without an asset row.
		if delErr := h.storage.Delete(r.Context(), key); delErr != nil {
			h.log.WithError(delErr).Warn("Orphaned upload cleanup failed")
		}
		writeDomainError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"media_id": asset.ID,
		"title":    asset.Title,
		"type":     asset.Kind,
		"size":     header.Size,
	}).Info("Media uploaded")

	writeJSON(w, http.StatusCreated, asset)
}

func (h *Handler) StreamURL(w http.ResponseWriter, r *http.Request) {
	mediaID := mux.Vars(r)["id"]

	grant, err := h.svc.IssueStreamURL(r.Context(), mediaID, clientIP(r), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, grant)
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	mediaID := mux.Vars(r)["id"]
	q := r.URL.Query()

	fileURL, err := h.svc.Stream(r.Context(), mediaID, q.Get("exp"), q.Get("sig"), q.Get("ip"), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	http.Redirect(w, r, fileURL, http.StatusFound)
}

type viewLoggedResponse struct {
	Message   string    `json:"message"`
	MediaID   string    `json:"media_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) LogView(w http.ResponseWriter, r *http.Request) {
	mediaID := mux.Vars(r)["id"]

	entry, err := h.svc.RecordView(r.Context(), mediaID, clientIP(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewLoggedResponse{
		Message:   "View logged successfully",
		MediaID:   entry.MediaID,
		Timestamp: entry.CreatedAt,
	})
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	mediaID := mux.Vars(r)["id"]
	cacheKey := "analytics:" + mediaID

	var cached map[string]interface{}
	if h.cache.Get(r.Context(), cacheKey, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := h.svc.Analytics(r.Context(), mediaID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cache.Set(r.Context(), cacheKey, report, h.cfg.AnalyticsCacheTTL)
	writeJSON(w, http.StatusOK, report)
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
