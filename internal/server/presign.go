// presign.go - Upload broker: presigned PUT and GET URL issuance.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// presignExpiry is the validity window of issued URLs, enforced by the
// object store itself.
const presignExpiry = time.Hour

type presignUploadReq struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     *int64 `json:"size,omitempty"`
}

// newStorageKey builds a time-prefixed key from the sanitized filename.
// The prefix avoids collisions between same-named uploads; sanitization
// keeps traversal sequences out of the store.
func newStorageKey(filename string) string {
	return fmt.Sprintf("uploads/%d-%s", time.Now().UnixMilli(), sanitizeFilename(filename))
}

// presignUploadHandler handles POST /files/presign-upload. The broker
// validates the declared metadata and hands back a presigned PUT URL;
// it never verifies that the eventual upload matches the declaration.
func (cfg Config) presignUploadHandler() http.Handler {
	return cfg.Session.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if cfg.Objects == nil {
			writeServerError(w, "Object storage is not configured", nil)
			return
		}

		var req presignUploadReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if ok, msg := validateFilename(req.Filename); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if ok, msg := validateMimeType(req.MimeType); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if req.Size != nil {
			if ok, msg := validateFileSize(*req.Size); !ok {
				writeError(w, http.StatusBadRequest, msg)
				return
			}
		}

		key := newStorageKey(req.Filename)
		url, err := cfg.Objects.PresignPut(r.Context(), key, presignExpiry)
		if err != nil {
			log.Printf("service=presign msg=%q key=%s err=%v", "presign_put_failed", key, err)
			writeServerError(w, "Failed to create upload URL", err)
			return
		}

		writeSuccess(w, http.StatusOK, map[string]string{
			"url": url,
			"key": key,
		}, "Upload URL created successfully")
	}))
}

// downloadURLHandler handles GET /files/download-url?id=. The returned
// URL forces a content-disposition of attachment with the original
// filename.
func (cfg Config) downloadURLHandler() http.Handler {
	return cfg.Session.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if cfg.Objects == nil {
			writeServerError(w, "Object storage is not configured", nil)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "File ID is required")
			return
		}
		if ok, msg := validateFileID(id); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		rec, err := cfg.Catalog.Get(r.Context(), id)
		if errors.Is(err, ErrFileNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		if err != nil {
			log.Printf("service=presign msg=%q id=%s err=%v", "lookup_failed", id, err)
			writeServerError(w, "Failed to create download URL", err)
			return
		}

		url, err := cfg.Objects.PresignGet(r.Context(), rec.StorageKey, rec.Filename, presignExpiry)
		if err != nil {
			log.Printf("service=presign msg=%q id=%s err=%v", "presign_get_failed", id, err)
			writeServerError(w, "Failed to create download URL", err)
			return
		}

		writeSuccess(w, http.StatusOK, map[string]string{"url": url}, "Download URL created successfully")
	}))
}
