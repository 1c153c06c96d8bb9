// files.go - File catalog endpoints: list, create, delete.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

type createFileReq struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	S3Key    string `json:"s3Key"`
}

// filesHandler serves /files: GET lists, POST creates metadata for an
// upload the client reports as complete, DELETE removes by id.
func (cfg Config) filesHandler() http.Handler {
	return cfg.Session.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.listFiles(w, r)
		case http.MethodPost:
			cfg.createFile(w, r)
		case http.MethodDelete:
			cfg.deleteFile(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}))
}

func (cfg Config) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := cfg.Catalog.List(r.Context())
	if err != nil {
		log.Printf("service=files msg=%q err=%v", "list_failed", err)
		writeServerError(w, "Failed to load files", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"files": files}, "")
}

// createFile records metadata for an object the client claims to have
// uploaded. The claim is not verified against the store; that trust
// boundary is accepted by design.
func (cfg Config) createFile(w http.ResponseWriter, r *http.Request) {
	var req createFileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Each field fails distinctly so the client can name the culprit.
	if ok, msg := validateFilename(req.Filename); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if ok, msg := validateFileSize(req.Size); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if ok, msg := validateMimeType(req.MimeType); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.S3Key) == "" {
		writeError(w, http.StatusBadRequest, "Invalid S3 key")
		return
	}

	rec, err := cfg.Catalog.Create(r.Context(), FileRecord{
		Filename:   strings.TrimSpace(req.Filename),
		MimeType:   req.MimeType,
		SizeBytes:  req.Size,
		StorageKey: strings.TrimSpace(req.S3Key),
	})
	if err != nil {
		log.Printf("service=files msg=%q err=%v", "create_failed", err)
		writeServerError(w, "Failed to save file metadata", err)
		return
	}

	writeSuccess(w, http.StatusCreated, rec, "File metadata saved successfully")
}

// deleteFile removes a record. The catalog delete is authoritative and
// never blocked by the object store: a dangling catalog record is worse
// than an orphaned object, so a failed storage delete is logged, queued
// for the sweeper, and otherwise swallowed.
func (cfg Config) deleteFile(w http.ResponseWriter, r *http.Request) {
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
		log.Printf("service=files msg=%q id=%s err=%v", "lookup_failed", id, err)
		writeServerError(w, "Failed to delete file", err)
		return
	}

	if cfg.Objects != nil {
		if err := cfg.Objects.Remove(r.Context(), rec.StorageKey); err != nil {
			log.Printf("service=files msg=%q id=%s key=%s err=%v",
				"storage_delete_failed", id, rec.StorageKey, err)
			cfg.queueStorageDelete(r.Context(), rec.StorageKey, err)
		}
	}

	if err := cfg.Catalog.Delete(r.Context(), id); err != nil && !errors.Is(err, ErrFileNotFound) {
		log.Printf("service=files msg=%q id=%s err=%v", "catalog_delete_failed", id, err)
		writeServerError(w, "Failed to delete file", err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "File deleted successfully")
}
