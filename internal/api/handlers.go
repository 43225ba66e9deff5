// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/pdiddy/casemap/internal/outline"
	"github.com/pdiddy/casemap/internal/xmind"
	"github.com/pdiddy/casemap/pkg/types"
)

// ContentTypeXMind is the media type of .xmind archives.
const ContentTypeXMind = "application/vnd.xmind.workbook"

type errorResponse struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
}

// handleOutline converts the outline in the request body. The optional
// title query parameter names the map and the attachment; indent overrides
// the configured convention.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	cfg := s.cfg.MindMap.Outline
	if v := r.URL.Query().Get("indent"); v != "" {
		cfg.Indent = types.IndentStyle(v)
	}

	tree, err := outline.Parse(bytes.NewReader(data), cfg)
	if err != nil {
		var malformed *outline.MalformedOutlineError
		switch {
		case errors.As(err, &malformed):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Line: malformed.Line})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}

	title := xmind.SanitizeTitle(r.URL.Query().Get("title"))
	archive, err := xmind.Bytes(tree, xmind.Options{Title: title, EmitJSON: s.cfg.MindMap.EmitJSON})
	if err != nil {
		s.log.Error("encoding archive failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "encoding archive failed"})
		return
	}

	w.Header().Set("Content-Type", ContentTypeXMind)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": title + ".xmind"}))
	w.Header().Set("X-Casemap-Topics", strconv.Itoa(tree.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(archive)
}

// handleInspect summarizes an uploaded archive.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	summary, err := xmind.InspectBytes(data)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// readBody reads the request body under the configured size cap. It writes
// the error response itself and reports false when the caller must stop.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if limit := s.cfg.Server.MaxBodyBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reading request body: " + err.Error()})
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
