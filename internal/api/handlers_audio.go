package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/RobinCoderZhao/newsninja/internal/logging"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/audio"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/pipeline"
)

const maxRequestBytes = 1 << 20

func (s *Server) handleGenerateAudio() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		generate := s.gen.Generate
		if s.opts.Fallback {
			generate = s.gen.GenerateFallback
		}

		res, err := generate(r.Context(), req)
		if err != nil {
			status, detail := errorResponse(err)
			logging.FromContext(r.Context(), s.logger).Error("generate audio failed", "status", status, "error", err)
			respondError(w, status, detail)
			return
		}

		w.Header().Set("Content-Type", res.MediaType)
		w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Audio)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Audio)
	}
}

// errorResponse maps pipeline errors to a status code and client-facing detail.
func errorResponse(err error) (int, string) {
	var cfgErr *pipeline.ConfigMissingError
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, cfgErr.Error()
	case errors.Is(err, pipeline.ErrNoDataAvailable):
		return http.StatusInternalServerError, "No data sources available"
	case errors.Is(err, pipeline.ErrScriptTooShort):
		return http.StatusInternalServerError, "Failed to generate meaningful content"
	case errors.Is(err, audio.ErrAudioGenerationFailed):
		return http.StatusInternalServerError, "Both audio services failed"
	default:
		return http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err)
	}
}
