package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
	"github.com/Clark-Hu/movie-lookup/internal/lookup"
)

const maxRequestBody = 1 << 10 // 1 KiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type lookupRequest struct {
	ID string `json:"id"`
}

type lookupEntryResponse struct {
	ID             int64               `json:"id"`
	IMDbID         string              `json:"imdbId"`
	AttemptID      string              `json:"attemptId"`
	State          domain.RequestState `json:"state"`
	FailureKind    domain.FailureKind  `json:"failureKind,omitempty"`
	FailureMessage string              `json:"failureMessage,omitempty"`
	Record         *domain.MovieRecord `json:"record,omitempty"`
	StartedAt      time.Time           `json:"startedAt"`
	ElapsedMillis  int64               `json:"elapsedMs"`
}

type recentLookupsResponse struct {
	Items []lookupEntryResponse `json:"items"`
}

func (s *Server) handleGetLookup(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.lookups.Snapshot())
}

func (s *Server) handleSubmitLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	snap, err := s.lookups.Submit(req.ID)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusAccepted, snap)
	case lookup.Kind(err) == domain.FailureInvalidInput:
		var f *lookup.Failure
		errors.As(err, &f)
		s.respondJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "INVALID_INPUT",
			Message: f.Message,
			Details: snap,
		})
	case errors.Is(err, lookup.ErrClosed):
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Lookups are shutting down")
	default:
		s.logger.Errorw("submit lookup failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start lookup")
	}
}

func (s *Server) handleRecentLookups(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.respondError(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Lookup journal is disabled")
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	entries, err := s.repo.Lookups.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Errorw("list recent lookups failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list lookups")
		return
	}

	items := make([]lookupEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toLookupEntryResponse(entry))
	}
	s.respondJSON(w, http.StatusOK, recentLookupsResponse{Items: items})
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 50 {
		return 0, fmt.Errorf("limit must be an integer between 1 and 50")
	}
	return limit, nil
}

func toLookupEntryResponse(entry domain.LookupEntry) lookupEntryResponse {
	return lookupEntryResponse{
		ID:             entry.ID,
		IMDbID:         entry.IMDbID,
		AttemptID:      entry.AttemptID,
		State:          entry.State,
		FailureKind:    entry.FailureKind,
		FailureMessage: entry.FailureMessage,
		Record:         entry.Record,
		StartedAt:      entry.StartedAt,
		ElapsedMillis:  entry.Elapsed.Milliseconds(),
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Warnw("failed to encode response", "error", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}
