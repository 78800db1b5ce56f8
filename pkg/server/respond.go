package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/observability"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    herrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError responds with the error envelope. Messages of internal errors
// are not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := herrors.HTTPStatus(err)
	detail := errorDetail{Code: herrors.GetCode(err), Message: herrors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		detail = errorDetail{Code: herrors.ErrCodeInternal, Message: "internal error"}
	}
	writeJSON(w, status, errorBody{Error: detail})
}

// decodeJSON reads a single JSON document from the body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return herrors.New(herrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return herrors.New(herrors.ErrCodeInvalidInput, "request body is empty")
		default:
			return herrors.Wrap(herrors.ErrCodeInvalidInput, err, "decode request")
		}
	}
	if dec.More() {
		return herrors.New(herrors.ErrCodeInvalidInput, "request body has trailing data")
	}
	return nil
}

func notFoundError(r *http.Request) error {
	return herrors.New(herrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}
