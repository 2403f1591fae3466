package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code protocol.ErrorCode, message, detail string) {
	writeJSON(w, status, protocol.ErrorResponse{Error: message, Code: code, Detail: detail})
}

var errEmptyBody = errors.New("empty request body")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}
