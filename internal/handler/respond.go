package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/nevtar/ordercore/internal/access"
	"github.com/nevtar/ordercore/internal/domain/order"
	"github.com/nevtar/ordercore/internal/domain/product"
	"github.com/nevtar/ordercore/internal/domain/user"
)

// maxBodyBytes bounds request bodies; the API carries small JSON documents.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError maps domain errors to HTTP status codes. Hard validation
// failures surface as 422; lookups as 404; conflicts as 409; policy denials
// as 403. Anything unrecognized is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *order.ValidationError
		tErr *order.InvalidTransitionError
		dErr *access.DeniedError
	)

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: vErr.Error()})
	case errors.Is(err, user.ErrEmailRequired),
		errors.Is(err, user.ErrEmailInvalid),
		errors.Is(err, user.ErrPasswordRequired):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.As(err, &tErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: tErr.Error()})
	case errors.Is(err, product.ErrInUse), errors.Is(err, user.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &dErr):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: dErr.Error()})
	case errors.Is(err, user.ErrBadCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
