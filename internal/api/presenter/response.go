package presenter

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/service"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id"`
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	// same key the correlation middleware stores the ID under
	id, _ := r.Context().Value("correlation_id").(string)
	JSON(w, r, ErrorResponse{Error: msg, CorrelationID: id}, status)
}

// Err writes err with the status of a wrapped service.HTTPError, or 400.
func Err(w http.ResponseWriter, r *http.Request, err error, short string) {
	Error(w, r, short+": "+err.Error(), service.StatusOf(err, http.StatusBadRequest))
}

// internalErrorPage is rendered when a flow failed without producing a page.
var internalErrorPage = core.ErrorPage{
	Status:  http.StatusInternalServerError,
	Message: http.StatusText(http.StatusInternalServerError),
}

// Page renders the error page of a failed flow. The message is the only detail
// the user gets to see.
func Page(w http.ResponseWriter, r *http.Request, page *core.ErrorPage) {
	if page == nil {
		page = &internalErrorPage
	}
	Error(w, r, page.Message, page.Status)
}
