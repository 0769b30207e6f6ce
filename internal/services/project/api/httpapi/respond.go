package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/project/domain/engine"
)

// actorHeader optionally names the user issuing a command; it is recorded on events.
const actorHeader = "X-Actor-ID"

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and a human-readable message.
// Status, Reason and Domain mirror the gRPC status and its ErrorInfo detail.
type ErrorDetail struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Status   string            `json:"status,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Domain   string            `json:"domain,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err using its domain code. Errors without a code are
// logged and reported as internal without leaking their text.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code.Kind() == apperrors.KindInternal {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"non_retryable", engine.IsNonRetryable(err),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
			Code:    string(apperrors.CodeInternal),
			Message: "internal error",
		}})
		return
	}
	writeJSON(w, domainErr.Code.HTTPStatus(), ErrorResponse{Error: newErrorDetail(domainErr)})
}

// newErrorDetail renders domainErr through its gRPC status, copying the status
// name and the ErrorInfo detail into the body.
func newErrorDetail(domainErr *apperrors.Error) ErrorDetail {
	detail := ErrorDetail{
		Code:     string(domainErr.Code),
		Message:  domainErr.Message,
		Metadata: domainErr.Metadata,
	}
	st, ok := status.FromError(domainErr.ToGRPCStatus())
	if !ok {
		return detail
	}
	detail.Status = st.Code().String()
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok {
			continue
		}
		detail.Reason = info.GetReason()
		detail.Domain = info.GetDomain()
		if len(info.GetMetadata()) > 0 {
			detail.Metadata = info.GetMetadata()
		}
	}
	return detail
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.New(apperrors.CodeRequestInvalid, "request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.New(apperrors.CodeRequestInvalid, "request body too large")
		}
		return apperrors.Wrap(apperrors.CodeRequestInvalid, "malformed request body", err)
	}
	return nil
}

func encodePayload(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode command payload: %w", err)
	}
	return data, nil
}
