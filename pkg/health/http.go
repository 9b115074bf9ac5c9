package health

import (
	"encoding/json"
	"net/http"

	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// Response is the JSON body served by Handler.
type Response struct {
	Status  string                 `json:"status"`            // "healthy" | "unhealthy"
	Checks  map[string]CheckStatus `json:"checks,omitempty"`  // check name -> status
	Message string                 `json:"message,omitempty"` // optional message
}

// CheckStatus represents the status of an individual check in the HTTP response.
type CheckStatus struct {
	Status  string `json:"status"`            // "ok" | "error"
	Error   string `json:"error,omitempty"`   // error message if status is "error"
	Latency string `json:"latency,omitempty"` // latency in human-readable format
}

// NewResponse converts a report into its JSON form.
func NewResponse(report *Report, err error) Response {
	response := Response{
		Status: "healthy",
		Checks: make(map[string]CheckStatus, len(report.Checks)),
	}
	if !report.Healthy {
		response.Status = "unhealthy"
		if err != nil {
			response.Message = err.Error()
		}
	}

	for _, r := range report.Checks {
		cs := CheckStatus{Status: "ok", Latency: r.Latency.String()}
		if !r.Healthy {
			cs.Status = "error"
			cs.Error = r.Error
		}
		response.Checks[r.Name] = cs
	}
	return response
}

// Handler serves the result of a fresh Run on each request.
// Returns 200 OK when every check passes, 503 Service Unavailable otherwise.
func (h *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := h.Run(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if err := json.NewEncoder(w).Encode(NewResponse(report, err)); err != nil {
			h.logger.Error("Failed to encode health response", logger.ErrorField(err))
		}
	}
}
