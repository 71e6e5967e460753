package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"digilib-backend-go/internal/services"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Success: false, Message: message})
}

// writeServiceError translates service failures to the envelope. Unexpected
// errors are logged here and surfaced as a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if svcErr, ok := services.AsServiceError(err); ok {
		if svcErr.Status >= 500 {
			log.Printf("internal error: %v", err)
		}
		WriteError(w, svcErr.Status, svcErr.Message)
		return
	}
	log.Printf("internal error: %v", err)
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
