package utils

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// GetPathParam extracts a path parameter using Go 1.22+ ServeMux patterns.
func GetPathParam(r *http.Request, param string) string {
	return r.PathValue(param)
}

// GetPathParamInt extracts a path parameter and converts it to int.
func GetPathParamInt(r *http.Request, param string) (int, error) {
	return strconv.Atoi(r.PathValue(param))
}

// GetQueryParam gets a query parameter with a default value.
func GetQueryParam(r *http.Request, param, defaultValue string) string {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetQueryParamInt gets a query parameter as int with a default value.
func GetQueryParamInt(r *http.Request, param string, defaultValue int) int {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// RespondJSON sends a JSON response.
func RespondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// RespondError sends a JSON error response with a message body.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, map[string]string{"message": message}, statusCode)
}
