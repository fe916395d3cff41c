package http

import (
	"encoding/json"
	"net/http"

	"exam-drill-service/internal/exam"
)

// CatalogHandler serves the exam patterns a quiz can be requested for.
func CatalogHandler(catalog *exam.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalog.Patterns())
	}
}
