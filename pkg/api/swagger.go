package api

import (
	"net/http"

	"github.com/swaggo/swag"
)

// SwaggerHandler serves the registered OpenAPI document as JSON.
func SwaggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			Error(w, http.StatusNotFound, "API documentation not available")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	}
}
