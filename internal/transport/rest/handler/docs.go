package handler

import (
	"net/http"

	"github.com/swaggo/swag"
)

// Docs handles GET /v1/docs/doc.json with the registered OpenAPI document.
func Docs(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api docs not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}
