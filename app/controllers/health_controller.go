package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/sdscatalog/pkg/response"
)

// Healthcheck handles GET /api/v1/healthcheck.
func Healthcheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
