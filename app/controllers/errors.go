package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/sdscatalog/app/services"
	"github.com/shashiranjanraj/sdscatalog/config"
	"github.com/shashiranjanraj/sdscatalog/pkg/bind"
	"github.com/shashiranjanraj/sdscatalog/pkg/latex"
	"github.com/shashiranjanraj/sdscatalog/pkg/logger"
	"github.com/shashiranjanraj/sdscatalog/pkg/response"
)

// statusClientClosedRequest is logged when the caller went away mid-request.
const statusClientClosedRequest = 499

// RetryAfter is advertised on 503 responses when every render slot is busy.
var RetryAfter = 5 * time.Second

// respondError maps a service error onto the HTTP response. Every handler
// goes through here so the status table lives in one place.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.WithCtx(r.Context())
	kind := services.Kind(err)

	switch kind {
	case "validation":
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	case "missing_reference":
		response.Error(w, http.StatusNotFound, err.Error())
	case "busy":
		log.Warn("request rejected, render pool full")
		response.Unavailable(w, RetryAfter, "Server is busy, retry later")
	case "render_failure":
		log.Error("cover render failed", "error", err)
		var details interface{}
		var ce *latex.CompileError
		if config.Debug() && errors.As(err, &ce) {
			details = map[string]string{"compiler_output": string(ce.Output)}
		}
		response.Fail(w, http.StatusInternalServerError, "Cover sheet could not be rendered", details)
	case "fetch_failure":
		log.Error("source document fetch failed", "error", err)
		response.Error(w, http.StatusBadGateway, "A source document could not be retrieved")
	case "invalid_document":
		log.Error("source document is corrupt", "error", err)
		response.Error(w, http.StatusInternalServerError, "A stored document is not a valid PDF")
	case "extract_failure":
		log.Error("sds extraction failed", "error", err)
		response.Error(w, http.StatusBadGateway, "The document could not be parsed")
	case "cancelled":
		if errors.Is(err, context.DeadlineExceeded) {
			response.Error(w, http.StatusGatewayTimeout, "Request timed out")
			return
		}
		log.Info("request cancelled by client")
		w.WriteHeader(statusClientClosedRequest)
	default:
		log.Error("request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// respondBindError answers a body that could not be decoded.
func respondBindError(w http.ResponseWriter, err error) {
	if errors.Is(err, bind.ErrBodyTooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	response.Error(w, http.StatusBadRequest, err.Error())
}
