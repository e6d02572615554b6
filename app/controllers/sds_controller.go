package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/sdscatalog/app/resources"
	"github.com/shashiranjanraj/sdscatalog/app/services"
	"github.com/shashiranjanraj/sdscatalog/pkg/bind"
	"github.com/shashiranjanraj/sdscatalog/pkg/response"
)

// SdsController serves the sheet catalog.
type SdsController struct {
	catalog *services.SdsService
}

func NewSdsController(catalog *services.SdsService) *SdsController {
	return &SdsController{catalog: catalog}
}

// Upload handles POST /api/v1/sds with a multipart "file" field.
func (c *SdsController) Upload(w http.ResponseWriter, r *http.Request) {
	name, pdf, err := bind.Upload(w, r, "file")
	if err != nil {
		respondBindError(w, err)
		return
	}

	sheet, err := c.catalog.Upload(r.Context(), name, pdf)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, resources.NewSdsResource(sheet))
}

// Show handles GET /api/v1/sds/{id}.
func (c *SdsController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		response.ValidationError(w, map[string]string{"id": "The id must be a positive integer."})
		return
	}

	sheet, err := c.catalog.Get(r.Context(), id)
	if err != nil {
		if services.IsNotFound(err) {
			response.NotFound(w)
			return
		}
		respondError(w, r, err)
		return
	}
	response.Success(w, resources.NewSdsResource(sheet))
}

// Batch handles GET /api/v1/sds/batch?sds_ids=1&sds_ids=2. Comma-separated
// lists are accepted too.
func (c *SdsController) Batch(w http.ResponseWriter, r *http.Request) {
	var ids []uint
	for _, raw := range r.URL.Query()["sds_ids"] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				response.ValidationError(w, map[string]string{"sds_ids": "Every sds id must be a positive integer."})
				return
			}
			ids = append(ids, id)
		}
	}

	sheets, err := c.catalog.Batch(r.Context(), ids)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, resources.NewSdsCollection(sheets))
}

// Search handles GET /api/v1/sds/search?query=acet&limit=20.
func (c *SdsController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.ValidationError(w, map[string]string{"limit": "The limit must be a positive integer."})
			return
		}
		limit = n
	}

	sheets, err := c.catalog.Search(r.Context(), q.Get("query"), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, resources.NewSdsCollection(sheets))
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, strconv.ErrRange
	}
	return uint(n), nil
}
