package handler

import (
	"net/http"
	"slices"
	"strconv"

	"carcompare-api/internal/imagecdn"
	"carcompare-api/internal/model"
)

type ImageHandler struct {
	builder *imagecdn.Builder
}

func NewImageHandler(builder *imagecdn.Builder) *ImageHandler {
	return &ImageHandler{builder: builder}
}

// Resolve returns the CDN image for ?brand=&model=&year=&angle=&color=
func (h *ImageHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	brand, modelName := q.Get("brand"), q.Get("model")
	if brand == "" || modelName == "" {
		writeError(w, http.StatusBadRequest, errInvalidRequest, "parameters 'brand' and 'model' are required")
		return
	}

	year := 0
	if v := q.Get("year"); v != "" {
		var err error
		if year, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, errInvalidRequest, "parameter 'year' must be a number")
			return
		}
	}

	angle := q.Get("angle")
	if angle != "" && !slices.Contains(imagecdn.Angles, angle) {
		writeError(w, http.StatusBadRequest, errInvalidRequest, "unknown angle")
		return
	}

	writeJSON(w, http.StatusOK, model.ImageResponse{
		URL:    h.builder.URL(brand, modelName, year, angle, q.Get("color")),
		Angles: imagecdn.Angles,
	})
}
