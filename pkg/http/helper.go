package http

import (
	"net/http"
	"strconv"

	"github.com/Developer-Square/Park254-Backend/pkg/config"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"
)

// ExtractPageOptions reads sortBy, limit and page from the query string.
func ExtractPageOptions(r *http.Request) (model.PageOptions, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return model.PageOptions{}, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	page := 0
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return model.PageOptions{}, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	return model.PageOptions{
		SortBy: query.Get("sortBy"),
		Limit:  config.NormalizePaginationLimit(limit),
		Page:   config.NormalizePage(page),
	}, nil
}

// OptionalBool parses a query flag. An absent flag yields nil.
func OptionalBool(r *http.Request, key string) (*bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return &v, nil
}

// OptionalFloat parses a numeric query parameter, falling back when absent.
func OptionalFloat(r *http.Request, key string, fallback float64) (float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return v, nil
}
