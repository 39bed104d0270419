package http

import (
	"net/http"
	"strconv"
	"time"

	"agendly/pkg/config"
	apperrors "agendly/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractTimeRange parses optional RFC3339 from/to query parameters.
func ExtractTimeRange(r *http.Request) (*time.Time, *time.Time, error) {
	query := r.URL.Query()

	var from, to *time.Time
	if s := query.Get("from"); s != "" {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("invalid from parameter, expected RFC3339: " + s)
		}
		from = &v
	}
	if s := query.Get("to"); s != "" {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("invalid to parameter, expected RFC3339: " + s)
		}
		to = &v
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, apperrors.InvalidInput("from must be before to")
	}

	return from, to, nil
}
