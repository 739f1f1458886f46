package mongo

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrInvalidSort is returned for a sortBy naming an unknown field or order.
var ErrInvalidSort = errors.New("invalid sortBy")

// ParseSort turns "field:asc,other:desc" into a sort document. Field names
// are mapped through fields, which holds the accepted API names. An empty
// sortBy falls back to fallback.
func ParseSort(sortBy string, fields map[string]string, fallback string) (bson.D, error) {
	if strings.TrimSpace(sortBy) == "" {
		sortBy = fallback
	}

	var sort bson.D
	for _, part := range strings.Split(sortBy, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, order, _ := strings.Cut(part, ":")
		field, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, name)
		}
		direction := 1
		switch strings.ToLower(order) {
		case "", "asc":
		case "desc":
			direction = -1
		default:
			return nil, fmt.Errorf("%w: unknown order %q", ErrInvalidSort, order)
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	if len(sort) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, sortBy)
	}
	return sort, nil
}
