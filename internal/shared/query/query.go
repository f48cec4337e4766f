// Package query parses list parameters and builds the paginated response envelope.
package query

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const (
	DefaultSize = 20
	MaxSize     = 50
	// MaxPage keeps Page*MaxSize well inside int range on every platform.
	MaxPage = math.MaxInt32 / MaxSize
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Sort is a field plus direction.
type Sort struct {
	Field     string
	Direction Direction
}

// String renders the sort as "field,DIR".
func (s Sort) String() string {
	return s.Field + "," + string(s.Direction)
}

// Descending reports whether the sort is DESC.
func (s Sort) Descending() bool { return s.Direction != Asc }

// Request is a validated page request.
type Request struct {
	Page int
	Size int
	Sort Sort
}

// Offset returns the number of rows to skip. It is never negative.
func (r Request) Offset() int {
	if r.Page <= 0 || r.Size <= 0 {
		return 0
	}
	return min(r.Page, MaxPage) * min(r.Size, MaxSize)
}

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	Content       []T    `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	Sort          string `json:"sort"`
}

// NewPage builds the envelope. Content is never nil.
func NewPage[T any](content []T, req Request, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.Size)))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Sort:          req.Sort.String(),
	}
}

// MapPage converts page content while keeping paging metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		content = append(content, fn(item))
	}
	return Page[U]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Sort:          p.Sort,
	}
}

// Parse reads page, size and sort. Page is floored at 0 and rejected above MaxPage; size is clamped to [1, MaxSize].
// A sort field outside allowed falls back to def's field; any direction other than ASC means DESC.
func Parse(values url.Values, allowed []string, def Sort) (Request, error) {
	req := Request{Page: 0, Size: DefaultSize, Sort: def}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Request{}, failure.InvalidQuery("invalid query parameter", map[string]string{"page": "page must be integer"})
		}
		if page > MaxPage {
			return Request{}, failure.InvalidQuery("invalid query parameter", map[string]string{"page": "page must be at most " + strconv.Itoa(MaxPage)})
		}
		req.Page = max(page, 0)
	}
	if raw := strings.TrimSpace(values.Get("size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return Request{}, failure.InvalidQuery("invalid query parameter", map[string]string{"size": "size must be integer"})
		}
		req.Size = min(max(size, 1), MaxSize)
	}
	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		field, dir, _ := strings.Cut(raw, ",")
		field = strings.TrimSpace(field)
		if !slices.Contains(allowed, field) {
			field = def.Field
		}
		direction := Desc
		if strings.EqualFold(strings.TrimSpace(dir), string(Asc)) {
			direction = Asc
		}
		req.Sort = Sort{Field: field, Direction: direction}
	}
	return req, nil
}

// Int64 parses an optional integer parameter.
func Int64(values url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, failure.InvalidQuery("invalid query parameter", map[string]string{key: key + " must be integer"})
	}
	return &v, nil
}

// Bool parses an optional true/false parameter.
func Bool(values url.Values, key string) (*bool, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	switch strings.ToLower(raw) {
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	}
	return nil, failure.InvalidQuery("invalid query parameter", map[string]string{key: key + " must be true/false"})
}

// Time parses an optional RFC 3339 timestamp or YYYY-MM-DD date parameter.
func Time(values url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return nil, failure.InvalidQuery("invalid query parameter", map[string]string{key: key + " must be ISO date"})
	}
	return &t, nil
}

// String returns the trimmed parameter or nil when absent.
func String(values url.Values, key string) *string {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	return &raw
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseTimestamp accepts RFC 3339, a zone-less datetime (UTC) or a bare date (UTC midnight).
func ParseTimestamp(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, strings.TrimSpace(raw))
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
