package query

import (
	"math"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

var defaultSort = Sort{Field: "requestedAt", Direction: Desc}

func TestParseDefaults(t *testing.T) {
	req, err := Parse(url.Values{}, []string{"requestedAt", "createdAt"}, defaultSort)
	require.NoError(t, err)
	require.Equal(t, 0, req.Page)
	require.Equal(t, DefaultSize, req.Size)
	require.Equal(t, "requestedAt,DESC", req.Sort.String())
	require.Equal(t, 0, req.Offset())
}

func TestParseClampsAndFallsBack(t *testing.T) {
	values := url.Values{"page": {"-3"}, "size": {"500"}, "sort": {"password,asc"}}
	req, err := Parse(values, []string{"requestedAt", "createdAt"}, defaultSort)
	require.NoError(t, err)
	require.Equal(t, 0, req.Page)
	require.Equal(t, MaxSize, req.Size)
	require.Equal(t, Sort{Field: "requestedAt", Direction: Asc}, req.Sort)

	req, err = Parse(url.Values{"size": {"0"}, "page": {"2"}, "sort": {"createdAt"}}, []string{"createdAt"}, defaultSort)
	require.NoError(t, err)
	require.Equal(t, 1, req.Size)
	require.Equal(t, 2, req.Offset())
	require.True(t, req.Sort.Descending())
}

func TestParseRejectsNonNumeric(t *testing.T) {
	_, err := Parse(url.Values{"page": {"abc"}}, nil, defaultSort)
	require.ErrorIs(t, err, failure.ErrInvalidQuery)

	_, err = Parse(url.Values{"size": {"1.5"}}, nil, defaultSort)
	require.ErrorIs(t, err, failure.ErrInvalidQuery)
}

func TestParseRejectsPageBeyondBound(t *testing.T) {
	_, err := Parse(url.Values{"page": {"4611686018427387904"}, "size": {"50"}}, nil, defaultSort)
	require.ErrorIs(t, err, failure.ErrInvalidQuery)

	req, err := Parse(url.Values{"page": {strconv.Itoa(MaxPage)}, "size": {"50"}}, nil, defaultSort)
	require.NoError(t, err)
	require.Positive(t, req.Offset())
}

func TestOffsetNeverNegative(t *testing.T) {
	require.Zero(t, Request{Page: -1, Size: 20}.Offset())
	require.Zero(t, Request{Page: 3, Size: 0}.Offset())
	require.Equal(t, MaxPage*MaxSize, Request{Page: math.MaxInt, Size: math.MaxInt}.Offset())
}

func TestNewPageComputesTotals(t *testing.T) {
	req := Request{Page: 1, Size: 20, Sort: defaultSort}
	page := NewPage([]int{1, 2}, req, 41)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, int64(41), page.TotalElements)
	require.Equal(t, "requestedAt,DESC", page.Sort)

	empty := NewPage[int](nil, req, 0)
	require.NotNil(t, empty.Content)
	require.Zero(t, empty.TotalPages)

	mapped := MapPage(page, func(v int) string { return string(rune('a' + v)) })
	require.Equal(t, []string{"b", "c"}, mapped.Content)
	require.Equal(t, page.TotalPages, mapped.TotalPages)
}

func TestTypedParameters(t *testing.T) {
	values := url.Values{
		"animalId": {"12"},
		"bad":      {"x"},
		"flag":     {"TRUE"},
		"from":     {"2024-01-10"},
		"to":       {"2024-01-31T10:00:00Z"},
		"keyword":  {"  kim "},
	}

	id, err := Int64(values, "animalId")
	require.NoError(t, err)
	require.Equal(t, int64(12), *id)

	_, err = Int64(values, "bad")
	require.ErrorIs(t, err, failure.ErrInvalidQuery)

	missing, err := Int64(values, "missing")
	require.NoError(t, err)
	require.Nil(t, missing)

	flag, err := Bool(values, "flag")
	require.NoError(t, err)
	require.True(t, *flag)

	_, err = Bool(values, "bad")
	require.ErrorIs(t, err, failure.ErrInvalidQuery)

	from, err := Time(values, "from")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), *from)

	to, err := Time(values, "to")
	require.NoError(t, err)
	require.Equal(t, 10, to.Hour())

	_, err = Time(values, "bad")
	require.ErrorIs(t, err, failure.ErrInvalidQuery)

	require.Equal(t, "kim", *String(values, "keyword"))
	require.Nil(t, String(values, "missing"))
}
