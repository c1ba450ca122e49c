package query

import (
	"testing"
	"time"

	"github.com/davicafu/scopequery/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDateTime struct{ t time.Time }

func (f fakeDateTime) Time() time.Time { return f.t }

func TestNormalizeTimestamp(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)
	ref := time.Date(2024, 3, 5, 10, 30, 15, 123456789, time.UTC)
	refPtr := ref

	tests := []struct {
		name     string
		input    any
		expected string
		present  bool
	}{
		{name: "time.Time en UTC", input: ref, expected: "2024-03-05T10:30:15.123Z", present: true},
		{name: "time.Time con zona", input: time.Date(2024, 3, 5, 12, 30, 15, 0, madrid), expected: "2024-03-05T10:30:15.000Z", present: true},
		{name: "puntero a time.Time", input: &refPtr, expected: "2024-03-05T10:30:15.123Z", present: true},
		{name: "puntero nil", input: (*time.Time)(nil), present: false},
		{name: "nil", input: nil, present: false},
		{name: "string RFC3339", input: "2024-03-05T12:30:15+02:00", expected: "2024-03-05T10:30:15.000Z", present: true},
		{name: "string RFC3339Nano", input: "2024-03-05T10:30:15.987654321Z", expected: "2024-03-05T10:30:15.987Z", present: true},
		{name: "string estilo sqlite", input: "2024-03-05 10:30:15", expected: "2024-03-05T10:30:15.000Z", present: true},
		{name: "string estilo postgres con zona", input: "2024-03-05 10:30:15.5+00:00", expected: "2024-03-05T10:30:15.500Z", present: true},
		{name: "solo fecha", input: "2024-03-05", expected: "2024-03-05T00:00:00.000Z", present: true},
		{name: "bytes", input: []byte("2024-03-05T10:30:15Z"), expected: "2024-03-05T10:30:15.000Z", present: true},
		{name: "segundos unix", input: int64(0), expected: "1970-01-01T00:00:00.000Z", present: true},
		{name: "tipo con Time()", input: fakeDateTime{t: ref}, expected: "2024-03-05T10:30:15.123Z", present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := NormalizeTimestamp(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeTimestamp_Invalido(t *testing.T) {
	_, _, err := NormalizeTimestamp("ayer por la tarde")
	assert.Error(t, err)

	_, _, err = NormalizeTimestamp(3.14)
	assert.Error(t, err)
}

func TestNormalizeTimestamp_RoundTrip(t *testing.T) {
	canonical := "2023-12-31T23:59:59.999Z"

	parsed, err := ParseTimestamp(canonical)
	require.NoError(t, err)
	assert.Equal(t, canonical, FormatTimestamp(parsed))
}

func TestParseBound(t *testing.T) {
	got, err := ParseBound("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseBound("no es una fecha")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = ParseBound(nil)
	assert.Error(t, err)
}
