package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmeet/calmeet/internal/classify"
)

func intPtr(n int64) *int64 { return &n }

func eventSchema() *Schema {
	return &Schema{
		Fields: []Field{
			{Name: "summary", Type: TypeString, Required: true},
			{Name: "start_time", Type: TypeTimestamp, Required: true},
			{Name: "end_time", Type: TypeTimestamp, Required: true},
			{Name: "calendar_id", Type: TypeString, Default: "primary"},
			{Name: "attendees", Type: TypeStringList},
			{Name: "max_results", Type: TypeInt, Default: int64(10), Min: intPtr(1), Max: intPtr(2500)},
			{Name: "visibility", Type: TypeEnum, Enum: []string{"default", "public", "private"}, Default: "default"},
		},
		Rules: []Rule{EndAfterStart("start_time", "end_time")},
	}
}

func TestSchema_MinimalValidPayload(t *testing.T) {
	args, err := eventSchema().Validate(map[string]any{
		"summary":    "Sync",
		"start_time": "2025-08-01T10:00:00Z",
		"end_time":   "2025-08-01T11:00:00Z",
	})
	require.Nil(t, err)

	// Defaults are applied so the adapter always sees fully specified input.
	assert.Equal(t, "primary", args.String("calendar_id"))
	assert.Equal(t, int64(10), args.Int("max_results"))
	assert.Equal(t, "default", args.String("visibility"))

	assert.Equal(t, "Sync", args.String("summary"))
	assert.Equal(t, time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC), args.Time("start_time"))
}

func TestSchema_RequiredMissing(t *testing.T) {
	_, err := eventSchema().Validate(map[string]any{
		"start_time": "2025-08-01T10:00:00Z",
		"end_time":   "2025-08-01T11:00:00Z",
	})
	require.NotNil(t, err)
	assert.Equal(t, classify.KindInvalidInput, err.Kind)
	assert.Contains(t, err.Message, "summary")
}

func TestSchema_FirstErrorIsDeterministic(t *testing.T) {
	// Two fields are invalid; the first in declaration order is reported.
	_, err := eventSchema().Validate(map[string]any{
		"summary":    "",
		"start_time": "not-a-time",
		"end_time":   "also-not-a-time",
	})
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "summary")
}

func TestSchema_TimestampFormats(t *testing.T) {
	valid := []string{
		"2025-08-01T10:00:00Z",
		"2025-08-01T10:00:00+02:00",
		"2025-08-01T10:00:00.500-07:00",
	}
	for _, ts := range valid {
		t.Run(ts, func(t *testing.T) {
			args, err := eventSchema().Validate(map[string]any{
				"summary":    "Sync",
				"start_time": ts,
				"end_time":   "2025-12-31T23:59:59Z",
			})
			require.Nil(t, err)
			assert.False(t, args.Time("start_time").IsZero())
		})
	}

	invalid := []string{
		"2025-08-01 10:00:00",
		"2025-08-01T10:00:00", // no offset
		"08/01/2025",
		"tomorrow",
	}
	for _, ts := range invalid {
		t.Run(ts, func(t *testing.T) {
			_, err := eventSchema().Validate(map[string]any{
				"summary":    "Sync",
				"start_time": ts,
				"end_time":   "2025-12-31T23:59:59Z",
			})
			require.NotNil(t, err)
			assert.Equal(t, classify.KindInvalidInput, err.Kind)
			assert.Contains(t, err.Message, "start_time")
			assert.Contains(t, err.Message, ts)
		})
	}
}

func TestSchema_EnumRestriction(t *testing.T) {
	_, err := eventSchema().Validate(map[string]any{
		"summary":    "Sync",
		"start_time": "2025-08-01T10:00:00Z",
		"end_time":   "2025-08-01T11:00:00Z",
		"visibility": "secret",
	})
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "visibility")
	assert.Contains(t, err.Message, "public")
}

func TestSchema_IntBounds(t *testing.T) {
	base := map[string]any{
		"summary":    "Sync",
		"start_time": "2025-08-01T10:00:00Z",
		"end_time":   "2025-08-01T11:00:00Z",
	}

	// JSON decoding produces float64 for numbers.
	base["max_results"] = float64(50)
	args, err := eventSchema().Validate(base)
	require.Nil(t, err)
	assert.Equal(t, int64(50), args.Int("max_results"))

	base["max_results"] = float64(0)
	_, err = eventSchema().Validate(base)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "max_results")

	base["max_results"] = 2.5
	_, err = eventSchema().Validate(base)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "integer")
}

func TestSchema_StringList(t *testing.T) {
	args, err := eventSchema().Validate(map[string]any{
		"summary":    "Sync",
		"start_time": "2025-08-01T10:00:00Z",
		"end_time":   "2025-08-01T11:00:00Z",
		"attendees":  []any{"a@example.com", "b@example.com"},
	})
	require.Nil(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, args.Strings("attendees"))

	_, err = eventSchema().Validate(map[string]any{
		"summary":    "Sync",
		"start_time": "2025-08-01T10:00:00Z",
		"end_time":   "2025-08-01T11:00:00Z",
		"attendees":  []any{"a@example.com", 42},
	})
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "attendees")
}

func TestSchema_UnknownKeysIgnored(t *testing.T) {
	args, err := eventSchema().Validate(map[string]any{
		"summary":    "Sync",
		"start_time": "2025-08-01T10:00:00Z",
		"end_time":   "2025-08-01T11:00:00Z",
		"surprise":   true,
	})
	require.Nil(t, err)
	assert.False(t, args.Has("surprise"))
}

func TestSchema_ResourceName(t *testing.T) {
	schema := &Schema{
		Fields: []Field{
			{Name: "space_name", Type: TypeResource, Required: true, Pattern: SpacePattern, PatternName: "spaces/{id}"},
		},
	}

	args, err := schema.Validate(map[string]any{"space_name": "spaces/abc-defg-hij"})
	require.Nil(t, err)
	assert.Equal(t, "spaces/abc-defg-hij", args.String("space_name"))

	// A bare meeting code is rejected before any provider call.
	_, err = schema.Validate(map[string]any{"space_name": "abc-defg-hij"})
	require.NotNil(t, err)
	assert.Equal(t, classify.KindInvalidInput, err.Kind)
	assert.Contains(t, err.Message, "space_name")
	assert.Contains(t, err.Message, "spaces/{id}")
}

func TestArgs_TypedGetters(t *testing.T) {
	args := Args{
		"name":  "x",
		"flag":  true,
		"count": int64(3),
		"when":  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		"list":  []string{"a"},
	}
	assert.Equal(t, "x", args.String("name"))
	assert.True(t, args.Bool("flag"))
	assert.Equal(t, int64(3), args.Int("count"))
	assert.Equal(t, 2025, args.Time("when").Year())
	assert.Equal(t, []string{"a"}, args.Strings("list"))

	// Absent keys yield zero values.
	assert.Equal(t, "", args.String("missing"))
	assert.False(t, args.Bool("missing"))
	assert.True(t, args.Time("missing").IsZero())
}
