package routekit_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/routekit"
)

func TestParamsAccessors(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.MustParse("378360d3-4190-4f9f-a1ed-d1346368ffcb")

	params := routekit.Params{
		"slug":   "platform",
		"count":  int64(42),
		"factor": 2.5,
		"day":    day,
		"app":    id,
	}

	t.Run("typed_hits", func(t *testing.T) {
		t.Parallel()

		s, ok := params.Text("slug")
		assert.True(t, ok)
		assert.Equal(t, "platform", s)

		n, ok := params.Int("count")
		assert.True(t, ok)
		assert.Equal(t, int64(42), n)

		f, ok := params.Float("factor")
		assert.True(t, ok)
		assert.Equal(t, 2.5, f)

		d, ok := params.Time("day")
		assert.True(t, ok)
		assert.Equal(t, day, d)

		u, ok := params.UUID("app")
		assert.True(t, ok)
		assert.Equal(t, id, u)

		v, ok := params.Get("slug")
		assert.True(t, ok)
		assert.Equal(t, "platform", v)
	})

	t.Run("absent_names", func(t *testing.T) {
		t.Parallel()

		_, ok := params.Text("missing")
		assert.False(t, ok)
		_, ok = params.Int("missing")
		assert.False(t, ok)
		_, ok = params.Get("missing")
		assert.False(t, ok)
	})

	t.Run("wrong_type_is_a_miss", func(t *testing.T) {
		t.Parallel()

		_, ok := params.Text("count")
		assert.False(t, ok)
		_, ok = params.Int("slug")
		assert.False(t, ok)
		_, ok = params.Float("count")
		assert.False(t, ok, "int64 does not satisfy Float")
		_, ok = params.Time("slug")
		assert.False(t, ok)
		_, ok = params.UUID("slug")
		assert.False(t, ok)
	})
}
