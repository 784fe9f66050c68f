package dateindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIsContiguous(t *testing.T) {
	ix := Build(time.Date(2024, 2, 27, 15, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, Index{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, ix)

	for i := 1; i < ix.Len(); i++ {
		prev, err := time.Parse("2006-01-02", ix[i-1])
		require.NoError(t, err)
		cur, err := time.Parse("2006-01-02", ix[i])
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, cur.Sub(prev))
	}
}

func TestBuildSingleDayAndReversed(t *testing.T) {
	day := time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Index{"2025-04-08"}, Build(day, day))
	assert.Empty(t, Build(day, day.AddDate(0, 0, -1)))
}

func TestParse(t *testing.T) {
	ix, err := Parse("2023-01-01", "2025-04-08")
	require.NoError(t, err)
	assert.Equal(t, 829, ix.Len())
	assert.Equal(t, "2023-01-01", ix.At(0))
	assert.Equal(t, "2025-04-08", ix.At(ix.Len()-1))

	_, err = Parse("2025-01-02", "2025-01-01")
	assert.Error(t, err)
	_, err = Parse("01/01/2025", "2025-01-01")
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	ix, err := Parse("2025-01-01", "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Find("2025-01-01"))
	assert.Equal(t, 9, ix.Find("2025-01-10"))
	assert.Equal(t, -1, ix.Find("2024-12-31"))
	assert.Equal(t, -1, ix.Find("2025-01-11"))
	assert.Equal(t, "", ix.At(10))
}

func TestDefaultRange(t *testing.T) {
	ix, err := Parse("2023-01-01", "2025-04-08")
	require.NoError(t, err)

	t.Run("window present", func(t *testing.T) {
		r := ix.DefaultRange(PolicyWindow, "2025-01-01", "2025-04-08")
		start, end := ix.Bounds(r)
		assert.Equal(t, "2025-01-01", start)
		assert.Equal(t, "2025-04-08", end)
	})

	t.Run("window missing falls back to full span", func(t *testing.T) {
		r := ix.DefaultRange(PolicyWindow, "2026-01-01", "2026-02-01")
		assert.Equal(t, ix.Full(), r)
	})

	t.Run("full policy ignores window", func(t *testing.T) {
		r := ix.DefaultRange(PolicyFull, "2025-01-01", "2025-04-08")
		assert.Equal(t, Range{Start: 0, End: ix.Len() - 1}, r)
	})

	t.Run("empty index", func(t *testing.T) {
		assert.Equal(t, Range{}, Index{}.DefaultRange(PolicyWindow, "2025-01-01", "2025-04-08"))
	})
}

func TestClamp(t *testing.T) {
	ix := Index{"2025-01-01", "2025-01-02", "2025-01-03"}
	assert.Equal(t, Range{Start: 0, End: 2}, ix.Clamp(Range{Start: -4, End: 10}))
	assert.Equal(t, Range{Start: 1, End: 2}, ix.Clamp(Range{Start: 2, End: 1}))
	assert.True(t, ix.Valid(Range{Start: 1, End: 1}))
	assert.False(t, ix.Valid(Range{Start: 2, End: 1}))
	assert.Equal(t, Range{}, Index{}.Clamp(Range{Start: 3, End: 5}))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyWindow, p)

	p, err = ParsePolicy("FULL")
	require.NoError(t, err)
	assert.Equal(t, PolicyFull, p)

	_, err = ParsePolicy("recent")
	assert.Error(t, err)
}
