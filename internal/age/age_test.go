package age

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeCivilCalendarAge(t *testing.T) {
	now := date(2026, time.September, 1)

	t.Run("birthday already passed this year", func(t *testing.T) {
		res, err := Compute("1990-06-15", now)
		require.NoError(t, err)
		assert.Equal(t, 36, res.Age)
		assert.True(t, res.IsAdult)
		assert.Equal(t, 0, res.DaysUntilAdult)
	})

	t.Run("birthday not yet reached this year", func(t *testing.T) {
		res, err := Compute("1990-12-01", now)
		require.NoError(t, err)
		assert.Equal(t, 35, res.Age)
	})

	t.Run("birthday is today", func(t *testing.T) {
		res, err := Compute("2000-09-01", now)
		require.NoError(t, err)
		assert.Equal(t, 26, res.Age)
	})
}

func TestComputeAdulthoodBoundary(t *testing.T) {
	now := date(2026, time.September, 1)

	t.Run("exactly 18 today is adult", func(t *testing.T) {
		res, err := Compute("2008-09-01", now)
		require.NoError(t, err)
		assert.True(t, res.IsAdult)
		assert.Equal(t, 18, res.Age)
		assert.Equal(t, 0, res.DaysUntilAdult)
	})

	t.Run("one day short is not adult", func(t *testing.T) {
		res, err := Compute("2008-09-02", now)
		require.NoError(t, err)
		assert.False(t, res.IsAdult)
		assert.Equal(t, 17, res.Age)
		assert.Equal(t, 1, res.DaysUntilAdult)
	})

	t.Run("days until adulthood counts calendar days", func(t *testing.T) {
		res, err := Compute("2008-09-11", now)
		require.NoError(t, err)
		assert.False(t, res.IsAdult)
		assert.Equal(t, 10, res.DaysUntilAdult)
	})

	t.Run("custom majority age", func(t *testing.T) {
		calc := NewCalculator(20)
		res, err := calc.Compute("2008-09-01", now)
		require.NoError(t, err)
		assert.False(t, res.IsAdult)
	})
}

func TestComputeAcceptedNotations(t *testing.T) {
	now := date(2026, time.September, 1)

	// All notations spell the same date and must agree on every field.
	equivalents := []string{
		"1990-06-15",
		"1990/06/15",
		"1990年06月15日",
		"1990年6月15日",
		"06/15/1990",
		"06-15-1990",
	}

	want, err := Compute(equivalents[0], now)
	require.NoError(t, err)

	for _, notation := range equivalents[1:] {
		res, err := Compute(notation, now)
		require.NoError(t, err, "notation %q", notation)
		assert.Equal(t, want, res, "notation %q", notation)
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	now := date(2026, time.September, 1)

	t.Run("unrecognized notation", func(t *testing.T) {
		for _, text := range []string{"", "15.06.1990", "June 15, 1990", "1990-06", "notadate"} {
			_, err := Compute(text, now)
			assert.ErrorIs(t, err, ErrInvalidDateFormat, "input %q", text)
		}
	})

	t.Run("impossible month or day", func(t *testing.T) {
		for _, text := range []string{"1990-13-01", "1990-00-10", "1990-06-32", "1990-06-00"} {
			_, err := Compute(text, now)
			assert.ErrorIs(t, err, ErrImpossibleDate, "input %q", text)
		}
	})

	t.Run("day overflow within range markers", func(t *testing.T) {
		// February 30 passes the 1-31 screen but is not a real date.
		_, err := Compute("1990-02-30", now)
		assert.ErrorIs(t, err, ErrImpossibleDate)
	})
}

func TestComputeIsPure(t *testing.T) {
	now := date(2026, time.September, 1)

	first, err := Compute("2008-09-02", now)
	require.NoError(t, err)
	second, err := Compute("2008-09-02", now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
