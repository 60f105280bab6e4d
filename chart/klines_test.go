package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKlinesSortsAndConverts(t *testing.T) {
	body := []byte(`[
		[1700000060000, "100.0", "101.0", "99.0", 99.9, "12.3"],
		[1700000000000, "100.0", "101.0", "99.0", "100.5", "10.0"]
	]`)

	pts, err := NormalizeKlines(body)
	require.NoError(t, err)
	require.Len(t, pts, 2)

	assert.Equal(t, int64(1700000000), pts[0].Time.Unix())
	assert.Equal(t, 100.5, pts[0].Price)
	assert.Equal(t, int64(1700000060), pts[1].Time.Unix())
	assert.Equal(t, 99.9, pts[1].Price)
}

func TestNormalizeKlinesSkipsBadRecords(t *testing.T) {
	body := []byte(`[
		[1700000000000, "1", "1", "1"],
		[1700000060000, "1", "1", "1", "not-a-number"],
		["1700000120000", "1", "1", "1", "7.25"],
		{"openTime": 1700000180000},
		null,
		[true, "1", "1", "1", "8"],
		[1700000240000, "1", "1", "1", 9]
	]`)

	pts, err := NormalizeKlines(body)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 7.25, pts[0].Price)
	assert.Equal(t, time.UnixMilli(1700000120000), pts[0].Time)
	assert.Equal(t, 9.0, pts[1].Price)
}

func TestNormalizeKlinesNumberAndStringCloseAgree(t *testing.T) {
	body := []byte(`[
		[1700000000000, "100.0", "101.0", "99.0", 99.9, "12.3"],
		[1700000000000, "100.0", "101.0", "99.0", "99.9", "12.3"]
	]`)

	pts, err := NormalizeKlines(body)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, pts[0].Price, pts[1].Price)
	assert.Equal(t, pts[0].Time, pts[1].Time)
}

func TestNormalizeKlinesSkipsOutOfRangeTimes(t *testing.T) {
	body := []byte(`[
		[1e300, "1", "1", "1", "5"],
		[-1700000000000, "1", "1", "1", "6"],
		["1e30", "1", "1", "1", "7"],
		[1700000000000, "1", "1", "1", "8"]
	]`)

	pts, err := NormalizeKlines(body)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, 8.0, pts[0].Price)
	assert.Equal(t, time.UnixMilli(1700000000000), pts[0].Time)
}

func TestNormalizeKlinesNoUsableRecords(t *testing.T) {
	pts, err := NormalizeKlines([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, pts)

	pts, err = NormalizeKlines([]byte(`[[1, 2]]`))
	require.NoError(t, err)
	assert.Empty(t, pts)
}

func TestNormalizeKlinesRejectsNonArray(t *testing.T) {
	_, err := NormalizeKlines([]byte(`{"code": 0, "msg": "Invalid symbol."}`))
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = NormalizeKlines([]byte(`<html>`))
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestNormalizeKlinesEmptyBody(t *testing.T) {
	_, err := NormalizeKlines(nil)
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, err = NormalizeKlines([]byte("  \n"))
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestNormalizeKlinesIsStableForEqualTimes(t *testing.T) {
	body := []byte(`[[1000, 0, 0, 0, "1"], [1000, 0, 0, 0, "2"], [500, 0, 0, 0, "3"]]`)

	pts, err := NormalizeKlines(body)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, prices(pts))
}
