package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

var (
	// ErrBadPayload is returned when a klines body is not an array of records.
	ErrBadPayload = errors.New("klines payload is not an array")
	// ErrEmptyBody is returned when there is no body to decode.
	ErrEmptyBody = errors.New("klines body is empty")
)

const (
	klineOpenTime = 0
	klineClose    = 4

	// maxOpenTimeMs is 9999-12-31T23:59:59.999Z.
	maxOpenTimeMs = 253402300799999
)

// NormalizeKlines decodes an exchange klines payload into an ascending
// series. Each record is an array whose field 0 is the open time in
// milliseconds and whose field 4 is the close price, either of which may be
// a JSON number or a numeric string. Records that are too short or hold
// unparsable fields or an open time outside years 1970-9999 are skipped. An empty slice with a nil error means the
// payload held no usable records.
func NormalizeKlines(body []byte) ([]Point, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	points := make([]Point, 0, len(raw))
	for _, rec := range raw {
		var fields []json.RawMessage
		if err := json.Unmarshal(rec, &fields); err != nil {
			continue
		}
		if len(fields) <= klineClose {
			continue
		}
		ms, ok := numberField(fields[klineOpenTime])
		if !ok || ms < 0 || ms > maxOpenTimeMs {
			continue
		}
		closePrice, ok := numberField(fields[klineClose])
		if !ok {
			continue
		}
		points = append(points, Point{
			Time:  time.UnixMilli(int64(ms)),
			Price: closePrice,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return points, nil
}

// numberField accepts a JSON number or a string holding one.
func numberField(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
