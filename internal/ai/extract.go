// README: Tolerant extraction of a TripUpdate from raw model text.
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tailwind/internal/types"
)

// ErrExtractionFailed means the text looked structured but no decoder could
// parse it. The dialogue layer recovers by re-prompting.
var ErrExtractionFailed = errors.New("no structured update found in model response")

// decoder locates one candidate JSON payload in the text. Decoders are tried
// in order; the first whose candidate parses wins.
type decoder func(text string) (string, bool)

var decoders = []decoder{
	decodeTaggedFence,
	decodePlainFence,
	decodeBraceSpan,
}

var (
	taggedFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	plainFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	airportRe     = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// Extract parses raw model output into a TripUpdate. Pure function: identical
// input always yields an identical result.
//
// Text without any brace or bracket is treated as a bare user-facing message
// with no field updates. Otherwise the fenced-JSON, plain-fenced, and
// brace-span decoders run in order. Unknown fields are ignored; fields failing
// type or range checks are dropped individually. A non-boolean "completion"
// fails the whole extraction.
func Extract(raw string) (*TripUpdate, error) {
	if !strings.ContainsAny(raw, "{[") {
		return &TripUpdate{Message: strings.TrimSpace(raw)}, nil
	}

	for _, dec := range decoders {
		candidate, ok := dec(raw)
		if !ok {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			continue
		}
		return updateFromPayload(payload)
	}
	return nil, ErrExtractionFailed
}

func decodeTaggedFence(text string) (string, bool) {
	m := taggedFenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func decodePlainFence(text string) (string, bool) {
	m := plainFenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// decodeBraceSpan returns the first balanced top-level {...} span, tracking
// string literals so braces inside values do not confuse the depth count.
func decodeBraceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func updateFromPayload(payload map[string]any) (*TripUpdate, error) {
	upd := &TripUpdate{}

	if v, present := payload["completion"]; present && v != nil {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("completion field is not a boolean: %w", ErrExtractionFailed)
		}
		upd.Completion = b
	}
	if s, ok := stringField(payload, "message"); ok {
		upd.Message = strings.TrimSpace(s)
	}
	if s, ok := stringField(payload, "departure_id"); ok {
		if code, ok := airportCode(s); ok {
			upd.DepartureAirport = &code
		}
	}
	if s, ok := stringField(payload, "arrival_id"); ok {
		if code, ok := airportCode(s); ok {
			upd.ArrivalAirport = &code
		}
	}
	if s, ok := scalarField(payload, "trip_type"); ok {
		if t, err := types.ParseTripType(s); err == nil {
			upd.TripType = &t
		}
	}
	if s, ok := stringField(payload, "outbound_date"); ok {
		if d, err := parseDate(s); err == nil {
			upd.OutboundDate = &d
		}
	}
	if s, ok := stringField(payload, "return_date"); ok {
		if d, err := parseDate(s); err == nil {
			upd.ReturnDate = &d
		}
	}
	if v, present := payload["adults"]; present {
		if n, ok := intValue(v); ok && n >= 1 {
			upd.Adults = &n
		}
	}
	if s, ok := scalarField(payload, "travel_class"); ok {
		if c, err := types.ParseCabinClass(s); err == nil {
			upd.TravelClass = &c
		}
	}
	if w, ok := windowField(payload, "outbound_times"); ok {
		upd.OutboundTimes = w
	}
	if w, ok := windowField(payload, "return_times"); ok {
		upd.ReturnTimes = w
	}
	return upd, nil
}

func stringField(payload map[string]any, key string) (string, bool) {
	v, present := payload[key]
	if !present || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// scalarField renders string or numeric values as a string, for fields the
// model encodes either way (trip_type, travel_class).
func scalarField(payload map[string]any, key string) (string, bool) {
	v, present := payload[key]
	if !present || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if t == float64(int(t)) {
			return strconv.Itoa(int(t)), true
		}
	}
	return "", false
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// windowField accepts a comma-separated string ("4,18,3,19") or a JSON array
// of hours; anything failing the 2-or-4-values-in-[0,23] rule is dropped.
func windowField(payload map[string]any, key string) (types.TimeWindow, bool) {
	v, present := payload[key]
	if !present || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		if w, err := types.ParseTimeWindow(t); err == nil {
			return w, true
		}
	case []any:
		w := make(types.TimeWindow, 0, len(t))
		for _, e := range t {
			n, ok := intValue(e)
			if !ok {
				return nil, false
			}
			w = append(w, n)
		}
		if err := w.Validate(); err == nil {
			return w, true
		}
	}
	return nil, false
}

func airportCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !airportRe.MatchString(s) {
		return "", false
	}
	return strings.ToUpper(s), true
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
