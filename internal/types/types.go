// README: Shared trip value types used across modules.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

type TripType string

const (
	TripRoundTrip TripType = "ROUND_TRIP"
	TripOneWay    TripType = "ONE_WAY"
)

// ParseTripType accepts the canonical names plus the provider's numeric
// encoding (1 = round trip, 2 = one way), which some model responses echo back.
func ParseTripType(v string) (TripType, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "ROUND_TRIP", "ROUNDTRIP", "1":
		return TripRoundTrip, nil
	case "ONE_WAY", "ONEWAY", "2":
		return TripOneWay, nil
	}
	return "", fmt.Errorf("unknown trip type %q", v)
}

// ProviderCode returns the flight provider's numeric trip type.
func (t TripType) ProviderCode() int {
	if t == TripOneWay {
		return 2
	}
	return 1
}

type CabinClass string

const (
	CabinEconomy  CabinClass = "ECONOMY"
	CabinPremium  CabinClass = "PREMIUM"
	CabinBusiness CabinClass = "BUSINESS"
	CabinFirst    CabinClass = "FIRST"
)

func ParseCabinClass(v string) (CabinClass, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "ECONOMY", "1":
		return CabinEconomy, nil
	case "PREMIUM", "PREMIUM_ECONOMY", "PREMIUM ECONOMY", "2":
		return CabinPremium, nil
	case "BUSINESS", "3":
		return CabinBusiness, nil
	case "FIRST", "4":
		return CabinFirst, nil
	}
	return "", fmt.Errorf("unknown cabin class %q", v)
}

// ProviderCode returns the flight provider's numeric travel class (1-4).
func (c CabinClass) ProviderCode() int {
	switch c {
	case CabinPremium:
		return 2
	case CabinBusiness:
		return 3
	case CabinFirst:
		return 4
	default:
		return 1
	}
}

// TimeWindow holds 2 or 4 hour-of-day bounds (0-23). Two values bound the
// departure hour; four also bound the arrival hour.
type TimeWindow []int

func ParseTimeWindow(v string) (TimeWindow, error) {
	parts := strings.Split(v, ",")
	w := make(TimeWindow, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("time window %q: %w", v, err)
		}
		w = append(w, n)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w TimeWindow) Validate() error {
	if len(w) != 2 && len(w) != 4 {
		return fmt.Errorf("time window must have 2 or 4 values, got %d", len(w))
	}
	for _, h := range w {
		if h < 0 || h > 23 {
			return fmt.Errorf("time window hour %d out of range [0,23]", h)
		}
	}
	return nil
}

// String renders the provider query form, e.g. "4,18" or "4,18,3,19".
func (w TimeWindow) String() string {
	parts := make([]string, len(w))
	for i, h := range w {
		parts[i] = strconv.Itoa(h)
	}
	return strings.Join(parts, ",")
}

type Money struct {
	Amount   int64
	Currency string
}

// SplitEven divides the amount into n parts that sum exactly to the original.
// The first part absorbs the remainder, so drift never exceeds one unit.
func (m Money) SplitEven(n int) []Money {
	if n <= 0 {
		return nil
	}
	each := m.Amount / int64(n)
	rem := m.Amount - each*int64(n)
	parts := make([]Money, n)
	for i := range parts {
		parts[i] = Money{Amount: each, Currency: m.Currency}
	}
	parts[0].Amount += rem
	return parts
}
