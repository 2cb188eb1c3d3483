// Package units converts the solver's canonical SI channel values (m/s,
// m, N, W, ...) into the display units an engineer actually wants on a
// plot or dashboard axis. The solver and store always deal in SI; units
// only matters at the reporting boundary.
package units

// Speed unit constants. The solver and store always carry m/s; these are
// report-time display options only.
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidSpeedUnits contains every display unit ConvertSpeed understands.
var ValidSpeedUnits = []string{MPS, MPH, KMPH, KPH}

// IsValidSpeedUnit reports whether unit is one ConvertSpeed understands.
func IsValidSpeedUnit(unit string) bool {
	for _, v := range ValidSpeedUnits {
		if unit == v {
			return true
		}
	}
	return false
}

// ConvertSpeed converts a speed from meters per second (the solver's
// canonical unit) to targetUnit. Unknown units pass through unconverted
// rather than erroring, since a bad display-unit request shouldn't block
// a report that's otherwise ready.
func ConvertSpeed(speedMPS float64, targetUnit string) float64 {
	switch targetUnit {
	case MPH:
		return speedMPS * 2.23694
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// ConvertSpeedSeries applies ConvertSpeed to every sample of a Velocity
// channel's evaluated series, e.g. before handing it to a plot or table
// that was asked for mph instead of the solver's native m/s.
func ConvertSpeedSeries(valuesMPS []float64, targetUnit string) []float64 {
	out := make([]float64, len(valuesMPS))
	for i, v := range valuesMPS {
		out[i] = ConvertSpeed(v, targetUnit)
	}
	return out
}

// SpeedUnitLabel returns the short axis label ("m/s", "mph", "km/h") for a
// speed display unit, falling back to the canonical unit for anything
// ConvertSpeed doesn't recognize.
func SpeedUnitLabel(unit string) string {
	switch unit {
	case MPH:
		return "mph"
	case KMPH, KPH:
		return "km/h"
	case MPS:
		return "m/s"
	default:
		return "m/s"
	}
}
