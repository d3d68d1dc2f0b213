package alert

import "time"

// IsDue reports whether an alert satisfies its cadence policy at the given
// instant. A nil lastDispatchedAt means the alert has never been sent and is
// always due. Unrecognized frequencies fail closed; the caller is expected
// to flag them as a configuration error rather than treat them as immediate.
func IsDue(frequency Frequency, lastDispatchedAt *time.Time, now time.Time) bool {
	switch frequency {
	case FrequencyImmediate:
		return true
	case FrequencyHourly:
		return lastDispatchedAt == nil || now.Sub(*lastDispatchedAt) >= time.Hour
	case FrequencyDaily:
		return lastDispatchedAt == nil || now.Sub(*lastDispatchedAt) >= 24*time.Hour
	default:
		return false
	}
}
