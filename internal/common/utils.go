package common

import "strconv"

// FormatDegrees renders a coordinate component with the shortest decimal
// form that round-trips (55.6761, not 55.676100).
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
