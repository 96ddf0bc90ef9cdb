package calculator

import "errors"

// PercentChange returns the signed percentage move from previous to
// current. A zero previous price makes the division undefined.
func PercentChange(previous, current float64) (float64, error) {
	if previous == 0 {
		return 0, errors.New("previous price is zero")
	}
	return (current - previous) / previous * 100, nil
}
