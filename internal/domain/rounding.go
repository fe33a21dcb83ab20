package domain

import (
	"math"
	"strconv"
	"strings"
)

// RoundHalfUp rounds x to the given number of decimal places, resolving halves
// away from zero. Rounding works on the shortest decimal representation of x,
// so 1.005 rounds to 1.01 rather than to the binary neighbour 1.00.
func RoundHalfUp(x float64, places int) float64 {
	if places < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	s := strconv.FormatFloat(math.Abs(x), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) <= places {
		return x
	}

	digits := []byte(intPart + frac[:places])
	if frac[places] >= '5' {
		i := len(digits) - 1
		for ; i >= 0; i-- {
			if digits[i] != '9' {
				digits[i]++
				break
			}
			digits[i] = '0'
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		}
	}

	n := len(digits)
	out := string(digits[:n-places])
	if places > 0 {
		out += "." + string(digits[n-places:])
	}

	v, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return x
	}
	if x < 0 {
		v = -v
	}
	return v
}
