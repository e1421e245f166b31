// Package round rounds derived values for publication.
package round

import (
	"math"
	"strconv"
)

// To rounds x to places decimals using the shortest correctly rounded
// decimal of its exact binary value, so exact ties go to the even digit.
// Non-finite input yields 0.
func To(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil || r == 0 {
		return 0 // also drops negative zero
	}
	return r
}
