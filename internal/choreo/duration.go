// ABOUTME: Duration conversion for configured cue times
// ABOUTME: Out-of-range values degrade to zero and report ErrDurationOverflow
package choreo

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrDurationOverflow is returned when a configured time can't be
// represented as a time.Duration. The value used instead is zero.
var ErrDurationOverflow = errors.New("duration out of range")

const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// Seconds converts a number of seconds to a duration. Negative, NaN and
// overflowing values yield 0 and ErrDurationOverflow.
func Seconds(s float64) (time.Duration, error) {
	if math.IsNaN(s) || s < 0 || s > maxSeconds {
		return 0, fmt.Errorf("%w: %v seconds", ErrDurationOverflow, s)
	}
	return time.Duration(s * float64(time.Second)), nil
}

// addDurations returns a+b, or 0 and ErrDurationOverflow if the sum
// doesn't fit
func addDurations(a, b time.Duration) (time.Duration, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %v + %v", ErrDurationOverflow, a, b)
	}
	return sum, nil
}
