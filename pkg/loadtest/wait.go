package loadtest

import (
	"math/rand"
	"time"
)

// Between returns a wait-time policy that picks a uniform random duration in
// [min, max] for every call, the delay a virtual user sleeps between task
// runs.
func Between(min, max time.Duration) func() time.Duration {
	if max < min {
		min, max = max, min
	}
	return func() time.Duration {
		if max == min {
			return min
		}
		return min + time.Duration(rand.Int63n(int64(max-min)+1))
	}
}
