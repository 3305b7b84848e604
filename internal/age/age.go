package age

import "time"

// AgeData computes how long ago then was. Future timestamps clamp to zero.
func AgeData(then time.Time, now time.Time) (time.Duration, bool) {
	if then.IsZero() {
		return 0, false
	}
	return clamp(now.Sub(then)), true
}

// DurationData computes the display duration for an analysis run.
func DurationData(startedAt, finishedAt *time.Time, running bool, now time.Time) (time.Duration, bool) {
	if startedAt == nil || startedAt.IsZero() {
		return 0, false
	}

	if running {
		return clamp(now.Sub(*startedAt)), true
	}

	if finishedAt == nil || finishedAt.IsZero() {
		return 0, false
	}

	return clamp(finishedAt.Sub(*startedAt)), true
}

func clamp(duration time.Duration) time.Duration {
	if duration < 0 {
		return 0
	}
	return duration
}
