package service

import "time"

// Clock abstracts wall time so expiry checks are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
