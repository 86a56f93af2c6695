package services

import "time"

// Clock abstracts "now" so deadline arithmetic and availability defaults
// are testable with a fixed date.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (systemClock) Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}
