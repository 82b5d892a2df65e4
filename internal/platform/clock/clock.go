package clock

import "time"

// Clock abstracts time so default date windows are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports At.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

// Today formats the clock's current UTC day with layout.
func Today(c Clock, layout string) string {
	return c.Now().UTC().Format(layout)
}
