package tickker

import (
	"time"

	"github.com/sohumt123/Tickker/date"
)

// day is a helper for test to create dates from const
func day(y int, m time.Month, d int) date.Date { return date.New(y, m, d) }

// series is a helper for test to create a series from dates and values.
func series(points map[date.Date]float64) *Series {
	s := new(Series)
	for d, v := range points {
		s.Append(d, USD(v))
	}
	return s
}

// valueOn returns the value of s on d, or panics, for tests only.
func valueOn(s *Series, d date.Date) Money {
	v, ok := s.Get(d)
	if !ok {
		panic("no value on " + d.String())
	}
	return v
}
