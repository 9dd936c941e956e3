package core

import "time"

// Frame is one tick of the render loop. Time and Delta are in milliseconds.
type Frame struct {
	Time   float64
	Delta  float64
	Number int
}

// Ticker produces monotonically numbered frames from a clock.
type Ticker struct {
	now   func() time.Time
	start time.Time
	last  time.Time
	frame int
}

func NewTicker() *Ticker {
	return NewTickerWithClock(time.Now)
}

func NewTickerWithClock(now func() time.Time) *Ticker {
	t := now()
	return &Ticker{now: now, start: t, last: t}
}

func (t *Ticker) Tick() Frame {
	n := t.now()
	delta := n.Sub(t.last)
	t.last = n
	t.frame++
	return Frame{
		Time:   float64(n.Sub(t.start)) / float64(time.Millisecond),
		Delta:  float64(delta) / float64(time.Millisecond),
		Number: t.frame,
	}
}
