package panel

// Panel is a front end for panel items. Add and Update are called from the
// render thread; delta is the frame time in milliseconds.
type Panel interface {
	Add(item *Item)
	Update(delta float32)
}

// Multi fans items and updates out to several panels sharing the same
// *Item values.
type Multi []Panel

func (m Multi) Add(item *Item) {
	for _, p := range m {
		p.Add(item)
	}
}

func (m Multi) Update(delta float32) {
	for _, p := range m {
		p.Update(delta)
	}
}

// fpsMeter smooths frame times into a frames-per-second reading.
type fpsMeter struct {
	avg float32
}

func (f *fpsMeter) add(delta float32) float32 {
	if delta <= 0 {
		return f.fps()
	}
	if f.avg == 0 {
		f.avg = delta
	} else {
		f.avg += (delta - f.avg) * 0.05
	}
	return f.fps()
}

func (f *fpsMeter) fps() float32 {
	if f.avg <= 0 {
		return 0
	}
	return 1000 / f.avg
}
