package panel

import (
	"fmt"
	"strings"
)

// Keyboard drives sliders from the keyboard and shows the selected slider
// and the frame rate through a title sink, normally the window title.
type Keyboard struct {
	base  string
	title func(string)

	items    []*Item
	selected int
	meter    fpsMeter
}

func NewKeyboard(base string, title func(string)) *Keyboard {
	return &Keyboard{base: base, title: title, selected: -1}
}

func (k *Keyboard) Add(item *Item) {
	k.items = append(k.items, item)
	if k.selected < 0 && item.Type == ItemSlider {
		k.selected = len(k.items) - 1
	}
}

// Selected returns the slider under the cursor, or nil.
func (k *Keyboard) Selected() *Item {
	if k.selected < 0 {
		return nil
	}
	return k.items[k.selected]
}

// Next moves the selection to the following slider, wrapping around.
func (k *Keyboard) Next() { k.move(1) }

// Prev moves the selection to the preceding slider, wrapping around.
func (k *Keyboard) Prev() { k.move(-1) }

func (k *Keyboard) move(dir int) {
	n := len(k.items)
	if n == 0 || k.selected < 0 {
		return
	}
	i := k.selected
	for range n {
		i = (i + dir + n) % n
		if k.items[i].Type == ItemSlider {
			k.selected = i
			return
		}
	}
}

// Increase steps the selected slider up.
func (k *Keyboard) Increase() {
	if it := k.Selected(); it != nil {
		it.Nudge(1)
	}
}

// Decrease steps the selected slider down.
func (k *Keyboard) Decrease() {
	if it := k.Selected(); it != nil {
		it.Nudge(-1)
	}
}

func (k *Keyboard) Update(delta float32) {
	fps := k.meter.add(delta)
	for _, it := range k.items {
		if it.Type == ItemFPS {
			it.Value = fps
		}
	}
	if k.title != nil {
		k.title(k.Title())
	}
}

// Title is the text shown by the sink: the base title, the FPS readout and
// the selected slider with its position among the sliders.
func (k *Keyboard) Title() string {
	parts := []string{k.base}
	for _, it := range k.items {
		if it.Type == ItemFPS {
			parts = append(parts, it.Label())
		}
	}
	if sel := k.Selected(); sel != nil {
		idx, total := 0, 0
		for i, it := range k.items {
			if it.Type != ItemSlider {
				continue
			}
			total++
			if i == k.selected {
				idx = total
			}
		}
		parts = append(parts, fmt.Sprintf("%s [%d/%d]", sel.Label(), idx, total))
	}
	return strings.Join(parts, " | ")
}
