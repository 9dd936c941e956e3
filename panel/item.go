// Package panel is the debug panel: a list of named sliders, dividers and an
// FPS readout, rendered by one or more front ends.
package panel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

type ItemType int

const (
	ItemSlider ItemType = iota
	ItemDivider
	ItemFPS
)

func (t ItemType) String() string {
	switch t {
	case ItemDivider:
		return "divider"
	case ItemFPS:
		return "fps"
	default:
		return "slider"
	}
}

// Item is one panel row. Only sliders carry a range and a callback.
type Item struct {
	Type     ItemType
	Name     string
	Min      float32
	Max      float32
	Step     float32
	Value    float32
	Callback func(value float32)
}

func FPS() *Item {
	return &Item{Type: ItemFPS, Name: "FPS"}
}

func Divider() *Item {
	return &Item{Type: ItemDivider}
}

func Slider(name string, lo, hi, step, value float32, callback func(float32)) *Item {
	return &Item{
		Type:     ItemSlider,
		Name:     name,
		Min:      lo,
		Max:      hi,
		Step:     step,
		Value:    value,
		Callback: callback,
	}
}

// Set snaps v to the slider's step grid, clamps it to [Min, Max], stores it
// and invokes the callback. It returns the stored value. Non-sliders ignore
// Set.
func (it *Item) Set(v float32) float32 {
	if it.Type != ItemSlider {
		return it.Value
	}
	if it.Step > 0 {
		v = it.Min + math32.Round((v-it.Min)/it.Step)*it.Step
		// trim float noise from the multiply
		if d := it.decimals(); d >= 0 {
			p := math32.Pow(10, float32(d))
			v = math32.Round(v*p) / p
		}
	}
	v = min(max(v, it.Min), it.Max)

	it.Value = v
	if it.Callback != nil {
		it.Callback(v)
	}
	return v
}

// Nudge moves the slider n steps.
func (it *Item) Nudge(n int) float32 {
	step := it.Step
	if step <= 0 {
		step = (it.Max - it.Min) / 100
	}
	return it.Set(it.Value + float32(n)*step)
}

// decimals is the number of fraction digits the step needs.
func (it *Item) decimals() int {
	if it.Step <= 0 {
		return -1
	}
	s := strconv.FormatFloat(float64(it.Step), 'f', -1, 32)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// Label renders the item for text front ends.
func (it *Item) Label() string {
	switch it.Type {
	case ItemDivider:
		return "--"
	case ItemFPS:
		return fmt.Sprintf("%s %.0f", it.Name, it.Value)
	default:
		return fmt.Sprintf("%s %.*f", it.Name, max(it.decimals(), 0), it.Value)
	}
}
