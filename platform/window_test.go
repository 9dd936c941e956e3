package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixelRatio(t *testing.T) {
	tests := []struct {
		logical, physical int
		want              float64
	}{
		{1280, 1280, 1},
		{1280, 2560, 2},
		{800, 1200, 1.5},
		{0, 100, 1},
		{100, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pixelRatio(tt.logical, tt.physical))
	}
}

func TestModsHas(t *testing.T) {
	m := ModShift | ModAlt
	assert.True(t, m.Has(ModShift))
	assert.True(t, m.Has(ModAlt))
	assert.False(t, m.Has(ModControl))
}
