package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 3, c.Tunables.Iterations)
	assert.Equal(t, float32(0.3), c.Tunables.BloomStrength)
	assert.True(t, c.Tunables.PostProcessing)
	assert.Equal(t, TriangleSVG, c.Assets.Triangle)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Tunables.CurlStrength = 12.5
	c.Assets.Model = "assets/models/helmet.glb"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tunables:\n  curl_strength: 30\nlog:\n  level: debug\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(30), c.Tunables.CurlStrength)
	assert.Equal(t, float32(0.97), c.Tunables.DensityDissipation)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 1280, c.Window.Width)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"syntax":     "window: [",
		"size":       "window:\n  width: 0\n",
		"iterations": "tunables:\n  iterations: -1\n",
		"radius":     "tunables:\n  radius: 2\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchDeliversTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, Default()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path)
	require.NoError(t, err)

	c := Default()
	c.Tunables.BloomStrength = 1.25
	require.NoError(t, Save(path, c))

	deadline := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case tun := <-ch:
			done = tun.BloomStrength == 1.25
		case <-deadline:
			t.Fatal("no reload")
		}
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
