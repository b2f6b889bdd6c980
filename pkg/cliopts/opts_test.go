package cliopts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFlagsOverrideEnv(t *testing.T) {
	o := New("test", []string{"--width", "640", "in.yaml"})
	o.Getenv = env(map[string]string{"W": "320", "H": "200", "OUT": "x.svg"})

	w, err := o.Int("W", "width", "", 800, "")
	require.NoError(t, err)
	h, err := o.Int("H", "height", "", 600, "")
	require.NoError(t, err)
	out := o.String("OUT", "output", "o", "out.png", "")
	require.NoError(t, o.Parse())

	assert.Equal(t, 640, *w)
	assert.Equal(t, 200, *h)
	assert.Equal(t, "x.svg", *out)
	assert.Equal(t, []string{"in.yaml"}, o.Flags.Args())
}

func TestInvalidEnv(t *testing.T) {
	o := New("test", nil)
	o.Getenv = env(map[string]string{"N": "lots", "B": "maybe"})

	_, err := o.Int("N", "n", "", 1, "")
	assert.ErrorContains(t, err, "invalid environment variable N")
	_, err = o.Bool("B", "b", "", false, "")
	assert.ErrorContains(t, err, "invalid environment variable B")
}

func TestStringArray(t *testing.T) {
	o := New("test", []string{"-e", "A:B", "-e", "B:A"})
	o.Getenv = env(map[string]string{"EDGES": "X:Y"})
	edges := o.StringArray("EDGES", "edge", "e", "")
	require.NoError(t, o.Parse())
	assert.Equal(t, []string{"A:B", "B:A"}, *edges)

	o = New("test", nil)
	o.Getenv = env(map[string]string{"EDGES": "X:Y Y:X"})
	edges = o.StringArray("EDGES", "edge", "e", "")
	require.NoError(t, o.Parse())
	assert.Equal(t, []string{"X:Y", "Y:X"}, *edges)
}

func TestHelpListsEnv(t *testing.T) {
	o := New("test", nil)
	o.Getenv = env(nil)
	o.Bool("DEBUG", "debug", "d", false, "log more")
	help := o.Help()
	assert.Contains(t, help, "--debug")
	assert.Contains(t, help, "$DEBUG")
}
