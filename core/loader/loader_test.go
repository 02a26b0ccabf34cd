package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestLoadAll(t *testing.T) {
	a := &fakeFeature{name: "a", enabled: true}
	b := &fakeFeature{name: "b"}
	c := &fakeFeature{name: "c", enabled: true}

	m := NewManager()
	m.Register(a)
	m.Register(b)
	m.Register(c)

	loaded, err := m.LoadAll(fiber.New())
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, loaded)
	assert.False(t, b.loaded)
}

func TestLoadAllStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	bad := &fakeFeature{name: "bad", enabled: true, err: boom}
	after := &fakeFeature{name: "after", enabled: true}

	m := NewManager()
	m.Register(bad)
	m.Register(after)

	_, err := m.LoadAll(fiber.New())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "bad")
	assert.False(t, after.loaded)
}
