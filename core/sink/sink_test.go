package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/batteryform/core/factory"
)

type recordSink struct {
	subs   []Submission
	err    error
	closed bool
}

func (r *recordSink) Emit(_ context.Context, s Submission) error {
	r.subs = append(r.subs, s)
	return r.err
}

func (r *recordSink) Close() error {
	r.closed = true
	return nil
}

func TestMultiSink_TriesEverySink(t *testing.T) {
	failing := &recordSink{err: errors.New("down")}
	ok := &recordSink{}
	m := NewMultiSink(failing, ok)

	err := m.Emit(context.Background(), Submission{ID: "1", VirtualBattery: true, SolarPanels: "x"})
	assert.ErrorContains(t, err, "down")
	assert.Len(t, failing.subs, 1)
	assert.Len(t, ok.subs, 1)

	require.NoError(t, m.Close())
	assert.True(t, failing.closed)
	assert.True(t, ok.closed)
}

func TestNew(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	first := &recordSink{}
	second := &recordSink{}
	require.NoError(t, Register("test-first", func(map[string]any) (Sink, error) { return first, nil }))
	require.NoError(t, Register("test-second", func(map[string]any) (Sink, error) { return second, nil }))
	assert.Contains(t, Available(), "test-first")

	s, err = New([]factory.ModuleConfig{{Type: "test-first"}})
	require.NoError(t, err)
	assert.Same(t, first, s)

	s, err = New([]factory.ModuleConfig{{Type: "test-first"}, {Type: "test-second"}})
	require.NoError(t, err)
	require.IsType(t, &MultiSink{}, s)
	assert.Len(t, s.(*MultiSink).Sinks, 2)

	_, err = New([]factory.ModuleConfig{{Type: "test-first"}, {Type: "missing"}})
	assert.Error(t, err)
	assert.True(t, first.closed)
}

func TestSubmission_BatteryType(t *testing.T) {
	assert.Equal(t, "virtual", Submission{VirtualBattery: true}.BatteryType())
	assert.Equal(t, "physical", Submission{PhysicalBattery: true}.BatteryType())
	assert.Equal(t, "none", Submission{}.BatteryType())
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	f := func(map[string]any) (Sink, error) { return NopSink{}, nil }
	require.NotPanics(t, func() { MustRegister("test-must", f) })
	assert.Contains(t, Available(), "test-must")
	assert.Panics(t, func() { MustRegister("test-must", f) })
}
