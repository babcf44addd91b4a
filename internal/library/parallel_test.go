package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oaktree/internal/registry"
	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
)

func TestParallelSequence_DefaultThresholdsRequireAllSuccess(t *testing.T) {
	p, err := registry.NewInstruction("ParallelSequence", "p")
	require.NoError(t, err)
	p.AddChild(newFixed("a", status.Success))
	p.AddChild(newFixed("b", status.Running))

	st := p.Tick(ui.Base{}, nil)
	assert.Equal(t, status.Running, st)
}

func TestParallelSequence_DefaultFailureThresholdIsOne(t *testing.T) {
	p, err := registry.NewInstruction("ParallelSequence", "p")
	require.NoError(t, err)
	p.AddChild(newFixed("a", status.Failure))
	p.AddChild(newFixed("b", status.Running))

	st := p.Tick(ui.Base{}, nil)
	assert.Equal(t, status.Failure, st)
}

func TestParallelSequence_ExplicitSuccessThresholdBelowChildCount(t *testing.T) {
	p, err := registry.NewInstruction("ParallelSequence", "p")
	require.NoError(t, err)
	p.Attributes().Set("successThreshold", "1")
	p.AddChild(newFixed("a", status.Success))
	p.AddChild(newFixed("b", status.Running))

	st := p.Tick(ui.Base{}, nil)
	assert.Equal(t, status.Success, st, "one success should be enough to satisfy successThreshold=1")
}

func TestParallelSequence_HaltsRemainingChildrenOnResolution(t *testing.T) {
	p, err := registry.NewInstruction("ParallelSequence", "p")
	require.NoError(t, err)
	p.Attributes().Set("successThreshold", "1")
	running := newFixed("b", status.Running)
	p.AddChild(newFixed("a", status.Success))
	p.AddChild(running)

	p.Tick(ui.Base{}, nil)
	assert.True(t, running.Halted())
}
