package profiler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state string

func (s state) String() string { return string(s) }

func TestTickLogsOncePerInterval(t *testing.T) {
	p := NewProfiler()
	var lines []string
	p.logf = func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }

	p.SetInterval(time.Hour)
	assert.False(t, p.Tick(FrameStats{}))
	assert.Empty(t, lines)

	p.SetInterval(0)
	require.True(t, p.Tick(FrameStats{DrawCalls: 3, Instances: 67, ShadowState: state("accumulating"), ShadowFrames: 12}))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Draws: 3 (67 instances")
	assert.Contains(t, lines[0], "Shadow: accumulating 12")
	assert.Positive(t, p.FPS())
}

func TestTickWithoutShadowState(t *testing.T) {
	p := NewProfiler()
	var line string
	p.logf = func(format string, args ...any) { line = fmt.Sprintf(format, args...) }
	p.SetInterval(0)

	p.Tick(FrameStats{})
	assert.Contains(t, line, "Shadow: -")
}
