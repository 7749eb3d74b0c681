package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_Advance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		schedule  []time.Duration
		stop      []int
		advance   time.Duration
		wantFired []int
	}{
		{
			name:      "fires timers in due order",
			schedule:  []time.Duration{300 * time.Millisecond, 100 * time.Millisecond},
			advance:   time.Second,
			wantFired: []int{1, 0},
		},
		{
			name:      "does not fire timers beyond the window",
			schedule:  []time.Duration{100 * time.Millisecond, 2 * time.Second},
			advance:   time.Second,
			wantFired: []int{0},
		},
		{
			name:      "stopped timers never fire",
			schedule:  []time.Duration{100 * time.Millisecond, 200 * time.Millisecond},
			stop:      []int{0},
			advance:   time.Second,
			wantFired: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFake(start)
			var fired []int
			timers := make([]Timer, len(tt.schedule))
			for i, d := range tt.schedule {
				i := i
				timers[i] = c.AfterFunc(d, func() { fired = append(fired, i) })
			}
			for _, i := range tt.stop {
				assert.True(t, timers[i].Stop())
			}

			c.Advance(tt.advance)

			assert.Equal(t, tt.wantFired, fired)
			assert.Equal(t, start.Add(tt.advance), c.Now())
		})
	}
}

func TestFake_ChainedTimers(t *testing.T) {
	c := NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	var steps int
	var step func()
	step = func() {
		steps++
		if steps < 3 {
			c.AfterFunc(100*time.Millisecond, step)
		}
	}
	c.AfterFunc(100*time.Millisecond, step)

	c.Advance(250 * time.Millisecond)
	assert.Equal(t, 2, steps)
	assert.Equal(t, 1, c.Pending())

	c.Advance(50 * time.Millisecond)
	assert.Equal(t, 3, steps)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeTimer_StopAfterFire(t *testing.T) {
	c := NewFake(time.Now())
	timer := c.AfterFunc(time.Millisecond, func() {})
	c.Advance(time.Millisecond)
	assert.False(t, timer.Stop())
}
