// Package stroke sequences stroke-order playback for a character.
package stroke

import (
	"sync"
	"time"

	"github.com/at-ishikawa/literacy/internal/clock"
)

type State int

const (
	StateIdle State = iota
	StatePlaying
)

func (s State) String() string {
	if s == StatePlaying {
		return "playing"
	}
	return "idle"
}

type Emphasis int

const (
	EmphasisNone Emphasis = iota
	EmphasisHighlight
	EmphasisDim
)

func (e Emphasis) String() string {
	switch e {
	case EmphasisHighlight:
		return "highlight"
	case EmphasisDim:
		return "dim"
	default:
		return "none"
	}
}

// Timing is the duration of each phase of one stroke.
type Timing struct {
	Highlight time.Duration
	Dim       time.Duration
	// Pause follows the dim phase before the next stroke starts.
	Pause time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Highlight: 800 * time.Millisecond,
		Dim:       200 * time.Millisecond,
		Pause:     500 * time.Millisecond,
	}
}

type Snapshot struct {
	State    State
	Index    int
	Emphasis Emphasis
	Strokes  []string
	// Visible[i] is true for every stroke up to and including Index.
	Visible []bool
}

// Player plays strokes one after another: highlight, dim, pause, next.
type Player struct {
	clock  clock.Clock
	timing Timing

	mu         sync.Mutex
	strokes    []string
	state      State
	index      int
	emphasis   Emphasis
	timer      clock.Timer
	generation uint64
	observers  map[int]func(Snapshot)
	nextID     int
}

func NewPlayer(strokes []string, timing Timing, clk clock.Clock) *Player {
	return &Player{
		clock:     clk,
		timing:    timing,
		strokes:   append([]string(nil), strokes...),
		observers: make(map[int]func(Snapshot)),
	}
}

// Play starts playback from the first stroke. It returns false if the player is
// already playing or there is nothing to play.
func (p *Player) Play() bool {
	p.mu.Lock()
	if p.state == StatePlaying || len(p.strokes) == 0 {
		p.mu.Unlock()
		return false
	}
	p.state = StatePlaying
	p.generation++
	p.startStrokeLocked(0)
	p.unlockAndNotify()
	return true
}

// Reset stops playback immediately. Callbacks scheduled before the reset never take effect.
func (p *Player) Reset() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.generation++
	p.state = StateIdle
	p.index = 0
	p.emphasis = EmphasisNone
	p.unlockAndNotify()
}

func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Subscribe registers f to be called after every change. The returned function unsubscribes.
func (p *Player) Subscribe(f func(Snapshot)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.observers[id] = f
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.observers, id)
	}
}

func (p *Player) startStrokeLocked(index int) {
	p.index = index
	p.emphasis = EmphasisHighlight
	p.scheduleLocked(p.timing.Highlight, p.dim)
}

func (p *Player) dim() {
	p.emphasis = EmphasisDim
	p.scheduleLocked(p.timing.Dim+p.timing.Pause, p.next)
}

func (p *Player) next() {
	if p.index+1 < len(p.strokes) {
		p.startStrokeLocked(p.index + 1)
		return
	}
	p.state = StateIdle
	p.emphasis = EmphasisNone
	p.timer = nil
}

// scheduleLocked runs step under the lock after d unless the generation changed meanwhile.
func (p *Player) scheduleLocked(d time.Duration, step func()) {
	generation := p.generation
	p.timer = p.clock.AfterFunc(d, func() {
		p.mu.Lock()
		if p.generation != generation || p.state != StatePlaying {
			p.mu.Unlock()
			return
		}
		step()
		p.unlockAndNotify()
	})
}

func (p *Player) snapshotLocked() Snapshot {
	visible := make([]bool, len(p.strokes))
	for i := range visible {
		visible[i] = i <= p.index
	}
	return Snapshot{
		State:    p.state,
		Index:    p.index,
		Emphasis: p.emphasis,
		Strokes:  append([]string(nil), p.strokes...),
		Visible:  visible,
	}
}

func (p *Player) unlockAndNotify() {
	snapshot := p.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(p.observers))
	for _, f := range p.observers {
		observers = append(observers, f)
	}
	p.mu.Unlock()

	for _, f := range observers {
		f(snapshot)
	}
}
