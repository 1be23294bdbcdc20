package dncp

import (
	"math/rand"
	"time"
)

// Default Trickle constants (spec §6, original_source/dncp_proto.h).
const (
	DefaultImin = 200 * time.Millisecond
	DefaultImax = 40 * time.Second
	DefaultK    = 1
)

// Trickle is a per-endpoint Trickle timer (spec §4.4): it suppresses
// redundant broadcasts when recent messages have been consistent with
// local state, and fires quickly when inconsistency is detected.
type Trickle struct {
	imin, imax time.Duration
	k          int
	rng        *rand.Rand

	interval    time.Duration
	intervalBeg time.Time
	fireAt      time.Time
	intervalEnd time.Time
	fired       bool
	c           int
}

// NewTrickle creates a Trickle timer with the given parameters. seed
// seeds the jitter source; callers typically derive it from the node
// identity or a monotonic clock reading.
func NewTrickle(imin, imax time.Duration, k int, seed int64) *Trickle {
	return &Trickle{
		imin: imin,
		imax: imax,
		k:    k,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Start begins the first Trickle interval at I = Imin (spec §4.4; the
// first fire therefore lands in [Imin/2, Imin), matching §6's note that
// Imin is halved for the very first sample). It returns the next absolute
// deadline the caller's scheduler should wait for.
func (t *Trickle) Start(now time.Time) time.Time {
	t.interval = t.imin
	t.beginInterval(now)
	return t.NextDeadline()
}

func (t *Trickle) beginInterval(now time.Time) {
	t.intervalBeg = now
	half := t.interval / 2
	jitter := time.Duration(0)
	if t.interval > half {
		jitter = time.Duration(t.rng.Int63n(int64(t.interval - half)))
	}
	t.fireAt = now.Add(half + jitter)
	t.intervalEnd = now.Add(t.interval)
	t.fired = false
	t.c = 0
}

// NextDeadline returns the next absolute time Tick should be called.
func (t *Trickle) NextDeadline() time.Time {
	if !t.fired && t.fireAt.Before(t.intervalEnd) {
		return t.fireAt
	}
	return t.intervalEnd
}

// OnConsistent records an inbound message whose summary matches local
// state (spec §4.4 "c += 1").
func (t *Trickle) OnConsistent() {
	t.c++
}

// OnInconsistentMessage handles an inbound message that disagrees with
// local state: if I > Imin, resets I to Imin and starts a new interval;
// otherwise the event is ignored (spec §4.4).
func (t *Trickle) OnInconsistentMessage(now time.Time) {
	if t.interval <= t.imin {
		return
	}
	t.interval = t.imin
	t.beginInterval(now)
}

// OnExternalInconsistent handles a local event (publish, peer add/remove)
// that invalidates local state: always resets I to Imin (spec §4.4).
func (t *Trickle) OnExternalInconsistent(now time.Time) {
	t.interval = t.imin
	t.beginInterval(now)
}

// Tick processes the passage of time up to now, firing the "t" event
// and/or the interval-end event if due. It returns whether the caller
// should emit a network-state summary broadcast, and the next deadline.
func (t *Trickle) Tick(now time.Time) (shouldEmit bool, next time.Time) {
	if !t.fired && !now.Before(t.fireAt) {
		t.fired = true
		if t.c < t.k {
			shouldEmit = true
		}
	}
	if !now.Before(t.intervalEnd) {
		t.interval *= 2
		if t.interval > t.imax {
			t.interval = t.imax
		}
		t.beginInterval(now)
	}
	return shouldEmit, t.NextDeadline()
}

// Interval returns the current Trickle interval I, for diagnostics.
func (t *Trickle) Interval() time.Duration {
	return t.interval
}
