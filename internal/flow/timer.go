package flow

import "time"

// deadline is a cancellable monotonic timer checked once per tick.
// States arm their own deadlines on entry and cancel them on exit, so a
// stale timer can never fire into a destroyed state.
type deadline struct {
	at    time.Time
	armed bool
}

func (d *deadline) arm(now time.Time, dur time.Duration) {
	d.at = now.Add(dur)
	d.armed = true
}

func (d *deadline) cancel() {
	d.armed = false
}

func (d *deadline) expired(now time.Time) bool {
	return d.armed && !now.Before(d.at)
}

// remaining reports whole seconds left, clamped at zero, for countdown
// displays.
func (d *deadline) remaining(now time.Time) int {
	if !d.armed {
		return 0
	}
	left := d.at.Sub(now)
	if left < 0 {
		return 0
	}
	return int(left.Seconds() + 0.999)
}
