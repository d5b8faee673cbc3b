// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package motion

import (
	"math"
	"time"
)

// releaseStaleAfter zeroes the release velocity when the pointer rested
// this long before lifting.
const releaseStaleAfter = 100 * time.Millisecond

// dragState tracks an in-progress pointer gesture.
type dragState struct {
	down     bool // pointer pressed on this column
	active   bool // movement crossed the drag threshold
	startPos float64
	startY   float64

	lastY, prevY float64
	lastT, prevT time.Duration
	hasPrev      bool
}

// Wheel applies a wheel nudge. Positive delta scrolls forward. The impulse
// is added to manual velocity and autonomous motion pauses for the
// cooldown period.
func (c *Controller) Wheel(deltaY float64, now time.Duration) {
	if c.drag.active {
		return
	}
	c.manual = clampMagnitude(c.manual+deltaY*c.cfg.WheelImpulse, c.manualCap())
	c.cooldownDeadline = now + c.cfg.Cooldown
}

// PointerDown latches the start of a potential drag at pointer y.
func (c *Controller) PointerDown(y float64, now time.Duration) {
	c.drag = dragState{
		down:     true,
		startPos: c.position,
		startY:   y,
		lastY:    y,
		lastT:    now,
	}
}

// PointerMove follows the pointer once it has travelled past the drag
// threshold. While dragging, position tracks the pointer directly.
func (c *Controller) PointerMove(y float64, now time.Duration) {
	if !c.drag.down {
		return
	}
	if !c.drag.active {
		if math.Abs(y-c.drag.startY) < c.cfg.DragThreshold {
			return
		}
		c.drag.active = true
		c.manual = 0
		c.speed = 0
	}

	c.drag.prevY, c.drag.prevT = c.drag.lastY, c.drag.lastT
	c.drag.lastY, c.drag.lastT = y, now
	c.drag.hasPrev = true

	// content moves opposite to the finger
	c.position = c.drag.startPos - (y - c.drag.startY)
	if c.position < 0 {
		c.position = 0
	}
	if c.position > c.maxScroll {
		c.position = c.maxScroll
	}
	c.cooldownDeadline = now + c.cfg.Cooldown
}

// PointerUp ends the gesture. A completed drag converts its release
// velocity into a capped manual impulse; a tap does nothing.
func (c *Controller) PointerUp(now time.Duration) {
	if !c.drag.down {
		return
	}
	wasDragging := c.drag.active
	v := c.releaseVelocity(now)
	c.drag = dragState{}
	if !wasDragging {
		return
	}

	c.manual = clampMagnitude(v*c.cfg.ReleaseScale, c.manualCap())
	c.cooldownDeadline = now + c.cfg.Cooldown
}

// PointerCancel abandons the gesture without an impulse.
func (c *Controller) PointerCancel(now time.Duration) {
	if !c.drag.down {
		return
	}
	wasDragging := c.drag.active
	c.drag = dragState{}
	if wasDragging {
		c.cooldownDeadline = now + c.cfg.Cooldown
	}
}

// releaseVelocity estimates scroll velocity in px/s from the last two
// pointer samples.
func (c *Controller) releaseVelocity(now time.Duration) float64 {
	if !c.drag.active || !c.drag.hasPrev {
		return 0
	}
	if now-c.drag.lastT > releaseStaleAfter {
		return 0
	}
	dt := (c.drag.lastT - c.drag.prevT).Seconds()
	if dt <= 0 {
		return 0
	}
	return -(c.drag.lastY - c.drag.prevY) / dt
}
