// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

// Package motion implements the per-column scroll controller.
//
// A Controller is advanced once per animation frame by Tick. Each tick
// decays manual velocity, eases speed toward the target, integrates position
// and clamps it to [0, MaxScroll]. Wheel nudges and drag gestures feed
// manual velocity and pause autonomous motion for a short cooldown.
//
// Time is never read from the wall clock: every call carries the frame
// timestamp, so controllers are deterministic under test.
package motion

import (
	"math"
	"time"

	"github.com/tomtom215/storefeed/internal/feed"
)

// PauseSignals are the external conditions that hold autonomous motion.
// They are ORed together with the controller's own interaction cooldown.
type PauseSignals struct {
	// Hover is true while the pointer rests over the column. Ignored on
	// touch-capable devices.
	Hover bool `json:"hover"`

	// ModalOpen is true while a product modal is shown.
	ModalOpen bool `json:"modal_open"`

	// AuxMenuOpen is true while an auxiliary menu is shown.
	AuxMenuOpen bool `json:"aux_menu_open"`

	// FeedEnded is true once every column has completed.
	FeedEnded bool `json:"feed_ended"`
}

// Frame is the input of a single tick.
type Frame struct {
	// Now is the frame timestamp on the session clock.
	Now time.Duration

	// Signals are the pause inputs for this frame.
	Signals PauseSignals

	// CycleToken is the coordinator's current token. A change resets the
	// controller before integrating.
	CycleToken uint64
}

// Metrics are the externally measured scroll dimensions of a column.
type Metrics struct {
	ContentHeight  float64 `json:"content_height"`
	ViewportHeight float64 `json:"viewport_height"`
}

// MaxScroll returns the scroll limit, never negative.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (m Metrics) MaxScroll() float64 {
	if d := m.ContentHeight - m.ViewportHeight; d > 0 {
		return d
	}
	return 0
}

// State is a read-only snapshot of a controller.
type State struct {
	Column           int           `json:"column"`
	Position         float64       `json:"position"`
	Speed            float64       `json:"speed"`
	TargetSpeed      float64       `json:"target_speed"`
	ManualVelocity   float64       `json:"manual_velocity"`
	BaseSpeed        float64       `json:"base_speed"`
	MaxScroll        float64       `json:"max_scroll"`
	Dragging         bool          `json:"dragging"`
	Paused           bool          `json:"paused"`
	CooldownDeadline time.Duration `json:"cooldown_deadline"`
	CycleToken       uint64        `json:"cycle_token"`
	EndZoneReached   bool          `json:"end_zone_reached"`
	Completed        bool          `json:"completed"`
}

// Controller drives one column.
// It is not safe for concurrent use; the session serializes access.
type Controller struct {
	cfg    feed.MotionConfig
	column int
	touch  bool

	position  float64
	speed     float64
	target    float64
	manual    float64
	baseSpeed float64
	maxScroll float64
	metrics   Metrics
	paused    bool

	cooldownDeadline time.Duration
	now              time.Duration
	started          bool
	cycleToken       uint64

	endZoneFired  bool
	completeFired bool

	drag dragState
}

// NewController creates a controller for column with the given initial
// metrics. BaseSpeed is derived from the content height and the configured
// scroll duration.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewController(cfg feed.MotionConfig, column int, metrics Metrics, touchCapable bool) *Controller {
	c := &Controller{
		cfg:    cfg,
		column: column,
		touch:  touchCapable,
	}
	c.metrics = metrics
	c.maxScroll = metrics.MaxScroll()
	c.baseSpeed = c.speedFor(metrics)
	return c
}

// Tick advances the controller by one frame and returns the events raised.
//
//nolint:gocritic // hugeParam: Frame is passed by value as an immutable input
func (c *Controller) Tick(frame Frame) []feed.Event {
	if frame.CycleToken != c.cycleToken {
		c.cycleToken = frame.CycleToken
		c.Reset()
	}

	dt := 0.0
	if c.started {
		d := frame.Now - c.now
		if d < 0 {
			d = 0
		}
		if d > c.cfg.MaxFrameDelta {
			d = c.cfg.MaxFrameDelta
		}
		dt = d.Seconds()
	}
	c.started = true
	c.now = frame.Now

	if c.manual != 0 {
		c.manual *= math.Exp(-c.cfg.DecayRate * dt)
		if math.Abs(c.manual) < c.cfg.VelocityEpsilon {
			c.manual = 0
		}
	}

	c.paused = c.pausedBy(frame.Signals, frame.Now)
	if c.paused {
		c.target = 0
	} else {
		c.target = c.baseSpeed
	}

	if c.drag.active {
		// position follows the pointer directly
		c.speed = 0
	} else {
		c.speed += (c.target + c.manual - c.speed) * c.cfg.Blend
		c.position += c.speed * dt
		c.clamp()
	}

	return c.events()
}

// pausedBy ORs the external pause signals with the interaction cooldown.
func (c *Controller) pausedBy(s PauseSignals, now time.Duration) bool {
	hover := s.Hover && !c.touch
	cooldown := now < c.cooldownDeadline
	return hover || s.ModalOpen || s.AuxMenuOpen || s.FeedEnded || cooldown
}

// clamp keeps position within [0, maxScroll]. Pushing outward against a
// bound kills both the eased speed and the manual velocity.
func (c *Controller) clamp() {
	switch {
	case c.position < 0:
		c.position = 0
		if c.speed < 0 {
			c.speed = 0
			c.manual = 0
		}
	case c.position > c.maxScroll:
		c.position = c.maxScroll
		if c.speed > 0 {
			c.speed = 0
			c.manual = 0
		}
	}
}

// events raises the end-zone and completion latches.
func (c *Controller) events() []feed.Event {
	var out []feed.Event
	if !c.endZoneFired && c.position >= c.maxScroll-c.cfg.EndZoneHeight {
		c.endZoneFired = true
		out = append(out, feed.Event{Type: feed.EventReachedEndZone, Column: c.column})
	}
	if !c.completeFired && (c.maxScroll <= 0 || c.position >= c.maxScroll) {
		c.completeFired = true
		out = append(out, feed.Event{Type: feed.EventCompleted, Column: c.column})
	}
	return out
}

// rearm clears latches whose threshold lies ahead of the current position.
func (c *Controller) rearm() {
	if c.position < c.maxScroll-c.cfg.EndZoneHeight {
		c.endZoneFired = false
	}
	if c.maxScroll > 0 && c.position < c.maxScroll {
		c.completeFired = false
	}
}

// SetMetrics applies new dimensions after cards were appended. Position is
// kept; latches re-arm when the tail moved beyond the current position.
//
//nolint:gocritic // hugeParam: Metrics is small and passed by value
func (c *Controller) SetMetrics(m Metrics) {
	old := c.maxScroll
	c.metrics = m
	c.maxScroll = m.MaxScroll()
	if c.position > c.maxScroll {
		c.position = c.maxScroll
	}
	if c.baseSpeed == 0 {
		c.baseSpeed = c.speedFor(m)
	}
	if c.maxScroll > old {
		c.rearm()
	}
}

// Reflow applies new dimensions after a layout change (card height or
// viewport). Position is rescaled proportionally so the visible region is
// preserved, and base speed is recomputed.
//
//nolint:gocritic // hugeParam: Metrics is small and passed by value
func (c *Controller) Reflow(m Metrics) {
	oldMax := c.maxScroll
	newMax := m.MaxScroll()
	if oldMax > 0 {
		c.position = c.position * newMax / oldMax
	} else {
		c.position = 0
	}
	c.metrics = m
	c.maxScroll = newMax
	c.baseSpeed = c.speedFor(m)
	if c.position > c.maxScroll {
		c.position = c.maxScroll
	}
	c.rearm()
}

// Reset returns the controller to the top of its deck with no motion, no
// gesture, no cooldown and armed latches.
func (c *Controller) Reset() {
	c.position = 0
	c.speed = 0
	c.target = 0
	c.manual = 0
	c.paused = false
	c.cooldownDeadline = 0
	c.endZoneFired = false
	c.completeFired = false
	c.drag = dragState{}
}

func (c *Controller) speedFor(m Metrics) float64 {
	secs := c.cfg.ScrollDuration.Seconds()
	if secs <= 0 || m.ContentHeight <= 0 {
		return 0
	}
	return m.ContentHeight / secs
}

// manualCap bounds manual velocity magnitude.
func (c *Controller) manualCap() float64 {
	return math.Max(c.cfg.ReleaseCapMultiple*c.baseSpeed, c.cfg.ReleaseCapFloor)
}

// Column returns the column index.
func (c *Controller) Column() int {
	return c.column
}

// Position returns the current scroll position.
func (c *Controller) Position() float64 {
	return c.position
}

// Metrics returns the current dimensions.
func (c *Controller) Metrics() Metrics {
	return c.metrics
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	return State{
		Column:           c.column,
		Position:         c.position,
		Speed:            c.speed,
		TargetSpeed:      c.target,
		ManualVelocity:   c.manual,
		BaseSpeed:        c.baseSpeed,
		MaxScroll:        c.maxScroll,
		Dragging:         c.drag.active,
		Paused:           c.paused,
		CooldownDeadline: c.cooldownDeadline,
		CycleToken:       c.cycleToken,
		EndZoneReached:   c.endZoneFired,
		Completed:        c.completeFired,
	}
}

func clampMagnitude(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
