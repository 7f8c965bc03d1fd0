// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Idle housekeeping for the interactive chat. A once-a-second tick
// drives two countdowns: an idle deadline (warn in the status bar,
// then quit) and a transcript autosave that fires while the
// conversation has changes no export has picked up yet.

// Housekeeping holds the intervals the tick works against. Values come
// from the [session] section of the config file. A zero or negative
// FlushEvery disables autosave.
type Housekeeping struct {
	// IdleAfter quits the chat after this long without input.
	IdleAfter time.Duration
	// WarnBefore starts the closing countdown this long before the deadline.
	WarnBefore time.Duration
	// FlushEvery is how often to autosave an unsaved transcript.
	FlushEvery time.Duration
}

// Housekeeper tracks input activity and unsaved-transcript state for
// one chat. Bubble Tea copies the model on every update, so the chat
// model holds a *Housekeeper; all state sits behind one mutex.
type Housekeeper struct {
	mu   sync.Mutex
	opts Housekeeping

	lastSeen time.Time
	warned   bool

	unsaved   bool
	lastFlush time.Time
}

// NewHousekeeper starts the countdowns from now.
func NewHousekeeper(opts Housekeeping) *Housekeeper {
	now := time.Now()
	return &Housekeeper{
		opts:      opts,
		lastSeen:  now,
		lastFlush: now,
	}
}

// Touch records user input. The idle countdown restarts and a
// previously shown warning may fire again later.
func (h *Housekeeper) Touch() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSeen = time.Now()
	h.warned = false
}

// MarkUnsaved flags the transcript as having changes since the last
// save. Called when a new message lands in the conversation.
func (h *Housekeeper) MarkUnsaved() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsaved = true
}

// MarkSaved clears the unsaved flag after a successful export and
// pushes the next autosave a full interval out.
func (h *Housekeeper) MarkSaved() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsaved = false
	h.lastFlush = time.Now()
}

// HasUnsaved reports whether the transcript changed since the last save.
func (h *Housekeeper) HasUnsaved() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unsaved
}

// Idle returns the time since the last recorded input.
func (h *Housekeeper) Idle() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return time.Since(h.lastSeen)
}

// TimeLeft returns the time until the idle deadline, floored at zero.
func (h *Housekeeper) TimeLeft() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	left := h.opts.IdleAfter - time.Since(h.lastSeen)
	if left < 0 {
		return 0
	}
	return left
}

// =============================================================================
// TICK LOOP
// =============================================================================

// TickMsg is the once-a-second housekeeping pulse.
type TickMsg struct{}

// IdleWarningMsg announces the closing countdown. Left is the time
// until the chat quits.
type IdleWarningMsg struct {
	Left time.Duration
}

// IdleQuitMsg asks the program to exit after the idle deadline passed.
type IdleQuitMsg struct{}

// AutosaveMsg asks the chat to export the unsaved transcript.
type AutosaveMsg struct{}

// tickEvents is what one housekeeping pass decided.
type tickEvents struct {
	warn  bool
	left  time.Duration
	quit  bool
	flush bool
}

// advance evaluates the countdowns at the given instant. The warning
// fires once per idle stretch; Touch re-arms it. The flush timestamp
// moves forward as soon as a flush is requested so a slow export does
// not queue another one on the next tick.
func (h *Housekeeper) advance(now time.Time) tickEvents {
	h.mu.Lock()
	defer h.mu.Unlock()

	var ev tickEvents
	ev.left = h.opts.IdleAfter - now.Sub(h.lastSeen)
	if ev.left <= 0 {
		ev.left = 0
		ev.quit = true
		return ev
	}

	if !h.warned && ev.left <= h.opts.WarnBefore {
		h.warned = true
		ev.warn = true
	}

	if h.opts.FlushEvery > 0 && h.unsaved && now.Sub(h.lastFlush) >= h.opts.FlushEvery {
		h.lastFlush = now
		ev.flush = true
	}
	return ev
}

// Tick schedules the next housekeeping pass one second out.
func (h *Housekeeper) Tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// OnTick runs one housekeeping pass and re-arms the tick. Past the
// idle deadline it emits IdleQuitMsg and stops ticking.
func (h *Housekeeper) OnTick() tea.Cmd {
	ev := h.advance(time.Now())
	if ev.quit {
		return func() tea.Msg { return IdleQuitMsg{} }
	}

	cmds := []tea.Cmd{h.Tick()}
	if ev.warn {
		left := ev.left
		cmds = append(cmds, func() tea.Msg { return IdleWarningMsg{Left: left} })
	}
	if ev.flush {
		cmds = append(cmds, func() tea.Msg { return AutosaveMsg{} })
	}
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// FormatDuration renders a duration for the status bar: "45s",
// "2m", "1m 30s".
func FormatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	if secs < 0 {
		secs = 0
	}
	if secs < 60 {
		return strconv.Itoa(secs) + "s"
	}
	mins, rem := secs/60, secs%60
	if rem == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(rem) + "s"
}
