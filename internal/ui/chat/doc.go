// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the interactive chat view of the ragchat TUI.

The package is organized by concern:

  - model.go: the Bubble Tea model holding conversation state, the
    turn runner, and all UI components
  - update.go: message dispatch and key handling
  - view.go: layout and rendering
  - turn.go: the bridge between the blocking turn runner and the
    Bubble Tea event loop
  - streaming.go: render-rate limiting for streamed text
  - abort.go: thread-safe cancellation of an in-flight turn
  - commands.go: slash commands (/help, /clear, /sources, ...)
  - export.go: conversation export to Markdown
  - keys.go: key bindings and context-sensitive help items
  - messages.go: Bubble Tea message types

# Streaming flow

A submitted question starts a turn on its own goroutine (turn.go).
Stream events are forwarded into the event loop with program.Send:
the cumulative raw text lands in a rate-limited snapshot buffer and
the viewport re-renders at most 30 times per second on StreamTickMsg.
When the turn completes, the processed result replaces the raw text
in one shot and citation markers become selectable.

# Citation selection

While the latest reply has resolved citations, the digit keys select
a source by rank and open the detail panel; Esc closes it. Selection
never leaves the terminal: details resolve from the turn's citation
store, falling back to an on-demand fetch, and degrade to a plain
notice when both fail.
*/
package chat
