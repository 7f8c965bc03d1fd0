// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "strconv"

// fmtCount renders a count with thousand separators, for the input
// character counter and the welcome screen's document tally.
func fmtCount(n int) string {
	s := strconv.Itoa(n)
	start := 0
	if n < 0 {
		start = 1 // keep the sign out of the grouping
	}

	digits := len(s) - start
	if digits <= 3 {
		return s
	}

	var out []byte
	out = append(out, s[:start]...)
	lead := digits % 3
	if lead > 0 {
		out = append(out, s[start:start+lead]...)
	}
	for i := start + lead; i < len(s); i += 3 {
		if len(out) > start {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
