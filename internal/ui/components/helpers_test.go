// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "testing"

func TestFmtCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{4096, "4,096"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-12, "-12"},
		{-4096, "-4,096"},
	}
	for _, tc := range tests {
		if got := fmtCount(tc.in); got != tc.want {
			t.Errorf("fmtCount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFmtCountMatchesCharCounterFormat(t *testing.T) {
	// The input area renders "1,234 / 4,096 chars".
	got := fmtCount(1234) + " / " + fmtCount(4096) + " chars"
	if got != "1,234 / 4,096 chars" {
		t.Errorf("counter line = %q", got)
	}
}
