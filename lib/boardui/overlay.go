// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// spliceOverlay replaces a rectangular region of a rendered view with
// overlay content, starting at (anchorX, anchorY) in screen
// coordinates. ANSI-aware truncation keeps the escape sequences of the
// underlying view intact on both sides of the overlay.
func spliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		y := anchorY + index
		if y < 0 || y >= len(viewLines) {
			continue
		}

		viewLine := viewLines[y]
		viewWidth := ansi.StringWidth(viewLine)

		var spliced strings.Builder
		if anchorX > 0 {
			spliced.WriteString(ansi.Truncate(viewLine, anchorX, ""))
		}
		spliced.WriteString("\x1b[0m")
		spliced.WriteString(overlayLine)
		spliced.WriteString("\x1b[0m")

		suffixStart := anchorX + overlayWidth
		if suffixStart < viewWidth {
			spliced.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}

		viewLines[y] = spliced.String()
	}

	return strings.Join(viewLines, "\n")
}

// centerAnchor computes the top-left anchor that centers a block of
// the given size on the screen, clamped to non-negative coordinates.
func centerAnchor(screenWidth, screenHeight, blockWidth, blockHeight int) (int, int) {
	x := (screenWidth - blockWidth) / 2
	y := (screenHeight - blockHeight) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
