package aidj

import "image/color"

// PageColours maps a page assignment (0 = unassigned, 1-4 = pages A-D) to
// its display color. Index 0 is the single-color "active" look used when
// paging is disabled. The identity of a page must round-trip through this
// table deterministically, which is the only reason it lives in the core.
var PageColours = [NumPages + 1]color.NRGBA{
	{R: 0x5a, G: 0x7a, B: 0x9a, A: 0xff},
	{R: 0x9a, G: 0x7a, B: 0x5a, A: 0xff},
	{R: 0x6a, G: 0x8a, B: 0x6a, A: 0xff},
	{R: 0x8a, G: 0x5a, B: 0x6a, A: 0xff},
	{R: 0x7a, G: 0x6a, B: 0x8a, A: 0xff},
}

// PageColour returns the display color for a page index, falling back to the
// unassigned color for out-of-range input.
func PageColour(page int) color.NRGBA {
	if page < 0 || page >= len(PageColours) {
		return PageColours[0]
	}
	return PageColours[page]
}
