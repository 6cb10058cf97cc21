// Package keymap maps host keyboard keys to the 16 keys of the CHIP-8 keypad.
//
// The left hand block of a QWERTY keyboard is used:
//
//	1 2 3 4      0 1 2 3
//	Q W E R  ->  4 5 6 7
//	A S D F      8 9 A B
//	Z X C V      C D E F
package keymap

import "unicode"

// Layout lists the host keys in keypad index order.
const Layout = "1234qwerasdfzxcv"

// Index returns the keypad index of a host key. Letters are matched case
// insensitive.
func Index(r rune) (int, bool) {
	r = unicode.ToLower(r)
	for index, key := range Layout {
		if key == r {
			return index, true
		}
	}
	return 0, false
}

// Keys returns the host keys in keypad index order.
func Keys() []rune {
	return []rune(Layout)
}
