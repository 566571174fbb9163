package flow

import (
	"math/rand"
	"strings"
	"unicode"
)

// InputBuffer accumulates typed characters with a length cap. A masked
// buffer displays asterisks, for PIN entry.
type InputBuffer struct {
	value     []rune
	maxLength int
	masked    bool
	digitOnly bool
}

// NewInputBuffer creates an empty buffer.
func NewInputBuffer(maxLength int, masked, digitOnly bool) *InputBuffer {
	return &InputBuffer{maxLength: maxLength, masked: masked, digitOnly: digitOnly}
}

// Add appends one character. Returns false when the buffer is full or
// the character is rejected by the digit filter.
func (b *InputBuffer) Add(ch rune) bool {
	if len(b.value) >= b.maxLength {
		return false
	}
	if b.digitOnly && !unicode.IsDigit(ch) {
		return false
	}
	if !b.digitOnly && !unicode.IsPrint(ch) {
		return false
	}
	b.value = append(b.value, ch)
	return true
}

// Backspace removes the last character. Returns false when empty.
func (b *InputBuffer) Backspace() bool {
	if len(b.value) == 0 {
		return false
	}
	b.value = b.value[:len(b.value)-1]
	return true
}

// Clear empties the buffer.
func (b *InputBuffer) Clear() {
	b.value = b.value[:0]
}

// Value returns the raw accumulated text.
func (b *InputBuffer) Value() string {
	return string(b.value)
}

// Display returns the on-screen form, masked when the buffer is a PIN.
func (b *InputBuffer) Display() string {
	if b.masked {
		return strings.Repeat("*", len(b.value))
	}
	return string(b.value)
}

// Len reports the number of accumulated characters.
func (b *InputBuffer) Len() int {
	return len(b.value)
}

// pinPadKeys are the physical keys the randomized PIN pad maps digits
// onto, in grid order.
var pinPadKeys = []rune{'t', 'y', 'u', 'g', 'h', 'j', 'v', 'b', 'n', 'm'}

// PinKey is one cell of the rendered PIN pad layout. A zero Key marks
// an empty cell.
type PinKey struct {
	Key   rune
	Digit rune
}

// PinPad maps ten physical keys to a shuffled digit assignment. The
// mapping is reshuffled on every PIN prompt so an observer cannot infer
// digits from hand position.
type PinPad struct {
	mapping map[rune]rune
	shuffle func(n int, swap func(i, j int))
}

// NewPinPad creates a pad with a fresh random mapping.
func NewPinPad() *PinPad {
	p := &PinPad{shuffle: rand.Shuffle}
	p.Reshuffle()
	return p
}

// Reshuffle assigns a new random digit to every key.
func (p *PinPad) Reshuffle() {
	digits := []rune{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}
	p.shuffle(len(digits), func(i, j int) {
		digits[i], digits[j] = digits[j], digits[i]
	})

	p.mapping = make(map[rune]rune, len(pinPadKeys))
	for i, key := range pinPadKeys {
		p.mapping[key] = digits[i]
	}
}

// Digit resolves a physical key to its currently assigned digit.
func (p *PinPad) Digit(key rune) (rune, bool) {
	d, ok := p.mapping[key]
	return d, ok
}

// Layout returns the 3x3+1 grid for rendering. The zero-digit key sits
// bottom center, flanked by empty cells.
func (p *PinPad) Layout() [][]PinKey {
	grid := [][]rune{
		{'t', 'y', 'u'},
		{'g', 'h', 'j'},
		{'v', 'b', 'n'},
		{0, 'm', 0},
	}

	layout := make([][]PinKey, len(grid))
	for i, row := range grid {
		cells := make([]PinKey, len(row))
		for j, key := range row {
			if key != 0 {
				cells[j] = PinKey{Key: key, Digit: p.mapping[key]}
			}
		}
		layout[i] = cells
	}
	return layout
}
