package hand

import "github.com/cagatay-softgineer/MediaPipe/internal/landmark"

// Array holds one hand with exactly 21 slots. A nil slot was not observed
// this frame.
type Array [landmark.HandPoints]*landmark.Point

// Observed returns the number of non-nil slots.
func (a Array) Observed() int {
	n := 0
	for _, p := range a {
		if p != nil {
			n++
		}
	}
	return n
}

// Empty reports whether no slot was observed.
func (a Array) Empty() bool {
	return a.Observed() == 0
}

// Normalize maps a raw hand landmark list onto a 21-slot Array. Entries past
// the 21st are ignored, missing or nil entries leave their slot nil. Points
// are copied so the result never aliases raw.
func Normalize(raw []*landmark.Point) Array {
	var a Array
	for i := 0; i < landmark.HandPoints && i < len(raw); i++ {
		if raw[i] == nil {
			continue
		}
		p := *raw[i]
		a[i] = &p
	}
	return a
}
