package controller

import "strings"

// Button indexes the controller's shift-register output order.
type Button int

const (
	A Button = iota
	B
	Select
	Start
	Up
	Down
	Left
	Right
)

// Count is the number of bits clocked out per read.
const Count = 8

var buttonNames = [Count]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	if b < 0 || b >= Count {
		return "Unknown"
	}
	return buttonNames[b]
}

// ButtonVector is one read of all buttons, true meaning pressed.
type ButtonVector [Count]bool

// Pressed reports whether b is held.
func (v ButtonVector) Pressed(b Button) bool {
	if b < 0 || b >= Count {
		return false
	}
	return v[b]
}

// Any reports whether at least one button is held.
func (v ButtonVector) Any() bool {
	for _, p := range v {
		if p {
			return true
		}
	}
	return false
}

// Names lists the pressed buttons in shift order.
func (v ButtonVector) Names() []string {
	var out []string
	for i, p := range v {
		if p {
			out = append(out, Button(i).String())
		}
	}
	return out
}

// String renders the vector as eight 0/1 digits in shift order.
func (v ButtonVector) String() string {
	var sb strings.Builder
	for _, p := range v {
		if p {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// VectorOf builds a vector with the given buttons pressed.
func VectorOf(buttons ...Button) ButtonVector {
	var v ButtonVector
	for _, b := range buttons {
		if b >= 0 && b < Count {
			v[b] = true
		}
	}
	return v
}
