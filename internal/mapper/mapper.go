// Package mapper translates raw controller buttons into gamepad HID semantics.
package mapper

import (
	"github.com/srg/blepad/internal/controller"
	"github.com/srg/blepad/internal/hid"
)

// HID button positions the controller's face buttons land on. The remaining
// positions (2..9) stay off; the controller has no shoulder or trigger buttons.
const (
	PositionA      = 0
	PositionB      = 1
	PositionSelect = 10
	PositionStart  = 11
)

type hatRule struct {
	held    []controller.Button
	without controller.Button
	hat     hid.Hat
}

const none controller.Button = -1

// hatRules are evaluated in order, first match wins. Diagonals come first. A single
// direction only counts when its opposite is released, so Up+Down and Left+Right
// held on their own match nothing and read as centered.
var hatRules = []hatRule{
	{[]controller.Button{controller.Up, controller.Right}, none, hid.HatUpRight},
	{[]controller.Button{controller.Right, controller.Down}, none, hid.HatDownRight},
	{[]controller.Button{controller.Down, controller.Left}, none, hid.HatDownLeft},
	{[]controller.Button{controller.Left, controller.Up}, none, hid.HatUpLeft},
	{[]controller.Button{controller.Up}, controller.Down, hid.HatUp},
	{[]controller.Button{controller.Right}, controller.Left, hid.HatRight},
	{[]controller.Button{controller.Down}, controller.Up, hid.HatDown},
	{[]controller.Button{controller.Left}, controller.Right, hid.HatLeft},
}

// Map converts one controller read into buttons, hat and axes.
func Map(v controller.ButtonVector) (hid.Buttons, hid.Hat, hid.Axes) {
	return Buttons(v), Hat(v), Axes(v)
}

// MapState is Map bundled into a hid.State.
func MapState(v controller.ButtonVector) hid.State {
	b, h, a := Map(v)
	return hid.State{Buttons: b, Hat: h, Axes: a}
}

// Buttons maps the face buttons.
func Buttons(v controller.ButtonVector) hid.Buttons {
	var b hid.Buttons
	b = b.Set(PositionA, v.Pressed(controller.A))
	b = b.Set(PositionB, v.Pressed(controller.B))
	b = b.Set(PositionSelect, v.Pressed(controller.Select))
	b = b.Set(PositionStart, v.Pressed(controller.Start))
	return b
}

// Hat derives the hat direction from the d-pad.
func Hat(v controller.ButtonVector) hid.Hat {
	for _, r := range hatRules {
		if allPressed(v, r.held) && !v.Pressed(r.without) {
			return r.hat
		}
	}
	return hid.HatCentered
}

func allPressed(v controller.ButtonVector, buttons []controller.Button) bool {
	for _, b := range buttons {
		if !v.Pressed(b) {
			return false
		}
	}
	return true
}

// Axes derives full-deflection X/Y. Right wins over Left and Down over Up.
func Axes(v controller.ButtonVector) hid.Axes {
	return hid.Axes{
		X: deflection(v, controller.Right, controller.Left),
		Y: deflection(v, controller.Down, controller.Up),
	}
}

func deflection(v controller.ButtonVector, positive, negative controller.Button) int8 {
	switch {
	case v.Pressed(positive):
		return hid.AxisMax
	case v.Pressed(negative):
		return -hid.AxisMax
	default:
		return 0
	}
}
