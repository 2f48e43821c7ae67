package hid

import (
	"fmt"
	"strings"
)

// ReportID is the report ID the input report is sent under.
const ReportID = 1

// Item is one short item of the report descriptor with its annotation.
type Item struct {
	Bytes   []byte
	Comment string
	Indent  int
}

// descriptorItems is the gamepad report descriptor. Any change here must be mirrored in
// Encode, hosts parse the live report against these bytes.
var descriptorItems = []Item{
	{[]byte{0x05, 0x01}, "Usage Page (Generic Desktop)", 0},
	{[]byte{0x09, 0x05}, "Usage (Gamepad)", 0},
	{[]byte{0xA1, 0x01}, "Collection (Application)", 0},
	{[]byte{0x85, ReportID}, "Report ID (1)", 1},

	{[]byte{0x05, 0x09}, "Usage Page (Button)", 1},
	{[]byte{0x19, 0x01}, "Usage Minimum (Button 1)", 1},
	{[]byte{0x29, 0x0C}, "Usage Maximum (Button 12)", 1},
	{[]byte{0x15, 0x00}, "Logical Minimum (0)", 1},
	{[]byte{0x25, 0x01}, "Logical Maximum (1)", 1},
	{[]byte{0x75, 0x01}, "Report Size (1)", 1},
	{[]byte{0x95, 0x0C}, "Report Count (12)", 1},
	{[]byte{0x81, 0x02}, "Input (Data, Variable, Absolute)", 1},

	{[]byte{0x75, 0x01}, "Report Size (1)", 1},
	{[]byte{0x95, 0x04}, "Report Count (4)", 1},
	{[]byte{0x81, 0x03}, "Input (Constant, Variable, Absolute)", 1},

	{[]byte{0x05, 0x01}, "Usage Page (Generic Desktop)", 1},
	{[]byte{0x09, 0x39}, "Usage (Hat Switch)", 1},
	{[]byte{0x15, 0x01}, "Logical Minimum (1)", 1},
	{[]byte{0x25, 0x08}, "Logical Maximum (8)", 1},
	{[]byte{0x35, 0x00}, "Physical Minimum (0)", 1},
	{[]byte{0x46, 0x3B, 0x01}, "Physical Maximum (315)", 1},
	{[]byte{0x65, 0x14}, "Unit (Degrees)", 1},
	{[]byte{0x75, 0x04}, "Report Size (4)", 1},
	{[]byte{0x95, 0x01}, "Report Count (1)", 1},
	{[]byte{0x81, 0x02}, "Input (Data, Variable, Absolute)", 1},

	{[]byte{0x75, 0x01}, "Report Size (1)", 1},
	{[]byte{0x95, 0x04}, "Report Count (4)", 1},
	{[]byte{0x81, 0x03}, "Input (Constant, Variable, Absolute)", 1},

	{[]byte{0x05, 0x01}, "Usage Page (Generic Desktop)", 1},
	{[]byte{0x09, 0x01}, "Usage (Pointer)", 1},
	{[]byte{0xA1, 0x00}, "Collection (Physical)", 1},
	{[]byte{0x09, 0x30}, "Usage (X)", 2},
	{[]byte{0x09, 0x31}, "Usage (Y)", 2},
	{[]byte{0x15, 0x81}, "Logical Minimum (-127)", 2},
	{[]byte{0x25, 0x7F}, "Logical Maximum (127)", 2},
	{[]byte{0x75, 0x08}, "Report Size (8)", 2},
	{[]byte{0x95, 0x02}, "Report Count (2)", 2},
	{[]byte{0x81, 0x02}, "Input (Data, Variable, Absolute)", 2},
	{[]byte{0xC0}, "End Collection", 1},

	{[]byte{0xC0}, "End Collection", 0},
}

// DescriptorItems returns the annotated descriptor items.
func DescriptorItems() []Item {
	out := make([]Item, len(descriptorItems))
	for i, it := range descriptorItems {
		out[i] = Item{Bytes: append([]byte(nil), it.Bytes...), Comment: it.Comment, Indent: it.Indent}
	}
	return out
}

// ReportDescriptor returns the raw report map bytes.
func ReportDescriptor() []byte {
	var out []byte
	for _, it := range descriptorItems {
		out = append(out, it.Bytes...)
	}
	return out
}

// DescriptorListing renders the descriptor one item per line:
//
//	0x05, 0x01,        // Usage Page (Generic Desktop)
func DescriptorListing() string {
	var sb strings.Builder
	for _, it := range descriptorItems {
		hex := make([]string, len(it.Bytes))
		for i, b := range it.Bytes {
			hex[i] = fmt.Sprintf("0x%02X,", b)
		}
		fmt.Fprintf(&sb, "%-18s // %s%s\n", strings.Join(hex, " "), strings.Repeat("  ", it.Indent), it.Comment)
	}
	return sb.String()
}
