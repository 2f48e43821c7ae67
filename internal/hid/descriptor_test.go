package hid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportDescriptorBytes(t *testing.T) {
	// GOAL: Verify the report map is bit-exact with what hosts were paired against
	//
	// TEST SCENARIO: Flatten the annotated items → compare to the reference byte table

	expected := []byte{
		0x05, 0x01, 0x09, 0x05, 0xA1, 0x01, 0x85, 0x01,
		0x05, 0x09, 0x19, 0x01, 0x29, 0x0C, 0x15, 0x00, 0x25, 0x01, 0x75, 0x01, 0x95, 0x0C, 0x81, 0x02,
		0x75, 0x01, 0x95, 0x04, 0x81, 0x03,
		0x05, 0x01, 0x09, 0x39, 0x15, 0x01, 0x25, 0x08, 0x35, 0x00, 0x46, 0x3B, 0x01, 0x65, 0x14,
		0x75, 0x04, 0x95, 0x01, 0x81, 0x02,
		0x75, 0x01, 0x95, 0x04, 0x81, 0x03,
		0x05, 0x01, 0x09, 0x01, 0xA1, 0x00, 0x09, 0x30, 0x09, 0x31, 0x15, 0x81, 0x25, 0x7F,
		0x75, 0x08, 0x95, 0x02, 0x81, 0x02, 0xC0,
		0xC0,
	}

	assert.Equal(t, expected, ReportDescriptor(), "report descriptor MUST match byte for byte")
}

func TestReportDescriptorMatchesReportSize(t *testing.T) {
	// GOAL: Verify the declared input bits add up to the encoded payload
	//
	// TEST SCENARIO: Walk Report Size / Report Count / Input items → sum bits → 5 bytes

	var size, count, bits int
	desc := ReportDescriptor()
	for i := 0; i < len(desc); {
		prefix := desc[i]
		n := int(prefix & 0x03)
		if n == 3 {
			n = 4
		}
		var val int
		for j := 0; j < n; j++ {
			val |= int(desc[i+1+j]) << (8 * j)
		}
		switch prefix & 0xFC {
		case 0x74:
			size = val
		case 0x94:
			count = val
		case 0x80:
			bits += size * count
		}
		i += 1 + n
	}

	assert.Equal(t, ReportSize*8, bits, "descriptor input bits MUST equal report payload size")
}

func TestDescriptorItemsAreCopies(t *testing.T) {
	items := DescriptorItems()
	items[0].Bytes[0] = 0xFF
	assert.Equal(t, byte(0x05), ReportDescriptor()[0], "callers MUST NOT be able to mutate the descriptor")
}

func TestDescriptorListing(t *testing.T) {
	listing := DescriptorListing()
	lines := strings.Split(strings.TrimRight(listing, "\n"), "\n")

	assert.Len(t, lines, len(descriptorItems))
	assert.Equal(t, "0x05, 0x01,        // Usage Page (Generic Desktop)", lines[0])
	assert.Equal(t, "0x46, 0x3B, 0x01,  //   Physical Maximum (315)", lines[20])
	assert.Equal(t, "0x09, 0x30,        //     Usage (X)", lines[31])
	assert.Equal(t, "0xC0,              // End Collection", lines[len(lines)-1])
}
