package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/srg/blepad/internal/hid"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a 5-byte input report",
	Long: `Decodes an input report payload (without report ID) as captured from a host or
a BLE sniffer.

Accepted formats: 0108037F00, "01 08 03 7f 00", 0x01,0x08,0x03,0x7F,0x00

Examples:
  blepad decode 0108037F00
  blepad decode "[0x01, 0x08, 0x03, 0x7F, 0x00]"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	report, err := parseReportHex(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return writeDecoded(cmd.OutOrStdout(), report)
}

// parseReportHex accepts contiguous or separated hex bytes with optional 0x prefixes.
func parseReportHex(s string) (hid.Report, error) {
	cleaned := strings.NewReplacer(
		"0x", "", "0X", "",
		" ", "", ",", "", ":", "", "-", "",
		"[", "", "]", "", "\t", "",
	).Replace(strings.TrimSpace(s))

	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return hid.Report{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	r, err := hid.ParseReport(data)
	if err != nil {
		return hid.Report{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return r, nil
}

func writeDecoded(w io.Writer, r hid.Report) error {
	st := hid.Decode(r)

	buttons := "none"
	if pos := st.Buttons.Positions(); len(pos) > 0 {
		names := make([]string, len(pos))
		for i, p := range pos {
			names[i] = fmt.Sprintf("%d", p+1)
		}
		buttons = strings.Join(names, " ")
	}

	_, err := fmt.Fprintf(w, "report:  %s\nbuttons: %s\nhat:     %s\nx:       %d\ny:       %d\n",
		r, buttons, st.Hat, st.Axes.X, st.Axes.Y)
	return err
}
