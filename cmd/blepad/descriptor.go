package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/srg/blepad/internal/hid"
)

// descriptorCmd represents the descriptor command
var descriptorCmd = &cobra.Command{
	Use:   "descriptor",
	Short: "Print the HID report descriptor",
	Long: `Prints the report descriptor served in the Report Map characteristic, one
annotated item per line, or as raw hex for tools such as hidrdd.

Examples:
  blepad descriptor
  blepad descriptor --raw`,
	Args: cobra.NoArgs,
	RunE: runDescriptor,
}

var descriptorRaw bool

func init() {
	descriptorCmd.Flags().BoolVar(&descriptorRaw, "raw", false, "Print space-separated hex bytes only")
}

func runDescriptor(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	desc := hid.ReportDescriptor()

	if descriptorRaw {
		_, err := fmt.Fprintln(out, formatRawHex(desc))
		return err
	}

	if _, err := fmt.Fprintf(out, "// Report descriptor, %d bytes, report ID %d\n", len(desc), hid.ReportID); err != nil {
		return err
	}
	_, err := fmt.Fprint(out, hid.DescriptorListing())
	return err
}

// formatRawHex renders bytes as upper-case hex pairs separated by spaces.
func formatRawHex(b []byte) string {
	pairs := make([]string, len(b))
	for i := range b {
		pairs[i] = strings.ToUpper(hex.EncodeToString(b[i : i+1]))
	}
	return strings.Join(pairs, " ")
}
