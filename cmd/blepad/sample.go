package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/srg/blepad/bridge"
	"github.com/srg/blepad/internal/board"
	"github.com/srg/blepad/internal/controller"
	"github.com/srg/blepad/internal/hid"
	"github.com/srg/blepad/internal/mapper"
	"golang.org/x/term"
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Read the controller and print the mapped report",
	Long: `Reads the controller over GPIO and prints the raw button vector, the mapped hat
and axes, and the input report that would be sent. Bluetooth is not used.

Examples:
  # Print every change until Ctrl+C
  blepad sample

  # Print ten samples, 500ms apart
  blepad sample --count 10 --interval 500ms --all`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

var (
	sampleCount    int
	sampleInterval time.Duration
	sampleAll      bool
)

var pressedColor = color.New(color.FgGreen, color.Bold)

func init() {
	sampleCmd.Flags().IntVar(&sampleCount, "count", 0, "Stop after this many printed samples (0 = until interrupted)")
	sampleCmd.Flags().DurationVar(&sampleInterval, "interval", bridge.DefaultPollInterval, "Time between samples")
	sampleCmd.Flags().BoolVar(&sampleAll, "all", false, "Print every sample, not only changes")
}

func runSample(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, "", cfg)
	if err != nil {
		return err
	}
	if sampleInterval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", sampleInterval)
	}

	hw, err := board.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open board: %w", err)
	}
	defer func() { _ = hw.Close() }()

	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), samplingHeader(hw.Sampler.Pins(), sampleInterval))

	return sampleLoop(cmd.OutOrStdout(), hw.Sampler, sampleCount, sampleAll, func() bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			return true
		}
	})
}

// samplingHeader names the controller lines being read.
func samplingHeader(p controller.Pins, interval time.Duration) string {
	return fmt.Sprintf("# Sampling latch=%d clock=%d data=%d every %s", p.Latch, p.Clock, p.Data, interval)
}

// sampleLoop prints samples until count lines were written or wait returns false.
func sampleLoop(w io.Writer, sampler bridge.Sampler, count int, all bool, wait func() bool) error {
	var previous controller.ButtonVector
	printed := 0
	first := true

	for {
		v := sampler.Sample()
		if all || first || v != previous {
			if _, err := fmt.Fprintln(w, formatSample(v)); err != nil {
				return err
			}
			printed++
			if count > 0 && printed >= count {
				return nil
			}
		}
		previous, first = v, false

		if !wait() {
			return nil
		}
	}
}

// formatSample renders one sample:
//
//	10000001  A+Right        hat=RIGHT       x=127  y=0     [0x01, 0x00, 0x03, 0x7F, 0x00]
func formatSample(v controller.ButtonVector) string {
	st := mapper.MapState(v)

	pressed := "-"
	if names := v.Names(); len(names) > 0 {
		pressed = strings.Join(names, "+")
	}
	pressed = fmt.Sprintf("%-14s", pressed)
	if v.Any() {
		pressed = pressedColor.Sprint(pressed)
	}

	return fmt.Sprintf("%s  %s hat=%-11s x=%-4d y=%-4d %s",
		v, pressed, st.Hat, st.Axes.X, st.Axes.Y, hid.EncodeState(st))
}
