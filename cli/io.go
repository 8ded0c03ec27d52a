package cli

import (
	"strings"

	"github.com/mobile-next/touchcli/commands"
	"github.com/mobile-next/touchcli/types"
	"github.com/spf13/cobra"
)

var ioCmd = &cobra.Command{
	Use:   "io",
	Short: "Touch input operations on devices",
	Long:  `Send taps, swipes and raw touch commands through the helper running on a device.`,
}

// parsePointArgs accepts points as separate "x,y" arguments or as one
// ';' separated list.
func parsePointArgs(args []string) ([]types.Point, error) {
	return types.ParsePoints(strings.Join(args, " "))
}

var ioTapCmd = &cobra.Command{
	Use:   "tap [x,y]...",
	Short: "Tap one or more points at once",
	Long:  `Touches down on every point with its own contact, optionally holds for --duration milliseconds, then lifts all contacts.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePointArgs(args)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		req := commands.TapRequest{
			DeviceID: deviceId,
			Points:   points,
			Pressure: pressureFlag(cmd),
			Duration: duration,
			NoUp:     noUp,
		}

		return printResponse(commands.TapCommand(req))
	},
}

var ioSwipeCmd = &cobra.Command{
	Use:   "swipe [x,y]...",
	Short: "Drag a single contact through the given points",
	Long:  `Touches down on the first point, moves through the remaining points waiting --duration milliseconds after each, then lifts.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePointArgs(args)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		return printResponse(commands.SwipeCommand(swipeRequest(cmd, points)))
	},
}

var ioSmoothSwipeCmd = &cobra.Command{
	Use:   "smooth-swipe [x,y] [x,y]...",
	Short: "Swipe every segment in small interpolated steps",
	Long:  `Splits each segment between consecutive points into --part steps and swipes each segment separately.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePointArgs(args)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		req := commands.SmoothSwipeRequest{
			SwipeRequest: swipeRequest(cmd, points),
			Part:         part,
		}

		return printResponse(commands.SmoothSwipeCommand(req))
	},
}

var ioSendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send raw protocol text to the helper",
	Long:  `Writes the text followed by a newline to the helper's stdin, e.g. "d 0 100 200 50\nc".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.SendRequest{
			DeviceID: deviceId,
			Text:     strings.ReplaceAll(args[0], `\n`, "\n"),
		}

		return printResponse(commands.SendCommand(req))
	},
}

// pressureFlag returns nil unless --pressure was given, so 0 can be sent.
func pressureFlag(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("pressure") {
		return nil
	}
	value := pressure
	return &value
}

func swipeRequest(cmd *cobra.Command, points []types.Point) commands.SwipeRequest {
	return commands.SwipeRequest{
		DeviceID: deviceId,
		Points:   points,
		Pressure: pressureFlag(cmd),
		Duration: duration,
		NoDown:   noDown,
		NoUp:     noUp,
	}
}

func init() {
	rootCmd.AddCommand(ioCmd)

	ioCmd.AddCommand(ioTapCmd)
	ioCmd.AddCommand(ioSwipeCmd)
	ioCmd.AddCommand(ioSmoothSwipeCmd)
	ioCmd.AddCommand(ioSendCmd)

	for _, cmd := range []*cobra.Command{ioTapCmd, ioSwipeCmd, ioSmoothSwipeCmd, ioSendCmd} {
		cmd.Flags().StringVar(&deviceId, "device", "", "ID of the device (default: the only online device)")
	}

	for _, cmd := range []*cobra.Command{ioTapCmd, ioSwipeCmd, ioSmoothSwipeCmd} {
		cmd.Flags().IntVar(&pressure, "pressure", 0, "contact pressure, 0 included (default 100)")
		cmd.Flags().IntVar(&duration, "duration", 0, "milliseconds to wait after each step")
		cmd.Flags().BoolVar(&noUp, "no-up", false, "leave the contact down at the end")
	}

	for _, cmd := range []*cobra.Command{ioSwipeCmd, ioSmoothSwipeCmd} {
		cmd.Flags().BoolVar(&noDown, "no-down", false, "continue a contact that is already down")
	}

	ioSmoothSwipeCmd.Flags().IntVar(&part, "part", 0, "steps per segment (default 10)")
}
