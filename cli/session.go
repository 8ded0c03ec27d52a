package cli

import (
	"github.com/mobile-next/touchcli/commands"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Helper session commands",
	Long:  `Start, inspect and restart the helper session on a device.`,
}

var sessionInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Start the helper and print its capabilities",
	Long:  `Installs the helper if needed, waits for its header and prints the contact count, screen bounds, pressure range and pid it reports.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.InfoCommand(commands.SessionRequest{DeviceID: deviceId}))
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restart the helper session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ResetCommand(commands.SessionRequest{DeviceID: deviceId}))
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.AddCommand(sessionInfoCmd)
	sessionCmd.AddCommand(sessionResetCmd)

	sessionInfoCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to start the helper on")
	sessionResetCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to restart the helper on")
}
