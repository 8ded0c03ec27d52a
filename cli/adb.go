package cli

import (
	"github.com/mobile-next/touchcli/commands"
	"github.com/spf13/cobra"
)

var adbCmd = &cobra.Command{
	Use:   "adb",
	Short: "Local adb server commands",
}

var adbRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the local adb server",
	Long:  `Runs "adb kill-server" followed by "adb start-server". Useful when devices stop responding.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.RestartAdbCommand())
	},
}

func init() {
	rootCmd.AddCommand(adbCmd)
	adbCmd.AddCommand(adbRestartCmd)
}
