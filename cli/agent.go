package cli

import (
	"github.com/mobile-next/touchcli/commands"
	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Helper installation commands",
}

var agentInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Push the helper to a device",
	Long:  `Pushes the helper artifact to the device unless it is already present. Use --force to push anyway, or --from-github to fetch the latest release first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.InstallRequest{
			DeviceID:   deviceId,
			FromGitHub: fromGitHub,
			Force:      forceInstall,
		}

		return printResponse(commands.InstallCommand(req))
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.AddCommand(agentInstallCmd)

	agentInstallCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to install on")
	agentInstallCmd.Flags().BoolVar(&fromGitHub, "from-github", false, "download the latest helper release from GitHub")
	agentInstallCmd.Flags().BoolVar(&forceInstall, "force", false, "push even if the helper is already installed")
}
