package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mobile-next/touchcli/commands"
	"github.com/mobile-next/touchcli/utils"
	"github.com/spf13/cobra"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "touchcli",
	Short: "Touch injection for Android devices over adb",
	Long:  `Drives the MaaTouch helper on Android devices to send taps, swipes and raw touch commands.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetVersion returns the build version
func GetVersion() string {
	return version
}

func initConfig() {
	utils.SetVerbose(verbose)

	if configFile == "" {
		configFile = os.Getenv("TOUCHCLI_CONFIG")
	}

	commands.SetOptions(commands.Options{
		AdbPath:       adbPath,
		ConfigFile:    configFile,
		LocalArtifact: localArtifact,
	})
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to an ini config file (default: $TOUCHCLI_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&adbPath, "adb", "", "path to the adb executable (default: $ADB_PATH, then the Android SDK, then PATH)")
	rootCmd.PersistentFlags().StringVar(&localArtifact, "artifact", "", "local helper artifact to push when it is missing on the device")
}

// Execute runs the root command and then stops every helper session it
// opened, whether or not the command failed.
func Execute() (err error) {
	defer func() {
		if closeErr := commands.CloseAll(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	return rootCmd.Execute()
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		utils.Logger().Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// printResponse prints response and turns an error status into an error.
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
