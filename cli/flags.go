package cli

var (
	verbose bool

	// global settings
	configFile    string
	adbPath       string
	localArtifact string

	// all device commands
	deviceId string

	// for io commands
	pressure int
	duration int
	noDown   bool
	noUp     bool
	part     int

	// for agent install command
	fromGitHub   bool
	forceInstall bool
)
