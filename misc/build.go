package misc

const (
	// NodeName is the name of the storage node application.
	NodeName = "scull-node"

	// CLIName is the name of the command line tool application.
	CLIName = "scull-cli"
)

// These variables are changed in compile time.
var (
	// Build is an application build time.
	Build = "now"

	// Version is an application version.
	Version = "dev"

	// Debug is an application debug mode flag.
	Debug = "false"
)
