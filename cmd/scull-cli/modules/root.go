package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/rtbo/scull/cmd/scull-cli/internal/commonflags"
	"github.com/rtbo/scull/misc"
	"github.com/rtbo/scull/pkg/util/autocomplete"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scull-cli",
	Short: "Command Line Tool to work with a scull node",
	Long: `Scull CLI provides all basic interactions with the volatile devices of a
scull node: inspecting the device table, ranged reads and writes, trims,
full-device export and import, and a small interactive console.`,
	Version: misc.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	ff := rootCmd.PersistentFlags()

	ff.StringP(commonflags.ConfigFlag, commonflags.ConfigFlagShorthand, "", commonflags.ConfigFlagUsage)
	ff.StringP(commonflags.Endpoint, commonflags.EndpointShorthand, commonflags.EndpointDefault, commonflags.EndpointUsage)
	ff.DurationP(commonflags.Timeout, commonflags.TimeoutShorthand, commonflags.TimeoutDefault, commonflags.TimeoutUsage)
	ff.BoolP(commonflags.Verbose, commonflags.VerboseShorthand, false, commonflags.VerboseUsage)

	_ = viper.BindPFlag(commonflags.Endpoint, ff.Lookup(commonflags.Endpoint))
	_ = viper.BindPFlag(commonflags.Timeout, ff.Lookup(commonflags.Timeout))
	_ = viper.BindPFlag(commonflags.Verbose, ff.Lookup(commonflags.Verbose))

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(autocomplete.Command(misc.CLIName))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString(commonflags.ConfigFlag)

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", "scull"))
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("scull_cli")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
