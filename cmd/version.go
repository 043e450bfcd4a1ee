package cmd

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and configuration information",
		Long: `Print the shcov build version, the Go version it was built with and the
configuration file in effect.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			version, goVersion := "unknown", runtime.Version()
			if info, ok := debug.ReadBuildInfo(); ok {
				if info.Main.Version != "" {
					version = info.Main.Version
				}

				goVersion = info.GoVersion
			}

			cmd.Printf("shcov version\t%s\n", version)
			cmd.Printf("go version\t%s\n", goVersion)
			cmd.Printf("config\t\t%s\n", configInUse())
			cmd.Printf("config version\t%d (supported up to %d)\n",
				viper.GetInt(configVersionKey), currentConfigVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}

func configInUse() string {
	used := viper.ConfigFileUsed()
	if used == "" {
		return "none (built-in defaults)"
	}

	if _, err := os.Stat(used); err != nil {
		return "none (built-in defaults)"
	}

	return used
}
