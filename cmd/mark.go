package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shcov.dev/pkg/shcov/internal/domain"
	m "shcov.dev/pkg/shcov/internal/model"
)

const markLongDescription = `Upgrade every ignored line that holds executable code to uncovered, for
each script in the coverage report, and write the report back.

Roots given as arguments are searched for shell scripts the tracer never
saw; they are added to the report with all their relevant lines uncovered.`

// markCmd represents the mark command.
var markCmd = newMarkCmd()

func newMarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark [roots...]",
		Short: "Mark relevant ignored lines as uncovered in a report",
		Long:  markLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkflow(cmd).Mark(cmd.Context(), domain.MarkArgs{
				Report:  m.Path(viper.GetString(reportFlagName)),
				Output:  m.Path(viper.GetString(outputFlagName)),
				Roots:   parsePaths(args),
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Threads: viper.GetInt(runParallelConfigKey),
			})
		},
	}

	configureMarkFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(markCmd)
}

func configureMarkFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP(outputFlagName, "o", defaultOutputPath, "write the updated report here instead of over --report")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputFlagName)

	flags.IntP(runParallelFlagName, "p", defaultRunParallel, "number of scripts scanned in parallel")
	bindFlagToConfig(flags.Lookup(runParallelFlagName), runParallelConfigKey)
}
