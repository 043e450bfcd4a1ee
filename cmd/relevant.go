package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shcov.dev/pkg/shcov/internal/domain"
	m "shcov.dev/pkg/shcov/internal/model"
)

const relevantLongDescription = `Print the zero-based numbers of the lines of a script that the tracer
left without data but that hold executable code. These are the lines a
coverage report should show as uncovered.

The script's coverage is taken from the report (--report); a script missing
from the report is treated as fully ignored.`

// relevantCmd represents the relevant command.
var relevantCmd = newRelevantCmd()

func newRelevantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relevant <script>",
		Short: "List ignored lines that hold executable code",
		Long:  relevantLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explain, err := cmd.Flags().GetBool(explainFlagName)
			if err != nil {
				return err
			}

			return newWorkflow(cmd).Relevant(cmd.Context(), domain.RelevantArgs{
				Path:    m.Path(args[0]),
				Report:  m.Path(viper.GetString(reportFlagName)),
				Explain: explain,
			})
		},
	}

	cmd.Flags().BoolP(explainFlagName, "e", false, "show every line with its status and verdict")

	return cmd
}

func init() {
	rootCmd.AddCommand(relevantCmd)
}
