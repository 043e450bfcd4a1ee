package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shcov.dev/pkg/shcov/internal/domain"
	m "shcov.dev/pkg/shcov/internal/model"
)

const listLongDescription = `List the shell scripts found below the given roots (default: current
directory) with their coverage in the report. Scripts are recognized by
extension (.sh, .bash, .ksh, .zsh) or by a shell shebang.`

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [roots...]",
		Short: "List shell scripts and their coverage",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := parsePaths(args)
			if len(roots) == 0 {
				roots = []m.Path{"."}
			}

			return newWorkflow(cmd).List(cmd.Context(), domain.ListArgs{
				Report:  m.Path(viper.GetString(reportFlagName)),
				Roots:   roots,
				Exclude: viper.GetStringSlice(excludeConfigKey),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
