package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dropwatch/internal/output"
	"github.com/jmylchreest/dropwatch/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a CSV snapshot as a table",
	Long: `Render a CSV snapshot written by monitor as a table, with status counts
and the total of all parseable prices. Defaults to the configured output file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()

		path := viper.GetString("output")
		if len(args) == 1 {
			path = args[0]
		}

		f, err := os.Open(path)
		if err != nil {
			logError("%v", err)
			return err
		}
		defer f.Close()

		rows, err := output.ReadCSV(f)
		if err != nil {
			logError("%s: %v", path, err)
			return err
		}

		sum := report.Render(cmd.OutOrStdout(), path, rows)
		if sum.Top.Domain != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "highest price: %s at %s\n", sum.Top.Domain, sum.Top.Price)
		}
		if sum.Unpriced > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows without a numeric price\n", sum.Unpriced)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
