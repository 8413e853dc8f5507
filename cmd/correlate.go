package main

import (
	"os"

	"github.com/spf13/cobra"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <layer-a> <layer-b>",
	Short: "Correlate two layers at a time key",
	Long:  "Correlates two layers region by region. Either layer may be a weather variable written as weather:<variable>[@hour][#granularity]; without a granularity it follows the other layer.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "correlate", nil)
		if err != nil {
			return err
		}
		defer env.Close()

		key, _ := cmd.Flags().GetString("key")
		res, err := env.Service.Correlate(ctx, args[0], args[1], key)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, res)
		}
		return printCorrelation(os.Stdout, res)
	},
}

func init() {
	correlateCmd.Flags().String("key", "", "time key (default: latest key of the first layer)")
	correlateCmd.Flags().Bool("json", false, "print the full result as JSON")
	rootCmd.AddCommand(correlateCmd)
}
