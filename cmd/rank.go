package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geolayer/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank <layer>",
	Short: "Rank a layer's regions by value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		orderFlag, _ := cmd.Flags().GetString("order")
		order, err := ranking.ParseOrder(orderFlag)
		if err != nil {
			return err
		}
		shown, _ := cmd.Flags().GetInt("shown")
		if shown < 0 {
			return eris.Errorf("rank: --shown must be >= 0, got %d", shown)
		}

		env, err := initEnv(ctx, "rank", nil)
		if err != nil {
			return err
		}
		defer env.Close()

		key, _ := cmd.Flags().GetString("key")
		page, err := env.Service.Rank(ctx, args[0], key, order, shown)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, page)
		}
		return printRanking(os.Stdout, page)
	},
}

func init() {
	rankCmd.Flags().String("key", "", "time key (default: latest)")
	rankCmd.Flags().String("order", "top", "top or bottom")
	rankCmd.Flags().Int("shown", 0, "entries already shown; one more page is added")
	rankCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(rankCmd)
}
