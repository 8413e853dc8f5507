package main

import (
	"os"

	"github.com/spf13/cobra"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List stored layers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "rank", nil)
		if err != nil {
			return err
		}
		defer env.Close()

		infos, err := env.Service.Layers(ctx)
		if err != nil {
			return err
		}
		return printLayers(os.Stdout, infos)
	},
}

var colorsCmd = &cobra.Command{
	Use:   "colors <layer>",
	Short: "Print the choropleth colors of a layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "rank", nil)
		if err != nil {
			return err
		}
		defer env.Close()

		key, _ := cmd.Flags().GetString("key")
		scheme, _ := cmd.Flags().GetString("scheme")
		a, err := env.Service.Colors(ctx, args[0], key, scheme)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, a)
	},
}

func init() {
	colorsCmd.Flags().String("key", "", "time key (default: latest)")
	colorsCmd.Flags().String("scheme", "", "color scheme (default from config)")
	rootCmd.AddCommand(layersCmd, colorsCmd)
}
