package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/boundary"
	"github.com/sells-group/geolayer/internal/store"
)

var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Manage stored boundary collections",
}

var boundariesImportCmd = &cobra.Command{
	Use:   "import <geojson-or-shapefile>",
	Short: "Load a boundary file into the Postgres boundaries table",
	Long:  "Replaces the named collection in the boundaries table. Reference it afterwards with a boundaries entry whose collection matches.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Store.Driver != store.DriverPostgres {
			return eris.Errorf("boundaries import: store.driver must be postgres, got %q", cfg.Store.Driver)
		}
		collection, _ := cmd.Flags().GetString("collection")
		if collection == "" {
			collection = filepath.Base(args[0])
		}

		c, err := boundary.Load(ctx, boundary.Source{Path: args[0]}, nil)
		if err != nil {
			return err
		}

		ps, err := store.NewPostgres(ctx, cfg.Store.DSN, cfg.Store.Pool)
		if err != nil {
			return err
		}
		defer ps.Close() //nolint:errcheck
		if err := ps.Migrate(ctx); err != nil {
			return err
		}

		n, err := boundary.SavePostgres(ctx, ps.Pool(), collection, c)
		if err != nil {
			return err
		}
		zap.L().Info("boundaries imported", zap.String("collection", collection), zap.Int64("rows", n))
		fmt.Fprintf(os.Stdout, "Imported %d features into collection %q\n", n, collection)
		return nil
	},
}

func init() {
	boundariesImportCmd.Flags().String("collection", "", "collection name (default: file name)")
	boundariesCmd.AddCommand(boundariesImportCmd)
	rootCmd.AddCommand(boundariesCmd)
}
