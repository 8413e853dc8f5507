package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/weather"
)

var weatherJoinCmd = &cobra.Command{
	Use:   "weather-join",
	Short: "Join a forecast variable onto region centroids",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "weather", nil)
		if err != nil {
			return err
		}
		defer env.Close()

		variable, _ := cmd.Flags().GetString("variable")
		index, _ := cmd.Flags().GetInt("index")
		daily, _ := cmd.Flags().GetBool("daily")
		resolution, _ := cmd.Flags().GetFloat64("resolution")
		if resolution == 0 {
			resolution = cfg.Weather.Resolution
		}
		g := region.Global
		if province, _ := cmd.Flags().GetBool("province"); province {
			g = region.Province
		}

		view, err := env.Service.Weather(ctx, weather.Query{
			Variable:   variable,
			Index:      index,
			Daily:      daily,
			Resolution: resolution,
		}, g)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, view)
		}
		return printWeather(os.Stdout, view, env.Service.Catalog())
	},
}

var weatherPointCmd = &cobra.Command{
	Use:   "weather-point",
	Short: "Show the forecast of every weather variable at one coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "weather", nil)
		if err != nil {
			return err
		}
		defer env.Close()

		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		pf, err := env.Service.WeatherPoint(ctx, lat, lon)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, pf)
		}
		return printWeatherPoint(os.Stdout, pf)
	},
}

func init() {
	weatherJoinCmd.Flags().String("variable", weather.DefaultVariable, "forecast variable id")
	weatherJoinCmd.Flags().Int("index", 0, "hour (or day with --daily) offset into the forecast")
	weatherJoinCmd.Flags().Bool("daily", false, "use daily aggregates")
	weatherJoinCmd.Flags().Float64("resolution", 0, "grid spacing in degrees (default from config)")
	weatherJoinCmd.Flags().Bool("province", false, "join onto province regions instead of countries")
	weatherJoinCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(weatherJoinCmd)

	weatherPointCmd.Flags().Float64("lat", -6.2, "latitude")
	weatherPointCmd.Flags().Float64("lon", 106.8, "longitude")
	weatherPointCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(weatherPointCmd)
}
