package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/correlate"
	"github.com/sells-group/geolayer/internal/layers"
	"github.com/sells-group/geolayer/internal/store"
	"github.com/sells-group/geolayer/internal/weather"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

var fitOrder = []correlate.Model{correlate.Linear, correlate.Quadratic, correlate.Exponential}

func printCorrelation(w io.Writer, res *correlate.Result) error {
	fmt.Fprintln(w, res.Summary)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Key:\t%s\n", res.Key)
	fmt.Fprintf(tw, "Pearson r:\t%.4f (%s, %s)\n", res.Score, res.Strength, res.Direction)
	if res.PValue != nil {
		fmt.Fprintf(tw, "p-value:\t%.4g\n", *res.PValue)
	}
	fmt.Fprintf(tw, "Regions:\t%d\n", res.MatchedRegionCount)
	for _, m := range fitOrder {
		if f, ok := res.Regressions[m]; ok {
			fmt.Fprintf(tw, "%s:\t%s (R² %.4f)\n", m, f.Equation, f.RSquared)
		}
	}
	return tw.Flush()
}

func printRanking(w io.Writer, page *layers.RankingPage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tREGION\tCODE\tVALUE")
	for _, e := range page.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\n", e.Position, e.DisplayName, e.Code, e.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if page.Remaining > 0 {
		fmt.Fprintf(w, "%d more (use --shown %d)\n", page.Remaining, len(page.Entries))
	}
	return nil
}

type displayNamer interface {
	DisplayName(code string) string
}

func printWeather(w io.Writer, view *layers.WeatherView, names displayNamer) error {
	v := view.Variable
	fmt.Fprintf(w, "%s (%s) at index %s from %d samples\n", v.Name, v.Unit, view.Key, view.Samples)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tCODE\tVALUE\tCOLOR")
	for _, code := range view.Store.Codes() {
		val, _ := view.Store.Get(code, view.Key)
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\n", names.DisplayName(code), code, val, view.Colors.Colors[code])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(view.Missing) > 0 {
		fmt.Fprintf(w, "%d regions without geometry\n", len(view.Missing))
	}
	return nil
}

func printWeatherPoint(w io.Writer, pf *weather.PointForecast) error {
	fmt.Fprintf(w, "Forecast at %.4f, %.4f (%s)\n", pf.Latitude, pf.Longitude, pf.Timezone)

	ids := make([]string, 0, len(pf.Current))
	for id := range pf.Current {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tNOW\tUNIT")
	for _, id := range ids {
		r := pf.Current[id]
		fmt.Fprintf(tw, "%s\t%.1f\t%s\n", r.Name, r.Value, r.Unit)
	}
	return tw.Flush()
}

func printLayers(w io.Writer, infos []store.LayerInfo) error {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No layers found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tGEOMETRY")
	for _, l := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.Type, l.GeometryRef)
	}
	return tw.Flush()
}
