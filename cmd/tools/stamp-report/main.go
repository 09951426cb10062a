// Command stamp-report renders an HTML report of a recorded synthesis run:
// a scatter of the variance-matching factor over the stamp grid and a bar
// chart of stamp outcomes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okomestudio/tsastro/internal/db"
	storage "github.com/okomestudio/tsastro/internal/synth/storage/sqlite"
	"github.com/okomestudio/tsastro/internal/version"
)

var (
	dbPath      = flag.String("db", "synth.db", "sqlite database recorded by bgsynth")
	runID       = flag.String("run", "", "run to report; defaults to the most recent")
	outPath     = flag.String("out", "stamp-report.html", "output HTML file")
	list        = flag.Bool("list", false, "list recorded runs and exit")
	showVersion = flag.Bool("version", false, "print version information and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("stamp-report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	d, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("stamp-report: %v", err)
	}
	defer d.Close()
	store := storage.NewStampStore(d.DB)

	runs, err := store.ListRuns()
	if err != nil {
		log.Fatalf("stamp-report: list runs: %v", err)
	}
	if *list {
		for _, r := range runs {
			fmt.Printf("%s  %dx%d  workers=%d  seed=%d  %s\n",
				r.RunID, r.ImageWidth, r.ImageHeight, r.WorkerCount, r.Seed, r.Notes)
		}
		return
	}
	if len(runs) == 0 {
		log.Fatal("stamp-report: no runs recorded")
	}
	id := *runID
	if id == "" {
		id = runs[0].RunID
	}

	rows, err := store.ListStamps(id)
	if err != nil {
		log.Fatalf("stamp-report: list stamps: %v", err)
	}
	if len(rows) == 0 {
		log.Fatalf("stamp-report: run %s has no stamps", id)
	}
	sum, err := store.Summarize(id)
	if err != nil {
		log.Fatalf("stamp-report: summarize: %v", err)
	}

	page := components.NewPage()
	page.AddCharts(factorChart(id, rows), outcomeChart(id, sum))

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("stamp-report: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("stamp-report: render: %v", err)
	}
	log.Printf("stamp-report: wrote %s (run %s, %d stamps)", *outPath, id, len(rows))
}

// factorChart plots the matched factor over the stamp grid, colored by value.
func factorChart(runID string, rows []storage.StampRow) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(rows))
	maxFactor := 0.0
	for _, r := range rows {
		if !r.Factor.Valid {
			continue
		}
		if r.Factor.Float64 > maxFactor {
			maxFactor = r.Factor.Float64
		}
		data = append(data, opts.ScatterData{Value: []interface{}{r.GridCol, r.GridRow, r.Factor.Float64}})
	}
	if maxFactor == 0 {
		maxFactor = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Stamp factors", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Variance-matching factor", Subtitle: fmt.Sprintf("run=%s stamps=%d", runID, len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "grid column", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "grid row", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxFactor),
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("factor", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	return scatter
}

// outcomeChart summarizes stamp outcomes for the run.
func outcomeChart(runID string, sum storage.RunSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stamp outcomes", Subtitle: fmt.Sprintf("run=%s", runID)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis([]string{"stamps", "filled", "skipped", "fallbacks"}).
		AddSeries("count", []opts.BarData{
			{Value: sum.Stamps},
			{Value: sum.Filled},
			{Value: sum.Skipped},
			{Value: sum.Fallbacks},
		}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}
