package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fairdash/internal/fairness/filter"
	"fairdash/internal/fairness/metadata"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/ports"
	"fairdash/internal/fairness/service"
	"fairdash/internal/fairness/source"
	"fairdash/internal/fairness/store/memory"
	"fairdash/internal/fairness/store/sqlite"
	"fairdash/internal/platform/config"
	"fairdash/internal/platform/logger"
)

type globalFlags struct {
	dataPath  string
	engine    string
	table     string
	region    string
	logLevel  string
	logFormat string
}

type renderFlags struct {
	state    string
	group    string
	measure  string
	measures []string
	category string
	year     int
	minYear  int
	maxYear  int
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "fairctl",
		Short:         "Inspect the fairness dataset and render dashboard panels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.dataPath, "data", "data/fairness.parquet", "dataset path (.parquet or .csv) or s3://bucket/key URL")
	root.PersistentFlags().StringVar(&g.engine, "engine", config.EngineMemory, "query engine: memory or sqlite")
	root.PersistentFlags().StringVar(&g.table, "table", "fairness", "table name for SQL engines")
	root.PersistentFlags().StringVar(&g.region, "region", "", "AWS region for s3:// datasets")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newMetadataCmd(g), newRenderCmd(g), newLoadCmd(g))
	return root
}

func newMetadataCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print the dataset dimensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			engine, err := g.open(ctx, g.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer engine.Close()
			md, err := metadata.Build(ctx, engine)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), md.Snapshot())
		},
	}
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:       "render <measures|demographics|states>",
		Short:     "Render one panel from the default selections plus any overrides",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.PanelMeasures), string(models.PanelDemographics), string(models.PanelStates)},
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := models.ParsePanelID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := g.logger(cmd.ErrOrStderr())
			engine, err := g.open(ctx, log)
			if err != nil {
				return err
			}
			defer engine.Close()
			md, err := metadata.Build(ctx, engine)
			if err != nil {
				return err
			}
			svc, err := service.New(engine, md, service.WithLogger(log))
			if err != nil {
				return err
			}
			defer svc.Close()

			panels, err := f.apply(cmd, panel, svc.Defaults(), md)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), svc.RenderSelection(ctx, panel, panels))
		},
	}
	cmd.Flags().StringVar(&f.state, "state", "", "state display name")
	cmd.Flags().StringVar(&f.group, "group", "", "demographic group")
	cmd.Flags().StringVar(&f.measure, "measure", "", "fairness measure")
	cmd.Flags().StringSliceVar(&f.measures, "measures", nil, "fairness measures for the measures panel")
	cmd.Flags().StringVar(&f.category, "category", "", "demographic category display name")
	cmd.Flags().IntVar(&f.year, "year", 0, "year for the states panel")
	cmd.Flags().IntVar(&f.minYear, "min-year", 0, "start of the year range")
	cmd.Flags().IntVar(&f.maxYear, "max-year", 0, "end of the year range")
	return cmd
}

// apply runs the set flags through the panel reducer in control order.
func (f *renderFlags) apply(cmd *cobra.Command, panel models.PanelID, p filter.Panels, md *metadata.Cache) (filter.Panels, error) {
	var evs []filter.Event
	changed := cmd.Flags().Changed
	if changed("measures") {
		evs = append(evs, filter.SetMeasures{Measures: f.measures})
	}
	if changed("measure") {
		evs = append(evs, filter.SetMeasure{Measure: f.measure})
	}
	if changed("state") {
		evs = append(evs, filter.SetState{State: f.state})
	}
	if changed("category") {
		evs = append(evs, filter.SetCategory{Category: f.category})
	}
	if changed("year") {
		evs = append(evs, filter.SetYear{Year: f.year})
	}
	if changed("group") {
		evs = append(evs, filter.SetGroup{Group: f.group})
	}

	var err error
	for _, ev := range evs {
		switch panel {
		case models.PanelMeasures:
			p.Measures, err = filter.ReduceMeasures(p.Measures, ev, md)
		case models.PanelDemographics:
			p.Demographics, err = filter.ReduceDemographics(p.Demographics, ev, md)
		case models.PanelStates:
			p.States, err = filter.ReduceStates(p.States, ev, md)
		}
		if err != nil {
			return p, err
		}
	}
	if changed("min-year") || changed("max-year") {
		r := p.YearRange
		if changed("min-year") {
			r.Min = f.minYear
		}
		if changed("max-year") {
			r.Max = f.maxYear
		}
		p.YearRange = filter.ReduceYearRange(p.YearRange, filter.SetYearRange{Min: r.Min, Max: r.Max}, md)
	}
	return p, nil
}

func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	return logger.NewWithWriter(w, g.logLevel, g.logFormat)
}

func (g *globalFlags) open(ctx context.Context, log *slog.Logger) (ports.Engine, error) {
	rows, err := source.Load(ctx, g.dataPath, source.WithRegion(g.region))
	if err != nil {
		return nil, err
	}
	log.DebugContext(ctx, "dataset loaded", "path", g.dataPath, "rows", len(rows))
	switch g.engine {
	case config.EngineMemory:
		return memory.New(rows), nil
	case config.EngineSQLite:
		engine, err := sqlite.Open(ctx, g.table, rows)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", g.engine)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
