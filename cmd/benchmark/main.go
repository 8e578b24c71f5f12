package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/delaneyj/slotparty/pkg/signals"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	configKey     = "config"
	iterationsKey = "iterations"
	pgoKey        = "pgo"
	verboseKey    = "verbose"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure emission latency and throughput of signals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configKey,
				Usage: "Scenario file (.toml, .yaml or .yml); built-in scenarios when empty",
			},
			&cli.UintFlag{
				Name:  iterationsKey,
				Usage: "Override the iterations of every scenario",
			},
			&cli.BoolFlag{
				Name:  pgoKey,
				Usage: "Write a CPU profile to default.pgo",
			},
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log signal debug output to stderr",
			},
		},
		Action: benchmark,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func benchmark(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting signals benchmark, please wait...")
	defer log.Print("Finished signals benchmark")

	level := slog.LevelWarn
	if cmd.Bool(verboseKey) {
		level = slog.LevelDebug
	}
	signals.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := defaultConfig()
	if path := cmd.String(configKey); path != "" {
		var err error
		if cfg, err = loadConfig(path); err != nil {
			return err
		}
	}
	if n := cmd.Uint(iterationsKey); n > 0 {
		for i := range cfg.Scenarios {
			cfg.Scenarios[i].Iterations = int(n)
		}
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	if cmd.Bool(pgoKey) {
		f, err := os.Create("default.pgo")
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	results := make([]*result, 0, len(cfg.Scenarios))
	for _, s := range cfg.Scenarios {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("Running '%s' scenario", s.Name)
		r, err := runScenario(s)
		if err != nil {
			return err
		}
		results = append(results, r)
	}

	renderLatency(results)
	renderSummary(results)
	return nil
}

func renderLatency(results []*result) {
	tbl := table.NewWriter()
	tbl.SetTitle("Emission latency")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"scenario", "avg", "min", "p75", "p99", "max"})
	for _, r := range results {
		calc := r.metrics
		tbl.AppendRow(table.Row{
			r.scenario.Name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		})
	}
	tbl.Render()
}

func renderSummary(results []*result) {
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{
		"scenario", "slots", "args", "reemission", "nTimes", "time", "delivered", "deliveryRate", "title",
	})
	for _, r := range results {
		s := r.scenario
		mode, _ := s.reemission()
		rate := float64(r.delivered) / (float64(r.elapsed) / float64(time.Millisecond))
		tw.Append([]string{
			s.Name,
			fmt.Sprint(s.Slots),
			fmt.Sprint(s.Args),
			mode.String(),
			humanize.Comma(int64(s.Iterations)),
			fmt.Sprint(r.elapsed),
			humanize.Comma(r.delivered),
			humanize.Comma(int64(rate)) + "/ms",
			title(s),
		})
	}
	tw.Render()
}

func title(s scenario) string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%d slots x %d args", s.Slots, s.Args))
	if s.Nested > 0 {
		sb.WriteString(fmt.Sprintf(" nested %d", s.Nested))
	}
	if s.Producers > 0 {
		sb.WriteString(fmt.Sprintf(" %d producers", s.Producers))
	}
	if s.Weak {
		sb.WriteString(" weak")
	}
	if s.Paused {
		sb.WriteString(" paused")
	}
	return sb.String()
}
