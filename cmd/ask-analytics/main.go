package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"ask_analytics/config"
	"ask_analytics/internal/app"
)

func main() {
	var (
		schools      = flag.String("school", "", "comma separated school names, or \"all\"")
		service      = flag.Bool("service", false, "analyze the whole service instead of a school")
		start        = flag.String("start", "", "period start, YYYY-MM-DD")
		end          = flag.String("end", "", "period end, YYYY-MM-DD (inclusive)")
		compareStart = flag.String("compare-start", "", "comparison period start, YYYY-MM-DD")
		compareEnd   = flag.String("compare-end", "", "comparison period end, YYYY-MM-DD (inclusive)")
		outDir       = flag.String("out", "", "report output directory (overrides config)")
		warmMode     = flag.Bool("warm", false, "prefetch the period into the day cache")
		watchMode    = flag.Bool("watch", false, "ingest chat exports from the export directory")
		runsLimit    = flag.Int("runs", 0, "list the N most recent analysis runs and exit")
		metricsAddr  = flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	)
	flag.Parse()

	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	application, err := app.New(cfg, app.Options{
		Schools:      splitSchools(*schools),
		Service:      *service,
		Start:        *start,
		End:          *end,
		CompareStart: *compareStart,
		CompareEnd:   *compareEnd,
		Warm:         *warmMode,
		Watch:        *watchMode,
		Runs:         *runsLimit,
		MetricsAddr:  *metricsAddr,
	})
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	if err := application.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func splitSchools(raw string) []string {
	if raw == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
