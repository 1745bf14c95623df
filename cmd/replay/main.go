// Command replay runs recorded fusion requests through the rules pipeline and
// prints the resulting reports. It reads the same environment configuration
// as the service, so model selection and the reliability variant match
// production. With -enhance it also asks the configured text-generation
// proxy for an enhanced advisory.
//
// Usage:
//
//	go run ./cmd/replay \
//	  -now 2026-10-16T08:00:00Z \
//	  -lang it \
//	  internal/pipeline/testdata/milan_clear.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-fusion-service/internal/adapter/textgen"
	"github.com/couchcryptid/weather-fusion-service/internal/config"
	"github.com/couchcryptid/weather-fusion-service/internal/domain"
	"github.com/couchcryptid/weather-fusion-service/internal/enhance"
	"github.com/couchcryptid/weather-fusion-service/internal/observability"
)

func main() {
	now := flag.String("now", "", "RFC 3339 evaluation time (default: current time)")
	lang := flag.String("lang", "", "override the request language")
	unit := flag.String("unit", "", "override the request unit (celsius or fahrenheit)")
	summary := flag.Bool("summary", false, "print one line per report instead of JSON")
	enhanceFlag := flag.Bool("enhance", false, "request an enhanced advisory from the text-generation proxy")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: replay [flags] request.json...")
		flag.Usage()
		os.Exit(2)
	}

	if *now != "" {
		t, err := time.Parse(time.RFC3339, *now)
		if err != nil {
			fatalf("invalid -now: %v", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(t))
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}
	fuser := domain.NewFuser(cfg.FusionOptions())

	var generator enhance.Generator
	if *enhanceFlag {
		if cfg.AIAPIKey == "" {
			fatalf("-enhance requires AI_API_KEY")
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		generator = textgen.NewClient(textgen.Config{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		}, logger, observability.NewMetricsForTesting())
	}

	failed := false
	for _, path := range flag.Args() {
		report, err := replay(fuser, path, *lang, *unit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}

		if generator != nil {
			report, err = enhanceReport(generator, report, cfg.AITimeout)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: enhancement failed, keeping rules advisory: %v\n", path, err)
			}
		}

		if err := writeReport(report, *summary); err != nil {
			fatalf("write output: %v", err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func replay(fuser *domain.Fuser, path, lang, unit string) (domain.FusionReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FusionReport{}, err
	}

	req, err := domain.ParseFusionRequest(domain.RawEvent{Value: data})
	if err != nil {
		return domain.FusionReport{}, err
	}
	if lang != "" {
		req.Lang = lang
	}
	if unit != "" {
		req.Unit = domain.ParseUnit(unit)
	}

	return fuser.Fuse(req)
}

func enhanceReport(generator enhance.Generator, report domain.FusionReport, timeout time.Duration) (domain.FusionReport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reply, err := generator.Generate(ctx, enhance.BuildPrompt(enhance.PromptFromReport(report)))
	if err != nil {
		return report, err
	}
	e, err := enhance.ParseEnhancement(reply)
	if err != nil {
		return report, err
	}
	return report.WithEnhancement(e.Text, e.Tips), nil
}

func writeReport(report domain.FusionReport, summary bool) error {
	if summary {
		reliability := "n/a"
		if report.Reliability != nil {
			reliability = report.Reliability.Level
		}
		_, err := fmt.Printf("%s\t%s\tcode=%d->%d\treliability=%s\t%s\n",
			report.Location.Key, report.ObservedAt, report.ReportedCode, report.EffectiveCode,
			reliability, report.Advisory.Text)
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "replay: "+format+"\n", args...)
	os.Exit(1)
}
