package main

import (
	"context"
	"flag"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"datepicker/internal/config"
	"datepicker/internal/events"
	"datepicker/internal/ics"
	appLog "datepicker/internal/log"
	"datepicker/internal/picker"
	"datepicker/internal/script"
	"datepicker/internal/web"
)

type flagConfig struct {
	configPath string
	attrs      string
	input      string
	icsURL     string
	icsDays    int
	script     string
	listen     string
	basicAuth  string
	debug      bool
	metrics    bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("datepicker starting", "version", "0.1.0")

	opts, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	var layers []config.Partial
	if flags.attrs != "" {
		q, err := url.ParseQuery(flags.attrs)
		if err != nil {
			appLog.Error("invalid -attrs", err)
			os.Exit(2)
		}
		attrs, err := config.FromAttributes(q)
		if err != nil {
			appLog.Error("invalid attribute options", err)
			os.Exit(2)
		}
		layers = append(layers, attrs)
	}
	resolved := config.Resolve(*opts, layers...)

	appLog.Info("effective options",
		"format", resolved.Format,
		"locale", resolved.Locale,
		"time_zone", resolved.TimeZone,
		"min_date", resolved.MinDate,
		"max_date", resolved.MaxDate,
		"multidate", resolved.AllowMultidate,
		"script", flags.script,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	var pickerOpts []picker.Option
	var reg *prometheus.Registry
	if flags.metrics {
		reg = prometheus.NewRegistry()
		m, err := events.NewMetrics(reg)
		if err != nil {
			appLog.Error("failed to register metrics", err)
			os.Exit(1)
		}
		pickerOpts = append(pickerOpts, picker.WithMetrics(m))
	}

	rec := &events.Recorder{}
	sink := events.Multi{&events.JSONSink{W: os.Stdout}}
	if flags.listen != "" {
		sink = append(sink, rec)
	}
	p, err := picker.New(resolved, &picker.Field{Value: flags.input}, sink, pickerOpts...)
	if err != nil {
		appLog.Error("invalid options", err)
		os.Exit(2)
	}

	if flags.icsURL != "" {
		if err := importBlackouts(ctx, p, flags.icsURL, flags.icsDays); err != nil {
			appLog.Error("failed to import blackout calendar", err)
			os.Exit(1)
		}
	}

	in := io.Reader(os.Stdin)
	if flags.script != "" && flags.script != "-" {
		f, err := os.Open(flags.script)
		if err != nil {
			appLog.Error("failed to open script", err, "path", flags.script)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	if err := script.Run(ctx, p, in, os.Stdout); err != nil {
		appLog.Error("script failed", err)
		os.Exit(1)
	}

	if flags.listen != "" {
		var auth *web.BasicAuth
		if user, pass, ok := strings.Cut(flags.basicAuth, ":"); ok {
			auth = &web.BasicAuth{Username: user, Password: pass}
		}
		var gatherer prometheus.Gatherer
		if reg != nil {
			gatherer = reg
		}
		if err := web.NewServer(p, rec, gatherer, auth).Serve(ctx, flags.listen); err != nil {
			appLog.Error("HTTP server failed", err, "listen", flags.listen)
			os.Exit(1)
		}
	}

	if reg != nil {
		dumpMetrics(reg)
	}
	appLog.Info("datepicker exiting", "dates", p.DateString())
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "datepicker.yaml", "Path to the options file (created with defaults if missing)")
	flag.StringVar(&cfg.attrs, "attrs", "", "Attribute options as a query string, e.g. 'data-date-format=YYYY-MM-DD&data-date-min-date=2020-01-01'")
	flag.StringVar(&cfg.input, "input", "", "Initial input text")
	flag.StringVar(&cfg.icsURL, "ics", "", "Blackout calendar (path, file:// or http(s) URL)")
	flag.IntVar(&cfg.icsDays, "ics-days", 365, "Days after today to expand the blackout calendar")
	flag.StringVar(&cfg.script, "script", "-", "Intent script, one command per line ('-' reads stdin)")
	flag.StringVar(&cfg.listen, "listen", "", "Serve the picker over HTTP on this address after the script ran")
	flag.StringVar(&cfg.basicAuth, "basic-auth", "", "user:password required by the HTTP API (except /health)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&cfg.metrics, "metrics", false, "Log event counters at exit")

	flag.Parse()

	return cfg
}

func importBlackouts(ctx context.Context, p *picker.Picker, src string, days int) error {
	now := time.Now().In(p.Location())
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	w := ics.Window{
		Location: p.Location(),
		Start:    start,
		End:      start.AddDate(0, 0, days),
	}
	b, err := ics.Import(ctx, ics.NewFetcher(0), ics.Source{ID: "cli", URL: src}, w, p.Locale())
	if err != nil {
		return err
	}
	return p.ImportBlackouts(b)
}

func dumpMetrics(reg *prometheus.Registry) {
	mfs, err := reg.Gather()
	if err != nil {
		appLog.Error("failed to gather metrics", err)
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			kind := ""
			for _, l := range m.GetLabel() {
				if l.GetName() == "kind" {
					kind = l.GetValue()
				}
			}
			appLog.Info("metric", "name", mf.GetName(), "kind", kind, "value", m.GetCounter().GetValue())
		}
	}
}
