package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/zatchheems/yactatt/config"
	"github.com/zatchheems/yactatt/dimmer"
	"github.com/zatchheems/yactatt/logging"
	pl "github.com/zatchheems/yactatt/platform"
	"github.com/zatchheems/yactatt/tracker"
	"github.com/zatchheems/yactatt/transit"
	"github.com/zatchheems/yactatt/util"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitConfig    = 2
	serverTimeout = 5 * time.Second
)

// options holds the command line. Flags that were given explicitly win
// over the config file, also on every reload.
type options struct {
	configFile string
	real       bool
	headless   bool
	show       bool
	interval   time.Duration
	rows       int
	cols       int
	refresh    int
	brightness int
	set        map[string]bool
}

func parseFlags(args []string) (*options, error) {
	o := &options{set: map[string]bool{}}
	defaults := config.Default()

	fs := flag.NewFlagSet("yactatt", flag.ContinueOnError)
	fs.StringVar(&o.configFile, "config", config.CONFILE, "Path to the YAML config file")
	fs.BoolVar(&o.real, "real", false, "Drive the HUB75 panel on real hardware")
	fs.BoolVar(&o.headless, "headless", false, "No display, log every poll result instead")
	fs.BoolVar(&o.show, "show", false, "Show frame timings in a small TUI (only with -real)")
	fs.DurationVar(&o.interval, "interval", defaults.Tracker.PollInterval, "Poll interval")
	fs.IntVar(&o.rows, "rows", defaults.Display.Rows, "Panel rows")
	fs.IntVar(&o.cols, "cols", defaults.Display.Cols, "Panel columns")
	fs.IntVar(&o.refresh, "refresh", defaults.Display.RefreshRate, "Panel refresh rate in Hz")
	fs.IntVar(&o.brightness, "brightness", defaults.Display.Brightness, "Panel brightness in percent")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		o.set[f.Name] = true
	})
	return o, nil
}

func (o *options) apply(conf *config.Config) {
	conf.RealHW = o.real
	conf.Headless = o.headless
	if o.set["interval"] {
		conf.Tracker.PollInterval = o.interval
	}
	if o.set["rows"] {
		conf.Display.Rows = o.rows
	}
	if o.set["cols"] {
		conf.Display.Cols = o.cols
	}
	if o.set["refresh"] {
		conf.Display.RefreshRate = o.refresh
	}
	if o.set["brightness"] {
		conf.Display.Brightness = o.brightness
	}
}

// loadConfig reads the config file, then applies flags and the
// environment, and validates the result.
func loadConfig(o *options) (config.Config, error) {
	conf, err := config.ReadConfig(o.configFile)
	if err != nil {
		return conf, err
	}
	o.apply(&conf)
	if err := conf.ApplyEnv(); err != nil {
		return conf, &config.ConfigurationError{File: o.configFile, Err: err}
	}
	if err := conf.Validate(); err != nil {
		return conf, &config.ConfigurationError{File: o.configFile, Err: err}
	}
	return conf, nil
}

type App struct {
	opts          *options
	conf          config.Config
	ossignal      chan os.Signal
	configChanges *util.Mailbox[string]
	platform      pl.Platform
	cancel        context.CancelFunc
	shutdownWg    sync.WaitGroup
	stopWatch     func()
	server        *http.Server
}

func NewApp(ossignal chan os.Signal) *App {
	return &App{
		ossignal:      ossignal,
		configChanges: util.NewMailbox[string](),
	}
}

// initialise builds the fetch client, the display platform and the
// scheduler from a.conf and starts the scheduler in the background.
func (a *App) initialise() error {
	endpoint := a.conf.Tracker.Endpoint()
	u, err := endpoint.URL()
	if err != nil {
		return &config.ConfigurationError{File: a.conf.Configfile, Err: err}
	}
	layout, err := tracker.NewLayout(a.conf.Layout)
	if err != nil {
		return &config.ConfigurationError{File: a.conf.Configfile, Err: err}
	}

	client := transit.NewClient(u, endpoint.Normalizer(), a.conf.Tracker.RequestTimeout, a.conf.Tracker.Gzip)
	if a.conf.Tracker.APIKey == "" {
		slog.Warn("No API key configured, requests will be rejected", "env", config.API_KEY_ENV)
	}
	slog.Info("Tracking", "feed", a.conf.Tracker.Feed, "route", a.conf.Tracker.Route, "stop", a.conf.Tracker.Stop,
		"endpoint", client.Endpoint())

	var sched *tracker.Scheduler
	interval := a.conf.Tracker.PollInterval
	if a.conf.Headless {
		sched = tracker.NewHeadless(client, logging.NewOutcomeReporter(slog.Default()), interval)
	} else {
		if a.conf.RealHW {
			rpi := pl.NewRaspberryPiPlatform(a.conf.Display)
			if a.opts != nil && a.opts.show {
				rpi.SetFrameViewer(pl.NewFrameViewer(a.conf.Display.RefreshRate, a.ossignal))
			}
			a.platform = rpi
		} else {
			a.platform = pl.NewTUIPlatform(a.conf.Display, a.ossignal)
		}
		if err := a.platform.Start(); err != nil {
			a.platform.Stop()
			a.platform = nil
			return err
		}
		a.platform.SetBrightness(a.conf.Display.Brightness)

		sched = tracker.New(client, a.platform, layout, interval)
		if a.conf.Night.Enabled {
			sched.SetDimmer(dimmer.New(a.conf.Night.Latitude, a.conf.Night.Longitude,
				a.conf.Display.Brightness, a.conf.Night.Brightness))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.shutdownWg.Add(1)
	go func() {
		defer a.shutdownWg.Done()
		if a.platform != nil {
			select {
			case <-a.platform.Ready():
			case <-ctx.Done():
				return
			}
			if err := sched.Splash(ctx, a.conf.Display.Splash); err != nil {
				return
			}
		}
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Tracker loop stopped", "error", err)
		}
	}()
	return nil
}

// shutdown stops the scheduler between frames, then the platform.
func (a *App) shutdown() {
	if a.cancel != nil {
		a.cancel()
		a.shutdownWg.Wait()
		a.cancel = nil
	}
	if a.platform != nil {
		if _, ok := a.platform.(*pl.TUIPlatform); ok {
			logging.BufferOutput()
		}
		a.platform.Stop()
		a.platform = nil
	}
}

// reload re-reads the configuration and restarts everything with it. A
// broken config file keeps the current setup running.
func (a *App) reload() error {
	conf, err := loadConfig(a.opts)
	if err != nil {
		slog.Error("Reload failed, keeping current configuration", "error", err)
		return nil
	}
	slog.Info("Reloading configuration", "file", a.opts.configFile)
	a.shutdown()
	a.conf = conf
	return a.initialise()
}

// reloadPending reloads when a config change is waiting in the mailbox.
func (a *App) reloadPending() error {
	file, ok := a.configChanges.Take()
	if !ok {
		return nil
	}
	slog.Info("Config file changed", "file", file)
	return a.reload()
}

func (a *App) startWeb() {
	if !a.conf.Web.Enabled {
		return
	}
	a.server = &http.Server{
		Addr:              a.conf.Web.Listen,
		Handler:           config.NewWebHandler(a.conf.Configfile, a.conf.Web.RateLimit),
		ReadHeaderTimeout: serverTimeout,
	}
	go func() {
		slog.Info("Starting config API", "listen", a.conf.Web.Listen)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Config API failed", "error", err)
		}
	}()
}

func (a *App) stopWeb() {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), serverTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		slog.Error("Config API shutdown failed", "error", err)
	}
	a.server = nil
}

// serve handles signals and config changes until told to exit.
func (a *App) serve() int {
	for {
		select {
		case sig := <-a.ossignal:
			if sig == syscall.SIGHUP {
				if err := a.reload(); err != nil {
					return a.exit(err)
				}
				continue
			}
			slog.Info("Received signal, shutting down", "signal", sig)
			return a.exit(nil)
		case <-a.configChanges.Notify():
			if err := a.reloadPending(); err != nil {
				return a.exit(err)
			}
		}
	}
}

func (a *App) exit(err error) int {
	if a.stopWatch != nil {
		a.stopWatch()
		a.stopWatch = nil
	}
	a.stopWeb()
	a.shutdown()
	if err != nil {
		slog.Error("Fatal error", "error", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	var confErr *config.ConfigurationError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &confErr):
		return exitConfig
	default:
		return exitFailure
	}
}

func run(args []string, ossignal chan os.Signal) int {
	opts, err := parseFlags(args)
	if err != nil {
		return exitConfig
	}
	conf, err := loadConfig(opts)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return exitConfig
	}

	simulation := !conf.RealHW && !conf.Headless
	if err := logging.Init(simulation, conf.Logging.Level, conf.Logging.Format, logging.FileOptions{
		Path:       conf.Logging.File,
		MaxSizeMB:  conf.Logging.MaxSizeMB,
		MaxBackups: conf.Logging.MaxBackups,
		MaxAgeDays: conf.Logging.MaxAgeDays,
		Compress:   conf.Logging.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logging: %v\n", err)
		return exitConfig
	}
	defer logging.Close()

	app := NewApp(ossignal)
	app.opts = opts
	app.conf = conf

	if stop, err := config.Watch(conf.Configfile, app.configChanges); err != nil {
		slog.Warn("Config file changes will not be picked up", "error", err)
	} else {
		app.stopWatch = stop
	}
	app.startWeb()

	if err := app.initialise(); err != nil {
		return app.exit(err)
	}
	return app.serve()
}

func main() {
	ossignal := make(chan os.Signal, 10)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	os.Exit(run(os.Args[1:], ossignal))
}
