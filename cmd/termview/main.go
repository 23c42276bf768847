// Package main is the entry point for termview, which replays program
// output through a termcore widget.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/dshills/termcore/internal/cellbuf"
	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/graphic"
	"github.com/dshills/termcore/internal/link"
	"github.com/dshills/termcore/internal/logging"
	"github.com/dshills/termcore/internal/metrics"
	"github.com/dshills/termcore/internal/surface"
	"github.com/dshills/termcore/internal/termio"
	"github.com/dshills/termcore/internal/timer"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath  string
	replay      string
	cols, rows  int
	headless    bool
	sinkPath    string
	metricsAddr string
	logLevel    string
	logFile     string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}
	applyFlags(cfg, opts)

	headless := opts.headless || !term.IsTerminal(int(os.Stdout.Fd()))
	logOpts := logging.Options{
		Level:  cfg.Logging.Level,
		Format: logging.Format(cfg.Logging.Format),
		File:   cfg.Logging.File,
	}
	if headless {
		logOpts.Writer = os.Stderr
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	in, err := openInput(opts.replay, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer in.Close()

	sink := io.Discard
	if opts.sinkPath != "" {
		f, err := os.Create(opts.sinkPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		sink = f
	}

	v := &viewer{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		in:       in,
		launcher: link.NewExecLauncher(logger.Logger),
	}
	if cfg.Metrics.Enabled {
		v.metrics = metrics.New(cfg.Metrics.Namespace)
	}
	v.screen = cellbuf.NewScreen(opts.cols, opts.rows,
		cellbuf.WithScrollback(cfg.Behavior.Scrollback),
		cellbuf.WithSink(sink),
		cellbuf.WithLogger(logger.Logger))

	if headless {
		err = v.runHeadless(os.Stdout)
	} else {
		err = v.runInteractive()
	}
	if err != nil {
		logger.Error("termview failed", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("termview", flag.ContinueOnError)
	var opts options
	var showVersion bool

	fs.StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "Path to configuration file (TOML or YAML)")
	fs.StringVarP(&opts.replay, "replay", "r", "", "File of program output to replay (default stdin)")
	fs.IntVar(&opts.cols, "cols", 80, "Grid columns")
	fs.IntVar(&opts.rows, "rows", 24, "Grid rows")
	fs.BoolVar(&opts.headless, "headless", false, "Compose once and print the grid as text")
	fs.StringVar(&opts.sinkPath, "sink", "", "File receiving bytes meant for the program")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFile, "log-file", "", "Write the log to this file")
	fs.BoolVarP(&showVersion, "version", "v", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "termview - replay terminal output through a termcore widget\n\n")
		fmt.Fprintf(os.Stderr, "Usage: termview [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  termview -r session.log            Show a recorded session, Ctrl+Q quits\n")
		fmt.Fprintf(os.Stderr, "  some-cmd | termview --headless     Print the final screen\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if showVersion {
		fmt.Printf("termview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return opts, flag.ErrHelp
	}
	if opts.cols < 1 || opts.rows < 1 {
		return opts, fmt.Errorf("invalid grid size %dx%d", opts.cols, opts.rows)
	}
	if opts.logLevel != "" {
		switch opts.logLevel {
		case "debug", "info", "warn", "error":
		default:
			return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
		}
	}
	return opts, nil
}

// applyFlags lets command-line flags override the loaded config.
func applyFlags(cfg *config.Config, opts options) {
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = opts.metricsAddr
	}
}

func openInput(path string, headless bool) (io.ReadCloser, error) {
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open replay: %w", err)
		}
		return f, nil
	}
	if !headless && term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("--replay is required when stdin is a terminal")
	}
	return io.NopCloser(os.Stdin), nil
}

type viewer struct {
	cfg      *config.Config
	opts     options
	logger   *logging.Logger
	in       io.ReadCloser
	screen   *cellbuf.Screen
	metrics  *metrics.Metrics
	launcher *link.ExecLauncher
}

func (v *viewer) widgetOptions() []termio.Option {
	loader := graphic.NewLoader(termio.Resolver(v.cfg), graphic.WithLogger(v.logger.Logger))
	opts := []termio.Option{
		termio.WithLogger(v.logger.Logger),
		termio.WithConfig(v.cfg),
		termio.WithLauncher(v.launcher),
		termio.WithFactory(termio.NewFactory(loader)),
		termio.WithClipboard(surface.NewClipboard()),
	}
	if v.metrics != nil {
		opts = append(opts, termio.WithObserver(v.metrics))
	}
	return opts
}

// runHeadless feeds all input, composes one frame and prints it.
func (v *viewer) runHeadless(out io.Writer) error {
	var last termio.Frame
	opts := append(v.widgetOptions(),
		termio.WithScheduler(timer.NewManual()),
		termio.OnFrame(func(f termio.Frame) { last = f }))
	w := termio.New(v.screen, opts...)
	defer w.Close()

	if err := v.feed(context.Background()); err != nil {
		return err
	}
	w.Render()
	_, err := io.WriteString(out, frameText(last))
	return err
}

// frameText renders a frame as plain text, one line per row with
// trailing blanks removed.
func frameText(f termio.Frame) string {
	var sb strings.Builder
	for _, row := range f.Cells {
		line := make([]rune, 0, len(row))
		for i, c := range row {
			if i > 0 && c.Rune == 0 && c.DoubleWidth && row[i-1].Rune != 0 {
				continue
			}
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			line = append(line, r)
		}
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (v *viewer) runInteractive() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tscr, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}
	palette, err := surface.Palette(v.cfg)
	if err != nil {
		return err
	}
	s := surface.New(tscr,
		surface.WithLogger(v.logger.Logger),
		surface.WithPalette(palette),
		surface.WithKeyFilter(func(e *tcell.EventKey) bool {
			if surface.QuitKey(e) {
				cancel()
				return true
			}
			return false
		}))
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	opts := append(v.widgetOptions(),
		termio.OnFrame(s.Draw),
		termio.OnNotify(func(n termio.Notification) { v.notified(s, n) }))
	w := termio.New(v.screen, opts...)
	defer w.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Loop().Run(ctx) })
	g.Go(func() error {
		defer cancel()
		return s.Run(ctx, w)
	})
	g.Go(func() error { return v.feed(ctx) })
	if v.metrics != nil {
		g.Go(func() error { return v.serveMetrics(ctx) })
	}
	if v.opts.configPath != "" {
		if _, err := os.Stat(v.opts.configPath); err == nil {
			g.Go(func() error { return v.watchConfig(ctx, w, s) })
		}
	}
	err = g.Wait()
	v.launcher.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (v *viewer) notified(s *surface.Surface, n termio.Notification) {
	switch n.Name {
	case termio.NotifyChanged:
	case termio.NotifyBell:
		s.Beep()
	case termio.NotifyExited:
		v.logger.Info("replay finished; Ctrl+Q quits")
	default:
		v.logger.Debug("widget notification", "name", n.Name, "payload", n.Payload)
	}
}

// feed copies input into the screen until EOF or ctx is done.
func (v *viewer) feed(ctx context.Context) error {
	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			v.in.Close()
		}()
	}
	buf := make([]byte, 4096)
	for {
		n, err := v.in.Read(buf)
		if n > 0 {
			v.screen.Feed(buf[:n])
			if v.metrics != nil {
				v.metrics.BytesFed(n)
			}
		}
		if errors.Is(err, io.EOF) {
			v.screen.Exit()
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
	}
}

func (v *viewer) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", v.metrics.Handler())
	srv := &http.Server{
		Addr:              v.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			v.logger.Warn("metrics shutdown", "err", err)
		}
	}()
	v.logger.Info("serving metrics", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func (v *viewer) watchConfig(ctx context.Context, w *termio.Widget, s *surface.Surface) error {
	return config.Watch(ctx, v.opts.configPath, func(cfg *config.Config) {
		applyFlags(cfg, v.opts)
		v.logger.SetLevel(cfg.Logging.Level)
		w.ConfigUpdate(cfg)
		p, err := surface.Palette(cfg)
		if err != nil {
			v.logger.Warn("theme colors", "err", err)
			return
		}
		s.SetPalette(p)
		w.Render()
	}, config.WithWatchLogger(v.logger.Logger))
}
