package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/termcore/internal/cellbuf"
	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/link"
	"github.com/dshills/termcore/internal/logging"
	"github.com/dshills/termcore/internal/metrics"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--cols", "100", "--rows=30", "-r", "out.log", "--headless", "--log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, 100, opts.cols)
	assert.Equal(t, 30, opts.rows)
	assert.Equal(t, "out.log", opts.replay)
	assert.True(t, opts.headless)
	assert.Equal(t, "debug", opts.logLevel)
}

func TestParseFlagsRejects(t *testing.T) {
	_, err := parseFlags([]string{"--cols", "0"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"--log-level", "loud"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"--version"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, options{logLevel: "warn", metricsAddr: ":9999"})
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9999", cfg.Metrics.Addr)
}

func newViewer(t *testing.T, input string, cols, rows int) *viewer {
	t.Helper()
	logger, err := logging.New(logging.Options{Level: "error"})
	require.NoError(t, err)
	cfg := config.Default()
	return &viewer{
		cfg:      cfg,
		logger:   logger,
		in:       io.NopCloser(strings.NewReader(input)),
		screen:   cellbuf.NewScreen(cols, rows),
		metrics:  metrics.New("termview_test"),
		launcher: link.NewExecLauncher(logger.Logger),
	}
}

func TestRunHeadless(t *testing.T) {
	v := newViewer(t, "hello\r\n\x1b[1mworld\x1b[0m  \r\n", 10, 3)

	var out bytes.Buffer
	require.NoError(t, v.runHeadless(&out))
	assert.Equal(t, "hello\nworld\n\n", out.String())
}

func TestRunHeadlessWide(t *testing.T) {
	v := newViewer(t, "界x", 6, 1)

	var out bytes.Buffer
	require.NoError(t, v.runHeadless(&out))
	assert.Equal(t, "界x\n", out.String())
}
