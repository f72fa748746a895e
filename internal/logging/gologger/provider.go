// Package gologger adapts goliatone/go-logger to the editorial logging
// interfaces so hosts get structured, leveled output without the module
// depending on a concrete logger anywhere else.
package gologger

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/deptworks/go-editorial/internal/logging"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

// Config captures the knobs exposed by the go-logger adapter.
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

var levelNames = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out named child loggers backed by a shared go-logger root.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider constructs a logger provider backed by go-logger.
func NewProvider(cfg Config) (*Provider, error) {
	options, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}
	return &Provider{root: glog.NewLogger(options...)}, nil
}

func buildOptions(cfg Config) ([]glog.Option, error) {
	options := []glog.Option{}

	if name := strings.ToLower(strings.TrimSpace(cfg.Level)); name != "" {
		level, ok := levelNames[name]
		if !ok {
			return nil, fmt.Errorf("logging: unsupported go-logger level %q", cfg.Level)
		}
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}
	return options, nil
}

// GetLogger satisfies interfaces.LoggerProvider.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return adapt(p.root)
	}
	return adapt(p.root.GetLogger(name))
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return loggerAdapter{inner: inner}
}

type loggerAdapter struct {
	inner glog.Logger
}

func (l loggerAdapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l loggerAdapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l loggerAdapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l loggerAdapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l loggerAdapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l loggerAdapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l loggerAdapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return adapt(with.WithFields(maps.Clone(fields)))
	}
	if with, ok := l.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		return adapt(with.With(pairs(fields)...))
	}
	return l
}

func (l loggerAdapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return adapt(l.inner.WithContext(ctx))
}

// pairs flattens fields into sorted key/value arguments for loggers that only
// support the variadic With form.
func pairs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}
