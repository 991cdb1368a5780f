// Command qparse reads a JSON query document and prints the parsed
// match-expression tree, or reports a structured parse error.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/docquery/qparse/adapter/queryparser"
	"github.com/docquery/qparse/config"
	"github.com/docquery/qparse/pkg/bsondoc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	fs := pflag.NewFlagSet("qparse", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	inputPath := fs.String("file", "", "path to a JSON query document (default: stdin)")
	printDefaultConfig := fs.Bool("print-default-config", false, "write a default YAML config to stdout and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *printDefaultConfig {
		if err := config.WriteDefault(stdout); err != nil {
			fmt.Fprintln(stdout, err)
			return 2
		}
		return 0
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return 2
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return 2
	}
	defer logger.Sync()

	raw, err := readInput(*inputPath, stdin)
	if err != nil {
		logger.Error("reading input", zap.Error(err))
		return 1
	}

	doc, err := bsondoc.FromJSON(raw)
	if err != nil {
		logger.Error("decoding JSON", zap.Error(err))
		return 1
	}

	parser := queryparser.NewParser(parserOptions(cfg)...)

	tree, err := parser.Parse(doc)
	if err != nil {
		var qe *queryparser.Error
		if errors.As(err, &qe) {
			logger.Warn("parse failed", zap.String("code", qe.Code.String()), zap.String("message", qe.Message))
		} else {
			logger.Error("parse failed", zap.Error(err))
		}
		return 1
	}

	fmt.Fprint(stdout, tree.Dump())
	return 0
}

func parserOptions(cfg config.Config) []queryparser.Option {
	opts := []queryparser.Option{
		queryparser.WithMaxDepth(cfg.MaxDepth),
		queryparser.WithDBRefStrict(cfg.DBRefStrict),
	}
	if !cfg.EnableWhere {
		opts = append(opts, queryparser.WithWhereParser(disabledCallback("$where")))
	}
	if !cfg.EnableText {
		opts = append(opts, queryparser.WithTextParser(disabledTextCallback()))
	}
	if !cfg.EnableGeo {
		opts = append(opts, queryparser.WithGeoParser(disabledGeoCallback()))
	}
	return opts
}

func disabledCallback(op string) queryparser.WhereParser {
	return func(bsondoc.Value) (any, error) {
		return nil, fmt.Errorf("%s is disabled by configuration", op)
	}
}

func disabledTextCallback() queryparser.TextParser {
	return func(bsondoc.Value) (any, error) {
		return nil, fmt.Errorf("$text is disabled by configuration")
	}
}

func disabledGeoCallback() queryparser.GeoParser {
	return func(field, op string, raw bsondoc.Value) (any, error) {
		return nil, fmt.Errorf("%s is disabled by configuration", op)
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func newLogger(level string) (*zap.Logger, error) {
	var zl zapcore.Level
	if err := zl.Set(level); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}
