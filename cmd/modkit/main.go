package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"go.uber.org/zap"

	"github.com/sghaida/modkit/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cliError carries a specific exit code.
type cliError struct {
	code int
	msg  string
}

func (e *cliError) Error() string { return e.msg }

type exitCode int

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	wd, _ := os.Getwd()
	jsonPaths, yamlPaths, tomlPaths := configCandidatePaths(findUserConfig(args), wd)

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("modkit"),
		kong.Description("Generate routing and activator code for modkit modules."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Vars{"version": version, "kit": defaultKit},
		// flags and env override config values
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "modkit:", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	logger, err := logging.New(logging.Options{Level: cli.Log.Level, Format: logging.Format(cli.Log.Format), Output: stderr})
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "modkit: failed to setup logger:", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	kctx.Bind(logger)
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(stdout, (*io.Writer)(nil))

	err = kctx.Run()
	var ce *cliError
	if errors.As(err, &ce) {
		logger.Debug("exit", zap.Int("code", ce.code))
		_, _ = fmt.Fprintln(stderr, "modkit:", ce.msg)
		return ce.code
	}
	kctx.FatalIfErrorf(err)
	return 0
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("MODKIT_CONFIG")
}

// configCandidatePaths lists config files per format. An explicit path comes
// first and is routed by extension; modkit.* files in wd follow.
func configCandidatePaths(userPath, wd string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userPath)
		case ".toml":
			tomlPaths = append(tomlPaths, userPath)
		default:
			jsonPaths = append(jsonPaths, userPath)
		}
	}
	if wd == "" {
		return jsonPaths, yamlPaths, tomlPaths
	}
	jsonPaths = append(jsonPaths, filepath.Join(wd, "modkit.json"))
	yamlPaths = append(yamlPaths, filepath.Join(wd, "modkit.yaml"), filepath.Join(wd, "modkit.yml"))
	tomlPaths = append(tomlPaths, filepath.Join(wd, "modkit.toml"))
	return jsonPaths, yamlPaths, tomlPaths
}
