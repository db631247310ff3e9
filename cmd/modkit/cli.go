package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sghaida/modkit/codegen"
	"github.com/sghaida/modkit/emit"
	"github.com/sghaida/modkit/project"
)

const defaultKit = emit.DefaultKitPath

// driftExitCode is returned by check when generated files are out of date.
const driftExitCode = 3

// CLI is the modkit command line.
type CLI struct {
	Config string   `help:"Configuration file (json, yaml or toml)" type:"path" env:"MODKIT_CONFIG"`
	Log    logFlags `embed:"" prefix:"log."`

	Generate GenerateCmd `cmd:"" help:"Scan packages and write the generated artifacts"`
	Check    CheckCmd    `cmd:"" help:"Report generated files that are out of date"`
	Conf     ConfigCmd   `cmd:"" name:"config" help:"Configuration helpers"`
	Version  VersionCmd  `cmd:"" help:"Print the version"`
}

type logFlags struct {
	Level  string `help:"Log level" default:"info" enum:"debug,info,warn,error" env:"MODKIT_LOG_LEVEL"`
	Format string `help:"Log format" default:"console" enum:"console,json" env:"MODKIT_LOG_FORMAT"`
}

// runFlags are shared by generate and check.
type runFlags struct {
	Dir     string   `help:"Directory package patterns are resolved in" default:"." type:"path" env:"MODKIT_DIR"`
	Output  string   `short:"o" help:"Output package directory" type:"path" env:"MODKIT_OUTPUT"`
	Package string   `help:"Output package name (derived from the output directory when empty)" env:"MODKIT_PACKAGE"`
	Kit     string   `help:"Import path of the runtime package" default:"${kit}" env:"MODKIT_KIT"`
	Tags    []string `help:"Build tags" env:"MODKIT_TAGS"`
	Project string   `help:"HCL project file; runs every module block" type:"path" env:"MODKIT_PROJECT"`

	Patterns []string `arg:"" optional:"" help:"Package patterns (default ./...)"`
}

func (f *runFlags) options(log *zap.Logger) codegen.Options {
	return codegen.Options{
		Dir:       f.Dir,
		Patterns:  f.Patterns,
		OutputDir: f.Output,
		Package:   f.Package,
		KitPath:   f.Kit,
		Tags:      f.Tags,
		Logger:    log,
	}
}

func (f *runFlags) validate() error {
	if f.Project == "" && f.Output == "" {
		return fmt.Errorf("one of --output or --project is required")
	}
	return nil
}

func (f *runFlags) project() (*project.Project, error) {
	return project.Load(f.Project)
}

// GenerateCmd writes the artifacts.
type GenerateCmd struct {
	Flags runFlags `embed:""`
}

// Run is called by kong when the generate command is executed.
func (c *GenerateCmd) Run(ctx context.Context, log *zap.Logger) error {
	f := &c.Flags
	if err := f.validate(); err != nil {
		return err
	}

	if f.Project != "" {
		p, err := f.project()
		if err != nil {
			return err
		}
		_, err = codegen.RunProject(ctx, p, f.options(log))
		return err
	}

	_, err := codegen.Run(ctx, f.options(log))
	return err
}

// CheckCmd reports drift without writing.
type CheckCmd struct {
	Flags runFlags `embed:""`
}

// Run is called by kong when the check command is executed.
func (c *CheckCmd) Run(ctx context.Context, log *zap.Logger, out io.Writer) error {
	f := &c.Flags
	if err := f.validate(); err != nil {
		return err
	}

	var reps []*codegen.Report
	if f.Project != "" {
		p, err := f.project()
		if err != nil {
			return err
		}
		if reps, err = codegen.CheckProject(ctx, p, f.options(log)); err != nil {
			return err
		}
	} else {
		rep, err := codegen.Check(ctx, f.options(log))
		if err != nil {
			return err
		}
		reps = append(reps, rep)
	}

	drift := 0
	for _, r := range reps {
		for _, ch := range r.Changes {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", ch.Kind, r.PkgPath+"/"+ch.Name)
			drift++
		}
	}
	if drift > 0 {
		return &cliError{code: driftExitCode, msg: fmt.Sprintf("%d generated file(s) out of date; run modkit generate", drift)}
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run is called by kong when the version command is executed.
func (VersionCmd) Run(out io.Writer) error {
	_, err := fmt.Fprintln(out, "modkit", version)
	return err
}
