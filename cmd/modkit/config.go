package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCmd groups config-related subcommands.
type ConfigCmd struct {
	Init ConfigInit `cmd:"" help:"Write a configuration template"`
}

// ConfigInit scaffolds a configuration file holding every generate flag with
// its default.
type ConfigInit struct {
	Format string `help:"Output format" enum:"json,yaml,yml,toml" default:"json"`
	Path   string `help:"Destination file path (defaults to modkit.<format> in the current directory)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// Run is called by kong when the config init command is executed.
func (c *ConfigInit) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	dest := c.Path
	if dest == "" {
		dest = "modkit." + format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	data, err := renderTemplate(format)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// renderTemplate encodes configTemplate in format.
func renderTemplate(format string) ([]byte, error) {
	root := configTemplate()
	switch format {
	case "json":
		b, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// configTemplate mirrors the flags a config file may set, keyed the way the
// kong resolvers look them up.
func configTemplate() map[string]any {
	root := buildMapFromStruct(reflect.TypeOf(runFlags{}))
	root["log"] = buildMapFromStruct(reflect.TypeOf(logFlags{}))
	return root
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

func buildMapFromStruct(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if _, isArg := f.Tag.Lookup("arg"); isArg {
			continue
		}
		out[strings.ToLower(f.Name[:1])+f.Name[1:]] = defaultValue(f.Type, expandVars(f.Tag.Get("default")))
	}
	return out
}

func defaultValue(t reflect.Type, def string) any {
	switch t.Kind() {
	case reflect.Slice:
		if def == "" {
			return []string{}
		}
		return strings.Split(def, ",")
	case reflect.Bool:
		return def == "true"
	default:
		return def
	}
}

// expandVars resolves the kong variables used in default tags.
func expandVars(s string) string {
	return strings.ReplaceAll(s, "${kit}", defaultKit)
}
