package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	OutputDir     string   `mapstructure:"output_dir" yaml:"output_dir"`
	TemplateName  string   `mapstructure:"template_name" yaml:"template_name"`
	ExportFormats []string `mapstructure:"export_formats" yaml:"export_formats"`
	ValueColumns  []string `mapstructure:"value_columns" yaml:"value_columns"`
	Verbose       bool     `mapstructure:"verbose" yaml:"verbose"`
	SheetIndex    int      `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Optional outputs
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
	PlotData    bool   `mapstructure:"plot_data" yaml:"plot_data"`
	PlotWorkers int    `mapstructure:"plot_workers" yaml:"plot_workers"`
}

var defaults = map[string]any{
	"output_dir":     ".",
	"template_name":  "ModifyThis.xlsx",
	"export_formats": []string{"tsv"},
	"value_columns":  []string{"isotopologue_fraction"},
	"verbose":        false,
	"sheet_index":    1,
	"metrics_file":   "",
	"plot_data":      false,
	"plot_workers":   4,
}

// Keys returns the configuration keys in alphabetical order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".isoplot"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.isoplot/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ISOPLOT")
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ranges that the CLI relies on.
func (c *Global) Validate() error {
	if c.SheetIndex < 1 {
		return fmt.Errorf("sheet_index must be >= 1, got %d", c.SheetIndex)
	}
	if c.PlotWorkers < 1 {
		return fmt.Errorf("plot_workers must be >= 1, got %d", c.PlotWorkers)
	}
	if strings.TrimSpace(c.TemplateName) == "" {
		return fmt.Errorf("template_name is empty")
	}
	if !strings.EqualFold(filepath.Ext(c.TemplateName), ".xlsx") {
		return fmt.Errorf("template_name %q must end in .xlsx", c.TemplateName)
	}
	return nil
}

// Set assigns value to key, parsing it for the key's type. List keys take
// comma separated values. c is left unchanged on error.
func (c *Global) Set(key, value string) error {
	next := *c
	if err := next.set(key, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Global) set(key, value string) error {
	list := func() []string {
		var out []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	switch key {
	case "output_dir":
		c.OutputDir = value
	case "template_name":
		c.TemplateName = value
	case "export_formats":
		c.ExportFormats = list()
	case "value_columns":
		c.ValueColumns = list()
	case "metrics_file":
		c.MetricsFile = value
	case "verbose", "plot_data":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, err)
		}
		if key == "verbose" {
			c.Verbose = b
		} else {
			c.PlotData = b
		}
	case "sheet_index", "plot_workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		if key == "sheet_index" {
			c.SheetIndex = n
		} else {
			c.PlotWorkers = n
		}
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}
