// Package config loads the YAML configuration file that supplies the query
// commands, field schemas, and polling behavior. Everything here is plain
// I/O; the engine only sees the resulting immutable values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"slurmvision/internal/slurm"
)

const (
	appName    = "slurmvision"
	configFile = "config.yaml"

	// MinPollInterval is the politeness floor for a shared scheduler.
	// Configured values below it are kept but flagged, never rejected.
	MinPollInterval = 2 * time.Second

	defaultPollInterval = 5 * time.Second
)

// FieldConfig is one column of a query schema.
type FieldConfig struct {
	Name  string `yaml:"name"`
	Width int    `yaml:"width,omitempty"`
}

// SchemaConfig describes how a query's output is split into records.
type SchemaConfig struct {
	Fields    []FieldConfig `yaml:"fields"`
	Delimiter string        `yaml:"delimiter"`
	SkipLines int           `yaml:"skip_lines,omitempty"`
	Identity  string        `yaml:"identity"`
}

// QueryConfig is one external query: base command, pass-through options, and
// the schema for its output.
type QueryConfig struct {
	Command []string     `yaml:"command"`
	Options []string     `yaml:"options,omitempty"`
	Schema  SchemaConfig `yaml:"schema"`
}

// Config is the full user-facing configuration.
type Config struct {
	PollInterval       Duration    `yaml:"poll_interval"`
	CommandTimeout     Duration    `yaml:"command_timeout"`
	Jobs               QueryConfig `yaml:"jobs"`
	Nodes              QueryConfig `yaml:"nodes"`
	Detail             QueryConfig `yaml:"detail"`
	CancelCommand      []string    `yaml:"cancel_command"`
	MyJobsFirst        bool        `yaml:"my_jobs_first"`
	AdvanceAfterSelect bool        `yaml:"advance_after_select"`
	UserField          string      `yaml:"user_field,omitempty"`
	Theme              string      `yaml:"theme,omitempty"`
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(xdg.ConfigHome, appName, configFile)
}

// Default returns the built-in configuration, mirroring the stock squeue and
// sinfo format options.
func Default() *Config {
	return &Config{
		PollInterval:   Duration(defaultPollInterval),
		CommandTimeout: Duration(slurm.DefaultTimeout),
		Jobs: QueryConfig{
			Command: []string{"squeue", "--noheader", "-o", "%i|%u|%j|%T|%P|%M|%N"},
			Schema: SchemaConfig{
				Fields: []FieldConfig{
					{Name: "JOBID", Width: 10},
					{Name: "USER", Width: 10},
					{Name: "NAME", Width: 24},
					{Name: "STATE", Width: 10},
					{Name: "PARTITION", Width: 10},
					{Name: "TIME", Width: 10},
					{Name: "NODELIST", Width: 20},
				},
				Delimiter: "|",
				Identity:  "JOBID",
			},
		},
		Nodes: QueryConfig{
			Command: []string{"sinfo", "--noheader", "-o", "%P|%c|%a|%l|%G|%D|%t"},
			Schema: SchemaConfig{
				Fields: []FieldConfig{
					{Name: "PARTITION", Width: 12},
					{Name: "CPUS", Width: 6},
					{Name: "AVAIL", Width: 6},
					{Name: "TIMELIMIT", Width: 11},
					{Name: "GRES", Width: 16},
					{Name: "NODES", Width: 6},
					{Name: "STATE", Width: 8},
				},
				Delimiter: "|",
				Identity:  "PARTITION",
			},
		},
		Detail: QueryConfig{
			Command: []string{
				"squeue", "--noheader", "-j", "{id}",
				"-o", "%i|%u|%j|%T|%r|%D|%C|%P|%M|%L|%V|%S|%Z",
			},
			Schema: SchemaConfig{
				Fields: []FieldConfig{
					{Name: "JOBID"},
					{Name: "USER"},
					{Name: "NAME"},
					{Name: "STATE"},
					{Name: "REASON"},
					{Name: "NODES"},
					{Name: "CPUS"},
					{Name: "PARTITION"},
					{Name: "TIME_USED"},
					{Name: "TIME_LEFT"},
					{Name: "SUBMIT_TIME"},
					{Name: "START_TIME"},
					{Name: "WORK_DIR"},
				},
				Delimiter: "|",
				Identity:  "JOBID",
			},
		},
		CancelCommand: []string{"scancel", "{id}"},
		MyJobsFirst:   true,
		UserField:     "USER",
		Theme:         "auto",
	}
}

// Load reads the config at path (or the default location when path is empty)
// and merges it over the defaults. A missing file is not an error. The
// returned warnings are caution conditions to surface in the UI, not
// failures.
func Load(path string) (*Config, []string, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, cfg.Validate(), nil
		}
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.fillDefaults()
	return cfg, cfg.Validate(), nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = def.CommandTimeout
	}
	if len(c.Jobs.Command) == 0 {
		c.Jobs = def.Jobs
	}
	if len(c.Nodes.Command) == 0 {
		c.Nodes = def.Nodes
	}
	if len(c.Detail.Command) == 0 {
		c.Detail = def.Detail
	}
	if len(c.CancelCommand) == 0 {
		c.CancelCommand = def.CancelCommand
	}
	if c.UserField == "" {
		c.UserField = def.UserField
	}
	if c.Theme == "" {
		c.Theme = def.Theme
	}
}

// Validate reports caution conditions worth surfacing in the UI. It never
// rejects a configuration.
func (c *Config) Validate() []string {
	var warnings []string
	if c.PollInterval.Std() < MinPollInterval {
		warnings = append(warnings, fmt.Sprintf(
			"poll interval %s is below the %s floor; please be kind to your scheduler",
			c.PollInterval.Std(), MinPollInterval))
	}
	for _, q := range []struct {
		name string
		q    QueryConfig
	}{{"jobs", c.Jobs}, {"nodes", c.Nodes}, {"detail", c.Detail}} {
		if len(q.q.Schema.Fields) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s schema has no fields", q.name))
		}
		if q.q.Schema.Identity == "" {
			warnings = append(warnings, fmt.Sprintf("%s schema has no identity field", q.name))
		}
	}
	return warnings
}

// FieldSchema converts a SchemaConfig into the engine's immutable schema.
func (s SchemaConfig) FieldSchema() slurm.FieldSchema {
	fields := make([]slurm.Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = slurm.Field{Name: f.Name, Width: f.Width}
	}
	delim := s.Delimiter
	if delim == "" {
		delim = "|"
	}
	return slurm.FieldSchema{
		Fields:    fields,
		Delimiter: delim,
		SkipLines: s.SkipLines,
		Identity:  s.Identity,
	}
}

// Query converts a QueryConfig into the engine's query value.
func (q QueryConfig) Query() slurm.Query {
	return slurm.Query{
		Command: q.Command,
		Options: q.Options,
		Schema:  q.Schema.FieldSchema(),
	}
}
