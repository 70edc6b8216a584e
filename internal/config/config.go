package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"serialx/internal/serial"
)

// EnvPrefix selects environment overrides, e.g. SERIALX__CODEC__PRIME.
const EnvPrefix = "SERIALX__"

type CodecCfg struct {
	Prime uint64 `koanf:"prime"`
}

type LogCfg struct {
	Level string `koanf:"level"` // debug|info|warn|error
	JSON  bool   `koanf:"json"`
}

type UICfg struct {
	Color    bool `koanf:"color"`
	Markdown bool `koanf:"markdown"` // render help through glamour
	Verify   bool `koanf:"verify"`   // offer a round-trip check after each result
	Width    int  `koanf:"width"`
}

type BatchCfg struct {
	OutputDir string   `koanf:"output_dir"`
	WarnAbove int      `koanf:"warn_above"` // ask before generating more units than this
	Sinks     []string `koanf:"sinks"`      // where "save" sends a batch
}

type KafkaCfg struct {
	Brokers      []string `koanf:"brokers"`
	Topic        string   `koanf:"topic"`
	ClientID     string   `koanf:"client_id"`
	RequiredAcks int16    `koanf:"required_acks"` // 0,1,-1
}

type TelemetryCfg struct {
	Textfile string `koanf:"textfile"` // prometheus text exposition written on exit
}

type Config struct {
	SchemaVersion string       `koanf:"schema_version"`
	Codec         CodecCfg     `koanf:"codec"`
	Catalog       string       `koanf:"catalog"`
	Log           LogCfg       `koanf:"log"`
	UI            UICfg        `koanf:"ui"`
	Batch         BatchCfg     `koanf:"batch"`
	Kafka         KafkaCfg     `koanf:"kafka"`
	Telemetry     TelemetryCfg `koanf:"telemetry"`
}

// Defaults is the configuration used when no file or env var says otherwise.
func Defaults() Config {
	return Config{
		SchemaVersion: SupportedSchema,
		Codec:         CodecCfg{Prime: serial.DefaultPrime},
		Log:           LogCfg{Level: "warn"},
		UI:            UICfg{Color: true, Markdown: true, Verify: true, Width: 80},
		Batch:         BatchCfg{OutputDir: ".", WarnAbove: 100, Sinks: []string{"csvfile"}},
		Kafka:         KafkaCfg{ClientID: "serialx", RequiredAcks: 1},
	}
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// Load merges YAML (if present) with env-vars (prefix `SERIALX__`,
// delimiter `__`) on top of Defaults. A relative catalog path is resolved
// against the config file's directory.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want %q)", sv, SupportedSchema)
	}

	_ = k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	if cfg.Catalog != "" && path != "" && !filepath.IsAbs(cfg.Catalog) {
		cfg.Catalog = filepath.Join(filepath.Dir(path), cfg.Catalog)
	}
	applyDefaults(&cfg)
	return cfg, cfg.validate()
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	c.SchemaVersion = SupportedSchema
	if c.Codec.Prime == 0 {
		c.Codec.Prime = serial.DefaultPrime
	}
	if c.Batch.WarnAbove <= 0 {
		c.Batch.WarnAbove = 100
	}
	if c.Batch.OutputDir == "" {
		c.Batch.OutputDir = "."
	}
	if c.UI.Width <= 0 {
		c.UI.Width = 80
	}
	c.Batch.Sinks = splitList(c.Batch.Sinks)
	c.Kafka.Brokers = splitList(c.Kafka.Brokers)
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "serialx"
	}
}

func (c Config) validate() error {
	for _, s := range c.Batch.Sinks {
		switch s {
		case "csvfile":
		case "kafka":
			if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
				return fmt.Errorf("batch sink kafka needs kafka.brokers and kafka.topic")
			}
		default:
			return fmt.Errorf("unknown batch sink %q", s)
		}
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
