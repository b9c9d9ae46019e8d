package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "COORD"

var ErrConfigNotFound = errors.New("config file not found")

var decodeHook = mapstructure.ComposeDecodeHookFunc(
	labelPairHook,
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
)

type MQTT struct {
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	ClientID       string        `mapstructure:"client_id" yaml:"client_id"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout" yaml:"publish_timeout"`
	ReconnectMax   time.Duration `mapstructure:"reconnect_max" yaml:"reconnect_max"`
}

// BrokerURL is the paho server URL for the configured host and port.
func (m MQTT) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", m.Host, m.Port)
}

type Agent struct {
	Source            string        `mapstructure:"source" yaml:"source"`
	WindowSize        int           `mapstructure:"window_size" yaml:"window_size"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`
	LabelPairs        []LabelPair   `mapstructure:"label_pairs" yaml:"label_pairs"`
	LabelFile         string        `mapstructure:"label_file" yaml:"label_file,omitempty"`
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type Root struct {
	MQTT  MQTT  `mapstructure:"mqtt" yaml:"mqtt"`
	Agent Agent `mapstructure:"agent" yaml:"agent"`
	Log   Log   `mapstructure:"log" yaml:"log"`
}

func Default() *Root {
	return &Root{
		MQTT: MQTT{
			Host:           "localhost",
			Port:           1883,
			ConnectTimeout: 10 * time.Second,
			PublishTimeout: 5 * time.Second,
			ReconnectMax:   30 * time.Second,
		},
		Agent: Agent{
			Source:            "dialog_coordination_agent",
			WindowSize:        5,
			HeartbeatInterval: time.Second,
			LabelPairs:        DefaultLabelPairs(),
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("mqtt.host", d.MQTT.Host)
	v.SetDefault("mqtt.port", d.MQTT.Port)
	v.SetDefault("mqtt.client_id", d.MQTT.ClientID)
	v.SetDefault("mqtt.connect_timeout", d.MQTT.ConnectTimeout)
	v.SetDefault("mqtt.publish_timeout", d.MQTT.PublishTimeout)
	v.SetDefault("mqtt.reconnect_max", d.MQTT.ReconnectMax)

	v.SetDefault("agent.source", d.Agent.Source)
	v.SetDefault("agent.window_size", d.Agent.WindowSize)
	v.SetDefault("agent.heartbeat_interval", d.Agent.HeartbeatInterval)
	v.SetDefault("agent.label_file", d.Agent.LabelFile)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load resolves configuration from defaults, the optional file at path,
// COORD_* environment variables and flags, in increasing precedence.
// Files ending in .ini, .cfg or .conf are read as INI; any other extension
// viper supports is read by viper. flags may be nil.
func Load(v *viper.Viper, path string, flags *pflag.FlagSet) (*Root, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{"mqtt.host", "mqtt.port", "log.level"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	if path != "" {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("stat config: %w", err)
		}
		if isINI(path) {
			err = readINI(v, path)
		} else {
			v.SetConfigFile(path)
			err = v.ReadInConfig()
		}
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Root
	if err := v.Unmarshal(&c, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if lf := c.Agent.LabelFile; lf != "" {
		// A label_file set in the config file is relative to that file.
		if path != "" && !filepath.IsAbs(lf) && v.InConfig("agent.label_file") {
			lf = filepath.Join(filepath.Dir(path), lf)
		}
		pairs, err := LoadLabelFile(lf)
		if err != nil {
			return nil, err
		}
		c.Agent.LabelPairs = append(c.Agent.LabelPairs, pairs...)
	}
	if len(c.Agent.LabelPairs) == 0 {
		c.Agent.LabelPairs = DefaultLabelPairs()
	}
	c.Agent.LabelPairs = dedupe(c.Agent.LabelPairs)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Root) Validate() error {
	var errs []error
	if c.MQTT.Host == "" {
		errs = append(errs, errors.New("mqtt.host must not be empty"))
	}
	if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
		errs = append(errs, fmt.Errorf("mqtt.port %d out of range", c.MQTT.Port))
	}
	if c.Agent.Source == "" {
		errs = append(errs, errors.New("agent.source must not be empty"))
	}
	if c.Agent.WindowSize < 1 {
		errs = append(errs, fmt.Errorf("agent.window_size must be at least 1, got %d", c.Agent.WindowSize))
	}
	if c.Agent.HeartbeatInterval <= 0 {
		errs = append(errs, errors.New("agent.heartbeat_interval must be positive"))
	}
	if len(c.Agent.LabelPairs) == 0 {
		errs = append(errs, errors.New("agent.label_pairs must not be empty"))
	}
	for i, p := range c.Agent.LabelPairs {
		if p.Anchor == "" || p.Follow == "" {
			errs = append(errs, fmt.Errorf("agent.label_pairs[%d]: anchor and follow are required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// String renders the effective configuration as YAML.
func (c *Root) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return string(b)
}
