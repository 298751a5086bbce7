package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/MotionControllerView/internal/asset"
	"github.com/soar/MotionControllerView/internal/gamepad"
	"github.com/soar/MotionControllerView/internal/logger"
)

const envPrefix = "MCV"

type Config struct {
	Addr    string
	Tray    bool
	Assets  AssetsConfig
	Gamepad GamepadConfig
	Log     logger.Config
}

type AssetsConfig struct {
	// Base is a directory or an http(s) URL holding <folder>/<file>.glb.
	Base     string
	MaxTries int
}

type GamepadConfig struct {
	Deadzone float64
	// Hand forces every controller to one side; empty detects from the name.
	Hand gamepad.Hand
}

// URL is the address a browser should open.
func (c *Config) URL() string {
	host, port, found := strings.Cut(c.Addr, ":")
	if !found {
		return "http://" + c.Addr
	}
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + host + ":" + port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("tray", runtime.GOOS == "windows")
	v.SetDefault("assets.base", "assets/meshes/controllers/wmr")
	v.SetDefault("assets.max_tries", asset.DefaultMaxTries)
	v.SetDefault("gamepad.deadzone", 0.05)
	v.SetDefault("gamepad.hand", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling.enabled", false)
	v.SetDefault("log.sampling.initial", 100)
	v.SetDefault("log.sampling.thereafter", 100)
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, toml or json)")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.Bool("tray", runtime.GOOS == "windows", "show the system tray icon")
	fs.String("assets.base", "assets/meshes/controllers/wmr", "directory or URL holding controller models")
	fs.Int("assets.max_tries", asset.DefaultMaxTries, "vendor-specific model attempts before the default model")
	fs.Float64("gamepad.deadzone", 0.05, "axis deadzone")
	fs.String("gamepad.hand", "", "force hand (left or right)")
	fs.String("log.level", "info", "log level")
	fs.String("log.format", "console", "log format (console or json)")
	fs.Bool("log.development", false, "development logging")
	fs.Bool("log.sampling.enabled", false, "sample repeated log entries")
	fs.Int("log.sampling.initial", 100, "entries logged per second before sampling starts")
	fs.Int("log.sampling.thereafter", 100, "log every Nth entry after the initial burst")
	return fs
}

// Load resolves the configuration from defaults, an optional config file,
// MCV_* environment variables and command-line flags, in increasing priority.
func Load(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := newFlagSet("motioncontrollerview")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Addr: v.GetString("addr"),
		Tray: v.GetBool("tray"),
		Assets: AssetsConfig{
			Base:     v.GetString("assets.base"),
			MaxTries: v.GetInt("assets.max_tries"),
		},
		Gamepad: GamepadConfig{
			Deadzone: v.GetFloat64("gamepad.deadzone"),
			Hand:     gamepad.Hand(strings.ToLower(v.GetString("gamepad.hand"))),
		},
		Log: logger.Config{
			Level:       v.GetString("log.level"),
			Format:      v.GetString("log.format"),
			Development: v.GetBool("log.development"),

			EnableSampling:   v.GetBool("log.sampling.enabled"),
			SampleInitial:    v.GetInt("log.sampling.initial"),
			SampleThereafter: v.GetInt("log.sampling.thereafter"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var ErrInvalid = errors.New("invalid config")

func (c *Config) Validate() error {
	switch c.Gamepad.Hand {
	case "", gamepad.HandLeft, gamepad.HandRight:
	default:
		return fmt.Errorf("%w: gamepad.hand %q", ErrInvalid, c.Gamepad.Hand)
	}
	if c.Assets.MaxTries < 0 {
		return fmt.Errorf("%w: assets.max_tries %d", ErrInvalid, c.Assets.MaxTries)
	}
	if c.Gamepad.Deadzone < 0 || c.Gamepad.Deadzone >= 1 {
		return fmt.Errorf("%w: gamepad.deadzone %v", ErrInvalid, c.Gamepad.Deadzone)
	}
	if c.Log.EnableSampling && (c.Log.SampleInitial <= 0 || c.Log.SampleThereafter <= 0) {
		return fmt.Errorf("%w: log.sampling needs positive initial and thereafter", ErrInvalid)
	}
	if c.Assets.Base == "" {
		return fmt.Errorf("%w: assets.base is empty", ErrInvalid)
	}
	return nil
}
