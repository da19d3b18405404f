package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

//go:embed defaults.toml
var defaults []byte

const (
	KeyDevmode             = "general.enable_destructive_commands_NO_PRODUCTION_zero_guarantees"
	KeyNukeAskConfirmation = "nuke.ask_for_confirmation"
)

// HomeDir is /root for root, /home/$USER when USER is set, else the OS home dir.
func HomeDir() string {
	if u, err := user.Current(); err == nil && u.Username == "root" {
		return "/root"
	} else if err != nil {
		log.Debug().Msg("could not look up the current user. If you think you're root, something must " +
			"have gone wrong. Set JHACK_DATA to some snap-writable path where jhack should store its data and config.")
	}
	if name := os.Getenv("USER"); name != "" {
		return filepath.Join("/home", name)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// DataPath is where jhack keeps its config and data.
func DataPath() string {
	if data := os.Getenv("JHACK_DATA"); data != "" {
		return data
	}
	return filepath.Join(HomeDir(), ".config", "jhack")
}

// Path is the config file location; the file need not exist.
func Path() string {
	return filepath.Join(DataPath(), "config.toml")
}

type Config struct {
	v    *viper.Viper
	path string
}

// Load reads the config file at path over the embedded defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	cfg := &Config{v: v, path: path}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Msgf("no config found at %s; using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := v.MergeConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}

func (c *Config) Bool(key string) bool {
	return c.v.GetBool(key)
}

// Set overrides a key for the lifetime of this Config.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Print writes the effective config as TOML.
func (c *Config) Print(w io.Writer) error {
	b, err := toml.Marshal(c.v.AllSettings())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func PrintDefaults(w io.Writer) error {
	_, err := w.Write(defaults)
	return err
}
