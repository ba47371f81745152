package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultConfigPath = "config.toml"
	DefaultEnvFile    = ".env"
	DefaultDataRoot   = "."
	DefaultSQLitePath = "data/mediaclip.db"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Log     LogConfig     `toml:"log"`
	Discord DiscordConfig `toml:"discord"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type DiscordConfig struct {
	Token        string `toml:"token"`
	GuildID      string `toml:"guild_id"`
	SyncCommands bool   `toml:"sync_commands"`
	UseProxy     bool   `toml:"use_proxy"`
	ProxyURL     string `toml:"proxy_url"`
}

// Proxy returns the proxy URL to use, or "" when proxying is off.
func (c DiscordConfig) Proxy() string {
	if !c.UseProxy {
		return ""
	}
	return strings.TrimSpace(c.ProxyURL)
}

type StorageConfig struct {
	Backend string `toml:"backend"`
	// DataRoot holds user_config.json and the collections directory.
	DataRoot   string `toml:"data_root"`
	SQLitePath string `toml:"sqlite_path"`
}

type ServerConfig struct {
	// Addr is the ops HTTP listen address; empty disables the server.
	Addr string `toml:"addr"`
}

func defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Discord: DiscordConfig{
			SyncCommands: true,
		},
		Storage: StorageConfig{
			Backend:    BackendFile,
			DataRoot:   DefaultDataRoot,
			SQLitePath: DefaultSQLitePath,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error. Variables from a .env file in the working
// directory are loaded first without replacing ones already set.
func Load(path string) (Config, error) {
	cfg := defaults()

	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DISCORD_TOKEN"); ok && strings.TrimSpace(v) != "" {
		c.Discord.Token = strings.TrimSpace(v)
	}
	if v, ok := lookup("USE_PROXY"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("USE_PROXY: %w", err)
		}
		c.Discord.UseProxy = b
	}
	if v, ok := lookup("PROXY_URL"); ok && strings.TrimSpace(v) != "" {
		c.Discord.ProxyURL = strings.TrimSpace(v)
	}
	if v, ok := lookup("LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
		c.Log.Level = strings.TrimSpace(v)
	}
	return nil
}

// Validate checks the settings needed to run the bot. requireToken is false
// for offline commands that only touch storage.
func (c Config) Validate(requireToken bool) error {
	var errs []error
	if requireToken && strings.TrimSpace(c.Discord.Token) == "" {
		errs = append(errs, errors.New("discord token is required (set DISCORD_TOKEN or discord.token)"))
	}
	if c.Discord.UseProxy && strings.TrimSpace(c.Discord.ProxyURL) == "" {
		errs = append(errs, errors.New("discord.proxy_url is required when use_proxy is enabled"))
	}
	switch c.Storage.Backend {
	case BackendFile:
		if strings.TrimSpace(c.Storage.DataRoot) == "" {
			errs = append(errs, errors.New("storage.data_root is required"))
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	return errors.Join(errs...)
}
