package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apostrophe-corp/daohub/types"
	"github.com/spf13/viper"
)

// NodeConfig points the console at a ledger. With Devnet set the node URL is
// ignored and contracts are simulated in-process.
type NodeConfig struct {
	Url    string `mapstructure:"url"`
	Devnet bool   `mapstructure:"devnet"`
}

// ConsoleConfig tunes the interactive session.
type ConsoleConfig struct {
	PageSize       int    `mapstructure:"page_size"`
	DeadlineBlocks uint64 `mapstructure:"deadline_blocks"`
	FaucetBalance  uint64 `mapstructure:"faucet_balance"`
	KeyFile        string `mapstructure:"key_file"`
}

// MirrorConfig configures the optional HTTP read model.
type MirrorConfig struct {
	Enable     bool   `mapstructure:"enable"`
	ListenAddr string `mapstructure:"listen_addr"`
	DBFile     string `mapstructure:"db_file"`
}

type Config struct {
	Home    string        `mapstructure:"-"`
	Node    NodeConfig    `mapstructure:"node"`
	Console ConsoleConfig `mapstructure:"console"`
	Mirror  MirrorConfig  `mapstructure:"mirror"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.daohub")
	}
	return &Config{
		Home: home,
		Node: NodeConfig{
			Url:    "http://localhost:26657",
			Devnet: false,
		},
		Console: ConsoleConfig{
			PageSize:       3,
			DeadlineBlocks: 15,
			FaucetBalance:  1000 * types.AtomicPerUnit,
			KeyFile:        "key",
		},
		Mirror: MirrorConfig{
			Enable:     false,
			ListenAddr: "localhost:8080",
			DBFile:     "mirror.db",
		},
	}
}

func (c *Config) ConfigFile() string {
	return filepath.Join(c.Home, "config", "config.toml")
}

func (c *Config) KeyFile() string {
	return filepath.Join(c.Home, "config", c.Console.KeyFile)
}

func (c *Config) MirrorDBFile() string {
	return filepath.Join(c.Home, c.Mirror.DBFile)
}

func (c *Config) RefBookDir() string {
	return filepath.Join(c.Home, "refs")
}

func (c *Config) ValidateBasic() error {
	if c.Console.PageSize < 1 {
		return errors.New("console.page_size must be at least 1")
	}
	if !c.Node.Devnet && c.Node.Url == "" {
		return errors.New("node.url is required unless node.devnet is set")
	}
	if c.Mirror.Enable && c.Mirror.ListenAddr == "" {
		return errors.New("mirror.listen_addr is required when the mirror is enabled")
	}
	return nil
}

// Load reads the config file under home, falling back to defaults for any
// missing field.
func Load(home string) (*Config, error) {
	cfg := DefaultConfig(home)
	v := viper.New()
	v.SetConfigFile(cfg.ConfigFile())
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Home = home
	if err := cfg.ValidateBasic(); err != nil {
		return nil, err
	}
	return cfg, nil
}
