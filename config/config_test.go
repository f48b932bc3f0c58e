package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteThenLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	cfg.Node.Devnet = true
	cfg.Console.PageSize = 5
	require.NoError(t, WriteConfigFile(cfg.ConfigFile(), cfg))

	loaded, err := Load(home)
	require.NoError(t, err)
	require.True(t, loaded.Node.Devnet)
	require.Equal(t, 5, loaded.Console.PageSize)
	require.Equal(t, home, loaded.Home)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestValidateBasic(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	require.NoError(t, cfg.ValidateBasic())

	cfg.Console.PageSize = 0
	require.Error(t, cfg.ValidateBasic())
	cfg.Console.PageSize = 3

	cfg.Node.Url = ""
	require.Error(t, cfg.ValidateBasic())
	cfg.Node.Devnet = true
	require.NoError(t, cfg.ValidateBasic())

	cfg.Mirror.Enable = true
	cfg.Mirror.ListenAddr = ""
	require.Error(t, cfg.ValidateBasic())
}
