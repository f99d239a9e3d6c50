package repo

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Repo struct {
	RepoRoot      string
	Config        *Config
	GenesisConfig *GenesisConfig
}

// Default returns a repo with default config and genesis, without touching
// disk.
func Default(repoRoot string) *Repo {
	return &Repo{
		RepoRoot:      repoRoot,
		Config:        DefaultConfig(),
		GenesisConfig: DefaultGenesisConfig(),
	}
}

// Load reads config.toml and genesis.toml under repoRoot, falling back to
// defaults for files that do not exist. Environment variables with the APOC_
// prefix override config file values.
func Load(repoRoot string) (*Repo, error) {
	repoRoot, err := expandPath(repoRoot)
	if err != nil {
		return nil, err
	}

	rep := Default(repoRoot)
	if err := readConfigFromFile(path.Join(repoRoot, CfgFileName), rep.Config); err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := readConfigFromFile(path.Join(repoRoot, genesisCfgFileName), rep.GenesisConfig); err != nil {
		return nil, errors.Wrap(err, "failed to load genesis config")
	}
	return rep, nil
}

// Flush writes the current config and genesis config back to the repo root.
func (r *Repo) Flush() error {
	if err := os.MkdirAll(r.RepoRoot, 0755); err != nil {
		return errors.Wrap(err, "failed to create repo dir")
	}
	if err := writeConfig(path.Join(r.RepoRoot, CfgFileName), r.Config); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	if err := writeConfig(path.Join(r.RepoRoot, genesisCfgFileName), r.GenesisConfig); err != nil {
		return errors.Wrap(err, "failed to write genesis config")
	}
	return nil
}

func writeConfig(cfgPath string, config any) error {
	raw, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(cfgPath, raw, 0644)
}

func readConfigFromFile(cfgPath string, config any) error {
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil
	}

	vp := viper.New()
	vp.SetConfigFile(cfgPath)
	vp.SetConfigType("toml")
	vp.AutomaticEnv()
	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := vp.ReadInConfig(); err != nil {
		return err
	}

	return vp.Unmarshal(config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
	})
}

func expandPath(p string) (string, error) {
	if strings.HasPrefix(p, "~") {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}
