package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/flowmation/yandexcloud-nodes/pkg/credentials"
)

const (
	// keyringService is the system keychain service name entries are
	// stored under.
	keyringService = "ycnodes"

	// keyringPrefix marks a config value resolved from the keychain.
	keyringPrefix = "keyring:"
)

// ConfigDir returns the configuration directory, honoring
// XDG_CONFIG_HOME, creating it when absent.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, "ycnodes")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from path. An empty path uses the
// default location; a missing file yields the defaults. After parsing,
// environment overrides and keychain references are applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; env vars may carry everything needed.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := resolveKeyringRefs(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the parsed file. An env
// var always wins over the file value.
func applyEnv(cfg *Config) {
	setString(&cfg.Log.Level, "YCNODES_LOG_LEVEL")
	setString(&cfg.Log.Format, "YCNODES_LOG_FORMAT")

	id := os.Getenv("YC_ACCESS_KEY_ID")
	secret := os.Getenv("YC_SECRET_ACCESS_KEY")

	// The static key pair overlays blocks the file already configured.
	// A fresh block is only created when the env supplies the whole
	// pair; a lone id must not conjure a half-built credential that
	// validation then rejects.
	if id != "" && secret != "" && cfg.Queue == nil {
		cfg.Queue = &credentials.StaticKey{}
	}
	if id != "" && secret != "" && cfg.Postbox == nil {
		cfg.Postbox = &credentials.StaticKey{}
	}
	for _, key := range []*credentials.StaticKey{cfg.Queue, cfg.Postbox} {
		if key == nil {
			continue
		}
		if id != "" {
			key.AccessKeyID = id
		}
		if secret != "" {
			key.SecretAccessKey = secret
		}
	}

	if key := os.Getenv("YC_API_KEY"); key != "" {
		if cfg.GPT == nil {
			cfg.GPT = &GPTConfig{}
		}
		cfg.GPT.Key = key
	}
	if folder := os.Getenv("YC_FOLDER_ID"); folder != "" {
		if cfg.GPT != nil {
			cfg.GPT.FolderID = folder
		}
		if cfg.Lockbox != nil {
			cfg.Lockbox.FolderID = folder
		}
	}

	if keyFile := os.Getenv("YC_SA_KEY_FILE"); keyFile != "" {
		if cfg.Lockbox == nil {
			cfg.Lockbox = &LockboxConfig{}
		}
		cfg.Lockbox.KeyFile = keyFile
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// resolveKeyringRefs replaces keyring: references in secret-valued
// fields with the keychain entry they name.
func resolveKeyringRefs(cfg *Config) error {
	fields := []*string{}
	if cfg.Queue != nil {
		fields = append(fields, &cfg.Queue.SecretAccessKey)
	}
	if cfg.Postbox != nil {
		fields = append(fields, &cfg.Postbox.SecretAccessKey)
	}
	if cfg.GPT != nil {
		fields = append(fields, &cfg.GPT.Key)
	}
	if cfg.Lockbox != nil {
		fields = append(fields, &cfg.Lockbox.KeyJSON)
	}
	for _, f := range fields {
		resolved, err := resolveKeyringRef(*f)
		if err != nil {
			return err
		}
		*f = resolved
	}
	return nil
}

func resolveKeyringRef(value string) (string, error) {
	if !strings.HasPrefix(value, keyringPrefix) {
		return value, nil
	}
	key := strings.TrimPrefix(value, keyringPrefix)
	if key == "" {
		return "", fmt.Errorf("%w: empty keyring reference", ErrInvalidConfig)
	}
	secret, err := keyring.Get(keyringService, key)
	if err != nil {
		return "", fmt.Errorf("resolve keyring reference %q: %w", key, err)
	}
	return secret, nil
}
