package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultConfigRelPath = ".scaffold/config.yaml"

type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	CORSAllowOrigin string `yaml:"cors_allow_origin"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type GeneratorConfig struct {
	Namespace string `yaml:"namespace"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Output    OutputConfig    `yaml:"output"`
	Generator GeneratorConfig `yaml:"generator"`
	Log       LogConfig       `yaml:"log"`
}

// Load loads YAML config, then applies env overrides.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		configPath = filepath.Join(home, defaultConfigRelPath)
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.CORSAllowOrigin == "" {
		c.Server.CORSAllowOrigin = "*"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if c.Generator.Namespace == "" {
		c.Generator.Namespace = "App.Web"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("output.dir cannot be empty")
	}
	if strings.TrimSpace(c.Generator.Namespace) == "" {
		return errors.New("generator.namespace cannot be empty")
	}
	if err := ensureWritableDir(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir not writable: %w", err)
	}
	return nil
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func applyEnvOverrides(c *Config) {
	setString(&c.Server.Host, "SCAFFOLD_SERVER_HOST")
	setInt(&c.Server.Port, "SCAFFOLD_SERVER_PORT")
	setString(&c.Server.CORSAllowOrigin, "SCAFFOLD_CORS_ALLOW_ORIGIN")
	setString(&c.Output.Dir, "SCAFFOLD_OUTPUT_DIR")
	setString(&c.Generator.Namespace, "SCAFFOLD_GENERATOR_NAMESPACE")
	setString(&c.Log.Level, "SCAFFOLD_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
