package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"inkwell-cli/internal/snapshot"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configName    = "inkwell"
	envPrefix     = "INKWELL"
	defaultDir    = "./data"
	defaultAddr   = ":8080"
	defaultFormat = "json"
)

// Config is the effective configuration after defaults, the config file and
// the environment are merged. Flags are applied on top by the root command.
type Config struct {
	DataDir     string         `yaml:"data_dir" mapstructure:"data_dir" json:"dataDir"`
	Addr        string         `yaml:"addr" mapstructure:"addr" json:"addr"`
	Remote      string         `yaml:"remote" mapstructure:"remote" json:"remote"`
	Format      string         `yaml:"format" mapstructure:"format" json:"format"`
	AutoPublish bool           `yaml:"auto_publish" mapstructure:"auto_publish" json:"autoPublish"`
	Snapshot    SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot" json:"snapshot"`

	// File is the config file that was read, if any.
	File string `yaml:"-" mapstructure:"-" json:"file,omitempty"`
}

type SnapshotConfig struct {
	Driver string   `yaml:"driver" mapstructure:"driver" json:"driver"`
	Dir    string   `yaml:"dir" mapstructure:"dir" json:"dir"`
	S3     S3Config `yaml:"s3" mapstructure:"s3" json:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket" mapstructure:"bucket" json:"bucket"`
	Region    string `yaml:"region" mapstructure:"region" json:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint" json:"endpoint"`
	PathStyle bool   `yaml:"path_style" mapstructure:"path_style" json:"pathStyle"`
}

func defaultConfig() Config {
	return Config{
		DataDir: defaultDir,
		Addr:    defaultAddr,
		Format:  defaultFormat,
		Snapshot: SnapshotConfig{
			Driver: string(snapshot.DriverFS),
			Dir:    "./snapshots",
			S3:     S3Config{Region: "us-east-1"},
		},
	}
}

func (c Config) snapshotConfig() snapshot.Config {
	return snapshot.Config{
		Driver: c.Snapshot.Driver,
		Dir:    c.Snapshot.Dir,
		S3: snapshot.S3Config{
			Bucket:    c.Snapshot.S3.Bucket,
			Region:    c.Snapshot.S3.Region,
			Endpoint:  c.Snapshot.S3.Endpoint,
			PathStyle: c.Snapshot.S3.PathStyle,
		},
	}
}

// loadConfig reads inkwell.yaml from path, or from ./ and ~/.config/inkwell
// when path is empty. A missing file in the search path is not an error.
// DATA_DIR and PORT are honoured when the INKWELL_ equivalents are unset.
func loadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultConfig()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("addr", def.Addr)
	v.SetDefault("remote", "")
	v.SetDefault("format", def.Format)
	v.SetDefault("auto_publish", false)
	v.SetDefault("snapshot.driver", def.Snapshot.Driver)
	v.SetDefault("snapshot.dir", def.Snapshot.Dir)
	v.SetDefault("snapshot.s3.bucket", "")
	v.SetDefault("snapshot.s3.region", def.Snapshot.S3.Region)
	v.SetDefault("snapshot.s3.endpoint", "")
	v.SetDefault("snapshot.s3.path_style", false)
	if err := v.BindEnv("data_dir", envPrefix+"_DATA_DIR", "DATA_DIR"); err != nil {
		return Config{}, err
	}

	if path != "" {
		p, err := homedir.Expand(path)
		if err != nil {
			return Config{}, err
		}
		v.SetConfigFile(p)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && os.Getenv(envPrefix+"_ADDR") == "" {
		cfg.Addr = withPort(cfg.Addr, port)
	}
	for _, p := range []*string{&cfg.DataDir, &cfg.Snapshot.Dir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return Config{}, err
		}
		*p = expanded
	}
	return cfg, nil
}

func withPort(addr, port string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, port)
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the inkwell config file",
	}
	cmd.AddCommand(newConfigInitCmd(app))
	cmd.AddCommand(newConfigShowCmd(app))
	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + configName + ".yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := homedir.Expand(path)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := os.Stat(p); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("%s already exists (use --force to overwrite)", p))
			}
			b, err := yaml.Marshal(defaultConfig())
			if err != nil {
				return writeErr(cmd, err)
			}
			if dir := filepath.Dir(p); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := os.WriteFile(p, b, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"path": p})
		},
	}
	cmd.Flags().StringVar(&path, "path", configName+".yaml", "Where to write the config file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, app.cfg)
		},
	}
}
