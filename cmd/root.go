package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/pipeboard/internal/careers"
)

const (
	app       = "pipeboard"
	envPrefix = "PIPEBOARD"
)

type Config struct {
	APIURL        string         `mapstructure:"api-url"`
	Token         string         `mapstructure:"token"`
	TokenFile     string         `mapstructure:"token-file"`
	UserAgent     string         `mapstructure:"user-agent"`
	Timeout       time.Duration  `mapstructure:"timeout"`
	ReloadTimeout time.Duration  `mapstructure:"reload-timeout"`
	Pipeline      PipelineConfig `mapstructure:"pipeline"`
	Watch         WatchConfig    `mapstructure:"watch"`
	Sandbox       SandboxConfig  `mapstructure:"sandbox"`
}

type PipelineConfig struct {
	// ID of the pipeline to show. The active pipeline is used when empty.
	ID    string `mapstructure:"id"`
	JobID string `mapstructure:"job-id"`
}

type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type SandboxConfig struct {
	Listen string `mapstructure:"listen"`
	Token  string `mapstructure:"token"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "pipeboard is a cli for the hiring pipeline kanban board of the careers platform",
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is pipeboard.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("pipeline", "", "pipeline id (default is the active pipeline)")
	rootCmd.PersistentFlags().String("job", "", "scope the board to a job")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("pipeline.id", rootCmd.PersistentFlags().Lookup("pipeline"))
	viper.BindPFlag("pipeline.job-id", rootCmd.PersistentFlags().Lookup("job"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every key so that environment variables reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api-url", careers.DefaultAPIURL)
	v.SetDefault("token", "")
	v.SetDefault("token-file", "")
	v.SetDefault("user-agent", "")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("reload-timeout", 15*time.Second)
	v.SetDefault("pipeline.id", "")
	v.SetDefault("pipeline.job-id", "")
	v.SetDefault("watch.interval", 30*time.Second)
	v.SetDefault("sandbox.listen", ":8085")
	v.SetDefault("sandbox.token", "")
}

func initConfig() {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %s", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicitly given config must exist and parse.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
