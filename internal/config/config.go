package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendSqlite   = "sqlite"
	BackendDynamodb = "dynamodb"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Commit CommitConfig
	Feed   FeedConfig
}

type ServerConfig struct {
	Port        string
	IdleTimeout time.Duration
	JwtSecret   string
}

type StoreConfig struct {
	Backend    string
	SqlitePath string

	AwsRegion             string
	PlayersTableName      string
	MatchRecordsTableName string
}

type CommitConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

type FeedConfig struct {
	Interval     time.Duration
	HistoryLimit int
}

// Env files merged over the yaml config. Missing files are skipped.
var envFiles = []string{
	"./configs/aws/base.env",
	"./configs/aws/dynamodb.env",
	"./configs/server/auth.env",
}

// NewConfig reads the yaml config at path, or searches ./configs/dartslab
// and the working directory when path is empty, then merges env files and
// the process environment over it.
func NewConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs/dartslab")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := loadEnvFiles(v, envFiles); err != nil {
		return Config{}, fmt.Errorf("failed to read env files: %w", err)
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "7202")
	v.SetDefault("Server.IdleTimeout", "5m")
	v.SetDefault("Store.Backend", BackendSqlite)
	v.SetDefault("Store.SqlitePath", "dartslab.db")
	v.SetDefault("Commit.MaxAttempts", 3)
	v.SetDefault("Commit.Backoff", "50ms")
	v.SetDefault("Feed.Interval", "30s")
	v.SetDefault("Feed.HistoryLimit", 20)
	v.SetDefault("PLAYERS_TABLE_NAME", "Players")
	v.SetDefault("MATCH_RECORDS_TABLE_NAME", "MatchRecords")
}

func loadEnvFiles(v *viper.Viper, filenames []string) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // Allow override by OS environment variables
	for _, file := range filenames {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		err := v.MergeInConfig()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func fromViper(v *viper.Viper) (Config, error) {
	var config Config
	var err error

	config.Server.Port = v.GetString("Server.Port")
	if config.Server.IdleTimeout, err = parseDuration(v, "Server.IdleTimeout"); err != nil {
		return Config{}, err
	}
	config.Server.JwtSecret = v.GetString("JWT_SECRET")

	config.Store.Backend = strings.ToLower(v.GetString("Store.Backend"))
	config.Store.SqlitePath = v.GetString("Store.SqlitePath")
	config.Store.AwsRegion = v.GetString("AWS_REGION")
	config.Store.PlayersTableName = v.GetString("PLAYERS_TABLE_NAME")
	config.Store.MatchRecordsTableName = v.GetString("MATCH_RECORDS_TABLE_NAME")

	config.Commit.MaxAttempts = v.GetInt("Commit.MaxAttempts")
	if config.Commit.Backoff, err = parseDuration(v, "Commit.Backoff"); err != nil {
		return Config{}, err
	}

	if config.Feed.Interval, err = parseDuration(v, "Feed.Interval"); err != nil {
		return Config{}, err
	}
	config.Feed.HistoryLimit = v.GetInt("Feed.HistoryLimit")

	return config, config.Validate()
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSqlite:
		if c.Store.SqlitePath == "" {
			return fmt.Errorf("Store.SqlitePath is required for the sqlite backend")
		}
	case BackendDynamodb:
		if c.Store.PlayersTableName == "" || c.Store.MatchRecordsTableName == "" {
			return fmt.Errorf("table names are required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Commit.MaxAttempts < 1 {
		return fmt.Errorf("Commit.MaxAttempts must be at least 1")
	}
	if c.Feed.Interval <= 0 {
		return fmt.Errorf("Feed.Interval must be positive")
	}
	return nil
}
