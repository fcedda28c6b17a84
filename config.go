package smartbot

import (
	"os"

	"github.com/spf13/viper"
)

// Storage backend names accepted in Config.Storage.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

const (
	DefaultDataDir     = "data"
	DefaultSQLiteFile  = "smartbot.db"
	DefaultEnableStats = true
)

// Environment variables overriding persistence locations. Each one, when
// set and non-empty, wins over the corresponding config field.
const (
	EnvDataDir       = "SMARTBOT_DATA_DIR"
	EnvParamsFile    = "SMARTBOT_PARAMS_FILE"
	EnvHistoryFile   = "SMARTBOT_HISTORY_FILE"
	EnvTemplatesFile = "SMARTBOT_TEMPLATES_FILE"
	EnvStorage       = "SMARTBOT_STORAGE"
	EnvSQLitePath    = "SMARTBOT_SQLITE_PATH"
)

// Config holds configuration parameters for the engine
type Config struct {
	// TemplatesPath points to a JSON template corpus. Empty means the
	// built-in default corpus.
	TemplatesPath string `mapstructure:"templates_path"`

	// MisspellingsPath points to a correction table file merged over the
	// built-in misspellings; file entries win on conflict.
	MisspellingsPath string `mapstructure:"misspellings_path"`

	// StopWordsPaths lists extra stop word files for keyword extraction.
	StopWordsPaths []string `mapstructure:"stop_words_paths"`

	// DataDir is where file-backed persistence lives.
	DataDir string `mapstructure:"data_dir"`

	// Storage selects the persistence backend, "file" or "sqlite".
	Storage string `mapstructure:"storage"`

	// SQLitePath is the database file for the sqlite backend. Empty derives
	// DataDir/smartbot.db.
	SQLitePath string `mapstructure:"sqlite_path"`

	// ParamsFile and HistoryFile, when set, pin the two persisted artifacts
	// to explicit file paths instead of DataDir/key. File backend only.
	ParamsFile  string `mapstructure:"params_file"`
	HistoryFile string `mapstructure:"history_file"`

	ParamsKey   string     `mapstructure:"params_key"`
	HistoryKey  string     `mapstructure:"history_key"`
	EnableStats bool       `mapstructure:"enable_stats"`
	Defaults    Parameters `mapstructure:"defaults"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		TemplatesPath:    "",
		MisspellingsPath: "",
		StopWordsPaths:   []string{},
		DataDir:          DefaultDataDir,
		Storage:          StorageFile,
		SQLitePath:       "",
		ParamsKey:        DefaultParamsKey,
		HistoryKey:       DefaultHistoryKey,
		EnableStats:      DefaultEnableStats,
		Defaults:         DefaultParameters(),
	}
}

// LoadFromYAML loads configuration from a YAML file. Values under the
// "smartbot" key override the defaults; environment overrides are applied
// on top.
func LoadFromYAML(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := v.UnmarshalKey("smartbot", config); err != nil {
		return nil, err
	}

	ApplyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnvOverrides replaces persistence locations with their environment
// counterparts where set
func ApplyEnvOverrides(config *Config) {
	if config == nil {
		return
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		config.DataDir = dir
	}
	if path := os.Getenv(EnvParamsFile); path != "" {
		config.ParamsFile = path
	}
	if path := os.Getenv(EnvHistoryFile); path != "" {
		config.HistoryFile = path
	}
	if path := os.Getenv(EnvTemplatesFile); path != "" {
		config.TemplatesPath = path
	}
	if backend := os.Getenv(EnvStorage); backend != "" {
		config.Storage = backend
	}
	if path := os.Getenv(EnvSQLitePath); path != "" {
		config.SQLitePath = path
	}
}

// Validate checks if the configuration is valid
func Validate(config *Config) error {
	if config == nil {
		return ErrInvalidConfiguration
	}

	switch config.Storage {
	case StorageFile:
		if config.DataDir == "" && (config.ParamsFile == "" || config.HistoryFile == "") {
			return ErrInvalidConfiguration
		}
	case StorageSQLite:
		if config.DataDir == "" && config.SQLitePath == "" {
			return ErrInvalidConfiguration
		}
	default:
		return ErrUnknownStorageBackend
	}

	if config.ParamsKey == "" || config.HistoryKey == "" {
		return ErrInvalidConfiguration
	}
	if config.ParamsKey == config.HistoryKey {
		return ErrInvalidConfiguration
	}

	return nil
}
