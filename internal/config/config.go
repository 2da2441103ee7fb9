package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"proto-matcher/internal/common"
	"proto-matcher/internal/mapping"
	"proto-matcher/internal/signature"
)

// Option keys, as written in the config file.
const (
	KeyRefDescriptorFile     = "REF_DESCRIPTOR_FILE"
	KeyObsDescriptorFile     = "OBS_DESCRIPTOR_FILE"
	KeyRefProtoList          = "REF_PROTO_LIST"
	KeyObsProtoList          = "OBS_PROTO_LIST"
	KeyPackageName           = "PACKAGE_NAME"
	KeyOutputDir             = "OUTPUT_DIR"
	KeyOutputFormat          = "OUTPUT_FORMAT"
	KeyMaxSigDepth           = "MAX_SIG_DEPTH"
	KeyMaxDisplayMatches     = "MAX_DISPLAY_MATCHES"
	KeyThreshold             = "THRESHOLD"
	KeyDefaultEmptyToBytes   = "DEFAULT_EMPTY_TO_BYTES"
	KeyCollapseEmptyMessages = "COLLAPSE_EMPTY_MESSAGES"
	KeyAllowCycles           = "ALLOW_CYCLES"
)

const (
	// DefaultFile is used when no config path is given.
	DefaultFile = "config.yaml"
	// EnvPrefix prefixes every environment override, e.g. PROTOMATCHER_THRESHOLD.
	EnvPrefix = "PROTOMATCHER"
)

// ErrInvalidConfig is returned when an option value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every recognized option.
type Config struct {
	RefDescriptorFile string `mapstructure:"ref_descriptor_file"`
	ObsDescriptorFile string `mapstructure:"obs_descriptor_file"`
	RefProtoList      string `mapstructure:"ref_proto_list"`
	ObsProtoList      string `mapstructure:"obs_proto_list"`
	PackageName       string `mapstructure:"package_name"`
	OutputDir         string `mapstructure:"output_dir"`
	// OutputFormat is the encoding of written artifacts, json or yaml.
	OutputFormat      string `mapstructure:"output_format"`

	// MaxSigDepth caps signature trees when printing, 0 for no limit.
	MaxSigDepth       int     `mapstructure:"max_sig_depth"`
	MaxDisplayMatches int     `mapstructure:"max_display_matches"`
	Threshold         float64 `mapstructure:"threshold"`

	DefaultEmptyToBytes   bool `mapstructure:"default_empty_to_bytes"`
	CollapseEmptyMessages bool `mapstructure:"collapse_empty_messages"`
	AllowCycles           bool `mapstructure:"allow_cycles"`
}

var defaults = map[string]any{
	KeyRefDescriptorFile:     "",
	KeyObsDescriptorFile:     "",
	KeyRefProtoList:          "",
	KeyObsProtoList:          "",
	KeyPackageName:           "",
	KeyOutputDir:             "output",
	KeyOutputFormat:          "json",
	KeyMaxSigDepth:           0,
	KeyMaxDisplayMatches:     5,
	KeyThreshold:             0.5,
	KeyDefaultEmptyToBytes:   true,
	KeyCollapseEmptyMessages: false,
	KeyAllowCycles:           false,
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		OutputDir:           "output",
		OutputFormat:        "json",
		MaxDisplayMatches:   5,
		Threshold:           0.5,
		DefaultEmptyToBytes: true,
	}
}

// Validate checks option ranges.
func (c Config) Validate() error {
	var errs []error

	if !common.IsInRange(0, c.Threshold, 1) {
		errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", KeyThreshold, c.Threshold))
	}

	if c.MaxDisplayMatches < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", KeyMaxDisplayMatches, c.MaxDisplayMatches))
	}

	if c.MaxSigDepth < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", KeyMaxSigDepth, c.MaxSigDepth))
	}

	if _, err := mapping.ParseFormat(c.OutputFormat); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyOutputFormat, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// SignatureOptions returns the generator options selected by c.
func (c Config) SignatureOptions() signature.Options {
	return signature.Options{
		AbsentToBytes: c.DefaultEmptyToBytes,
		EmptyToBytes:  c.CollapseEmptyMessages,
		AllowCycles:   c.AllowCycles,
	}
}

// ArtifactFormat returns the encoding selected by OutputFormat, JSON when it is not recognized.
func (c Config) ArtifactFormat() mapping.Format {
	format, _ := mapping.ParseFormat(c.OutputFormat)
	return format
}

// MissingInputs returns the keys of the descriptor set paths that are still empty.
// Type lists are optional.
func (c Config) MissingInputs() []string {
	var missing []string

	if strings.TrimSpace(c.RefDescriptorFile) == "" {
		missing = append(missing, KeyRefDescriptorFile)
	}

	if strings.TrimSpace(c.ObsDescriptorFile) == "" {
		missing = append(missing, KeyObsDescriptorFile)
	}

	return missing
}

// Store reads and writes one config file through its own viper instance.
type Store struct {
	v    *viper.Viper
	path string
}

// NewStore creates a Store for path, DefaultFile when empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return &Store{v: v, path: path}
}

// Path returns the config file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file, creating it with defaults when missing.
// generated reports whether the file was created.
func (s *Store) Load() (cfg Config, generated bool, err error) {
	// .env is optional
	_ = godotenv.Load()

	if _, statErr := os.Stat(s.path); errors.Is(statErr, os.ErrNotExist) {
		if err := s.v.SafeWriteConfigAs(s.path); err != nil {
			return Config{}, false, fmt.Errorf("failed to generate config file %s: %w", s.path, err)
		}

		generated = true
	}

	if err := s.v.ReadInConfig(); err != nil {
		return Config{}, generated, fmt.Errorf("failed to read config file %s: %w", s.path, err)
	}

	if err := s.v.Unmarshal(&cfg); err != nil {
		return Config{}, generated, fmt.Errorf("failed to decode config file %s: %w", s.path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, generated, err
	}

	return cfg, generated, nil
}

// Set changes one option and writes the config file back.
func (s *Store) Set(key string, value any) error {
	s.v.Set(key, value)

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}

	return nil
}
