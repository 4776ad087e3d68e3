package marketdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-history/internal/version"
	"github.com/rxtech-lab/argo-history/pkg/errors"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/writer"
)

// DefaultTickers is the fixed batch exported on every run, in processing order.
var DefaultTickers = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "JPM", "JNJ", "NVDA", "PG", "TSLA"}

const (
	// DefaultYearsBack is the length of the download window in calendar years.
	DefaultYearsBack = 1
	// DefaultOutputDirName is the directory created beside the executable when no output directory is set.
	DefaultOutputDirName = "csv"
	// DefaultEnvFile is loaded into the process environment when present.
	DefaultEnvFile = ".env"
)

// ExportConfig holds the configuration of one export run.
type ExportConfig struct {
	Version           string                `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Version of argo-history the file was written for"`
	Tickers           []string              `yaml:"tickers" json:"tickers" jsonschema:"title=Tickers,description=Symbols to export in processing order" validate:"required,min=1,dive,required,uppercase"`
	YearsBack         int                   `yaml:"years_back" json:"years_back" jsonschema:"title=Years Back,description=Length of the download window in calendar years,minimum=0,default=1" validate:"min=0"`
	OutputDir         string                `yaml:"output_dir" json:"output_dir" jsonschema:"title=Output Directory,description=Directory receiving the exported files. Defaults to a csv directory beside the executable"`
	Provider          provider.ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider,enum=yahoo,enum=polygon,default=yahoo" validate:"required,oneof=yahoo polygon"`
	Format            writer.Format         `yaml:"format" json:"format" jsonschema:"title=Format,description=Output file format,enum=csv,enum=parquet,default=csv" validate:"required,oneof=csv parquet"`
	RequestsPerMinute int                   `yaml:"requests_per_minute" json:"requests_per_minute" jsonschema:"title=Requests Per Minute,description=Upper bound on provider requests per minute. Zero disables the limit,minimum=0" validate:"min=0"`
	PolygonApiKey     string                `yaml:"-" json:"-" validate:"required_if=Provider polygon"`
}

// envOverlay lists the environment variables that override an ExportConfig.
type envOverlay struct {
	PolygonApiKey string `envconfig:"POLYGON_API_KEY"`
	Provider      string `envconfig:"ARGO_HISTORY_PROVIDER"`
	OutputDir     string `envconfig:"ARGO_HISTORY_OUTPUT_DIR"`
	Format        string `envconfig:"ARGO_HISTORY_FORMAT"`
}

// DefaultExportConfig returns the configuration of a run started without arguments.
func DefaultExportConfig() ExportConfig {
	tickers := make([]string, len(DefaultTickers))
	copy(tickers, DefaultTickers)

	return ExportConfig{
		Version:           "",
		Tickers:           tickers,
		YearsBack:         DefaultYearsBack,
		OutputDir:         "",
		Provider:          provider.ProviderYahoo,
		Format:            writer.FormatCSV,
		RequestsPerMinute: 0,
		PolygonApiKey:     "",
	}
}

// Validate checks the configuration fields.
func (c *ExportConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid export config", err)
	}

	return nil
}

// LoadExportConfig builds a configuration from the defaults, the optional YAML file at path,
// the given env files (DefaultEnvFile when none) and the process environment, in that order.
func LoadExportConfig(path string, envFiles ...string) (ExportConfig, error) {
	config := DefaultExportConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ExportConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return ExportConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}

		if err := version.CheckConfigCompatibility(version.GetVersion(), config.Version); err != nil {
			return ExportConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "incompatible config file %s", path)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}

	for _, file := range envFiles {
		// a missing env file is not an error
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return ExportConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load env file %s", file)
		}
	}

	var overlay envOverlay
	if err := envconfig.Process("", &overlay); err != nil {
		return ExportConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read environment", err)
	}

	overlay.apply(&config)

	if err := config.Validate(); err != nil {
		return ExportConfig{}, err
	}

	return config, nil
}

func (o envOverlay) apply(config *ExportConfig) {
	if o.PolygonApiKey != "" {
		config.PolygonApiKey = o.PolygonApiKey
	}

	if o.Provider != "" {
		config.Provider = provider.ProviderType(o.Provider)
	}

	if o.OutputDir != "" {
		config.OutputDir = o.OutputDir
	}

	if o.Format != "" {
		config.Format = writer.Format(o.Format)
	}
}

// ResolveOutputDir returns dir when set, otherwise the DefaultOutputDirName directory
// beside the running executable with symlinks resolved.
func ResolveOutputDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}

	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path %s: %w", executable, err)
	}

	return filepath.Join(filepath.Dir(resolved), DefaultOutputDirName), nil
}
