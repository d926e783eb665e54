package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hookdeck/dwn-go/internal/connstring"
)

const (
	Namespace = "DWN"
)

func getConfigLocations() []string {
	return []string{
		".env",
		".dwn.yaml",
		"config/dwn.yaml",
		"config/dwn/config.yaml",
		"config/dwn/.env",

		"/config/dwn.yaml",
		"/config/dwn/config.yaml",
		"/config/dwn/.env",
	}
}

// Config is the single source of runtime configuration for a dwnd process.
// Fields are populated in three passes of increasing priority: InitDefaults,
// then a config file (yaml or .env) if one is found, then process
// environment variables.
type Config struct {
	validated  bool
	configPath string

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" desc:"Verbosity of application logs: 'debug', 'info', 'warn', or 'error'." required:"N"`
	AuditLog bool   `yaml:"audit_log" env:"AUDIT_LOG" desc:"Enables audit-tagged logging for puts, deletes, grabs, and emits." required:"N"`

	OpenTelemetry OpenTelemetryConfig `yaml:"otel"`

	// Backend connection strings, each in the form documented by connstring.Parse.
	MessageStoreURL string `yaml:"message_store" env:"MESSAGE_STORE_URL" desc:"Connection string for the message store backend." required:"Y"`
	DataStoreURL    string `yaml:"data_store" env:"DATA_STORE_URL" desc:"Connection string for the data store backend." required:"Y"`
	EventLogURL     string `yaml:"event_log" env:"EVENT_LOG_URL" desc:"Connection string for the event log backend." required:"Y"`
	TaskStoreURL    string `yaml:"task_store" env:"TASK_STORE_URL" desc:"Connection string for the resumable task store backend." required:"Y"`

	TaskLeaseSeconds int `yaml:"task_lease_seconds" env:"TASK_LEASE_SECONDS" desc:"Default lease duration in seconds a grabbed resumable task is held for before it's eligible to be re-grabbed." required:"N"`
	TaskPollSeconds  int `yaml:"task_poll_seconds" env:"TASK_POLL_SECONDS" desc:"Interval in seconds between scheduler polls of the task store." required:"N"`
	TaskBatchSize    int `yaml:"task_batch_size" env:"TASK_BATCH_SIZE" desc:"Maximum number of tasks grabbed per scheduler poll." required:"N"`
	TaskConcurrency  int `yaml:"task_concurrency" env:"TASK_CONCURRENCY" desc:"Maximum number of tasks the scheduler dispatches to handlers concurrently." required:"N"`

	EventBusBuffer int `yaml:"event_bus_buffer" env:"EVENT_BUS_BUFFER" desc:"Channel depth allocated per event bus subscription." required:"N"`
}

var (
	ErrMissingMessageStore = errors.New("config validation error: message store connection string is required")
	ErrMissingDataStore    = errors.New("config validation error: data store connection string is required")
	ErrMissingEventLog     = errors.New("config validation error: event log connection string is required")
	ErrMissingTaskStore    = errors.New("config validation error: task store connection string is required")
)

func (c *Config) InitDefaults() {
	c.LogLevel = "info"
	c.AuditLog = true
	c.OpenTelemetry = OpenTelemetryConfig{}

	c.TaskLeaseSeconds = 60
	c.TaskPollSeconds = 1
	c.TaskBatchSize = 10
	c.TaskConcurrency = 4

	c.EventBusBuffer = 16
}

func (c *Config) parseConfigFile(flagPath string, osInterface OSInterface) error {
	configPath := flagPath
	if envPath := osInterface.Getenv("CONFIG"); envPath != "" {
		if configPath != "" && configPath != envPath {
			return fmt.Errorf("conflicting config paths: flag=%s env=%s", configPath, envPath)
		}
		configPath = envPath
	}

	if configPath == "" {
		for _, loc := range getConfigLocations() {
			if _, err := osInterface.Stat(loc); err == nil {
				configPath = loc
				break
			}
		}
	}

	if configPath == "" {
		return nil
	}

	data, err := osInterface.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	c.configPath = configPath

	if strings.HasSuffix(strings.ToLower(configPath), ".env") {
		envMap, err := godotenv.Read(configPath)
		if err != nil {
			return fmt.Errorf("error loading .env file: %w", err)
		}
		if err := env.ParseWithOptions(c, env.Options{Environment: envMap}); err != nil {
			return fmt.Errorf("error parsing .env file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("error parsing yaml config: %w", err)
		}
	}
	return nil
}

func (c *Config) parseEnvVariables(osInterface OSInterface) error {
	if _, ok := osInterface.(*defaultOSImpl); !ok {
		envMap := make(map[string]string)
		for _, e := range osInterface.Environ() {
			if i := strings.Index(e, "="); i >= 0 {
				envMap[e[:i]] = e[i+1:]
			}
		}
		return env.ParseWithOptions(c, env.Options{Environment: envMap})
	}
	return env.Parse(c)
}

// ParseWithoutValidation parses config file and environment layers without
// checking required fields. Useful for tooling (e.g. config doc generation)
// that needs the shape but not a fully-runnable config.
func ParseWithoutValidation(flagConfigPath string, osInterface OSInterface) (*Config, error) {
	var config Config
	config.InitDefaults()

	if err := config.parseConfigFile(flagConfigPath, osInterface); err != nil {
		return nil, err
	}
	if err := config.parseEnvVariables(osInterface); err != nil {
		return nil, err
	}

	return &config, nil
}

// Parse loads, validates, and returns the process configuration.
func Parse(flagConfigPath string) (*Config, error) {
	return ParseWithOS(flagConfigPath, defaultOS)
}

// ParseWithOS is Parse with an injectable OSInterface, for testing.
func ParseWithOS(flagConfigPath string, osInterface OSInterface) (*Config, error) {
	config, err := ParseWithoutValidation(flagConfigPath, osInterface)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that every backend connection string is present and
// well-formed per connstring.Parse.
func (c *Config) Validate() error {
	c.validated = false

	if c.MessageStoreURL == "" {
		return ErrMissingMessageStore
	}
	if _, err := connstring.Parse(c.MessageStoreURL); err != nil {
		return fmt.Errorf("%w: %w", ErrMissingMessageStore, err)
	}

	if c.DataStoreURL == "" {
		return ErrMissingDataStore
	}
	if _, err := connstring.Parse(c.DataStoreURL); err != nil {
		return fmt.Errorf("%w: %w", ErrMissingDataStore, err)
	}

	if c.EventLogURL == "" {
		return ErrMissingEventLog
	}
	if _, err := connstring.Parse(c.EventLogURL); err != nil {
		return fmt.Errorf("%w: %w", ErrMissingEventLog, err)
	}

	if c.TaskStoreURL == "" {
		return ErrMissingTaskStore
	}
	if _, err := connstring.Parse(c.TaskStoreURL); err != nil {
		return fmt.Errorf("%w: %w", ErrMissingTaskStore, err)
	}

	c.validated = true
	return nil
}

// ConfigFilePath returns the path of the config file that was used, if any.
func (c *Config) ConfigFilePath() string {
	return c.configPath
}

func (c *Config) TaskLeaseDuration() time.Duration {
	return time.Duration(c.TaskLeaseSeconds) * time.Second
}

func (c *Config) TaskPollInterval() time.Duration {
	return time.Duration(c.TaskPollSeconds) * time.Second
}
