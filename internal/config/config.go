package config

import (
	"io"
	"os"
	"registration-verifier/internal/util"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the registration verifier
type Config struct {
	loaded       bool
	BaseURL      string        `yaml:"baseUrl" envconfig:"base_url"`
	RegisterPath string        `yaml:"registerPath" envconfig:"register_path"`
	ExpectedText string        `yaml:"expectedText" envconfig:"expected_text"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"timeout"`

	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`

	Browser struct {
		Headless          bool          `yaml:"headless"`
		NoSandbox         bool          `yaml:"noSandbox" envconfig:"no_sandbox"`
		Bin               string        `yaml:"bin"`
		ControlURL        string        `yaml:"controlUrl" envconfig:"control_url"`
		NavigationTimeout time.Duration `yaml:"navigationTimeout" envconfig:"navigation_timeout"`
		ActionTimeout     time.Duration `yaml:"actionTimeout" envconfig:"action_timeout"`
		PollInterval      time.Duration `yaml:"pollInterval" envconfig:"poll_interval"`
	}
	Form struct {
		Email           string `yaml:"email"`
		Password        string `yaml:"password"`
		ConfirmPassword string `yaml:"confirmPassword" envconfig:"confirm_password"`
		Submit          string `yaml:"submit"`
		Message         string `yaml:"message"`
	}
	Account struct {
		EmailPrefix string `yaml:"emailPrefix" envconfig:"email_prefix"`
		EmailDomain string `yaml:"emailDomain" envconfig:"email_domain"`
		Password    string `yaml:"password"`
	}
	Artifacts struct {
		Success string `yaml:"success"`
		Error   string `yaml:"error"`
	}
	Log struct {
		Level string `yaml:"level"`
	}
}

// URL returns the address of the registration page
func (c Config) URL() string {
	return c.BaseURL + c.RegisterPath
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	cfg := Config{
		BaseURL:        "http://localhost:8000",
		RegisterPath:   "/register-supervisor.html",
		ExpectedText:   "Sua conta foi criada, mas não foi possível conectar ao portal da UNA-SUS.",
		Timeout:        30 * time.Second,
		MigrationsPath: "./sql",
	}

	cfg.Browser.Headless = true
	cfg.Browser.NavigationTimeout = 30 * time.Second
	cfg.Browser.ActionTimeout = 10 * time.Second
	cfg.Browser.PollInterval = 100 * time.Millisecond

	cfg.Form.Email = "#register-email"
	cfg.Form.Password = "#register-password"
	cfg.Form.ConfirmPassword = "#confirm-password"
	cfg.Form.Submit = `button[type="submit"]`
	cfg.Form.Message = "#error-message"

	cfg.Account.EmailPrefix = "test-supervisor"
	cfg.Account.EmailDomain = "example.com"
	cfg.Account.Password = "password123"

	cfg.Artifacts.Success = "verification/verification.png"
	cfg.Artifacts.Error = "verification/error.png"

	cfg.Log.Level = "info"

	return cfg
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error, the defaults and the environment are used instead
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("SMOKE_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil && err != io.EOF {
			return err
		}
	case !os.IsNotExist(err):
		return err
	}

	if err := envconfig.Process("smoke", &cfg); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
