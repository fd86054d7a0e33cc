package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const FileName = "config.yml"

// StockAdminPassword is the password seeded for the first administrator
// when the config does not override it.
const StockAdminPassword = "admin123"

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
		DBFile  string `yaml:"db_file"`
	} `yaml:"app"`

	Store struct {
		BusyTimeoutSeconds int `yaml:"busy_timeout_seconds"`
	} `yaml:"store"`

	Storage struct {
		AttachmentsDir string `yaml:"attachments_dir"`
		PhotosDir      string `yaml:"photos_dir"`
	} `yaml:"storage"`

	// LoginAttemptsPerMinute and LoginBurst throttle logins per username
	// within one running process. The counters are kept in memory, so they
	// guard a long-lived front end; each CLI invocation starts afresh.
	Auth struct {
		DefaultAdminUsername   string  `yaml:"default_admin_username"`
		DefaultAdminPassword   string  `yaml:"default_admin_password"`
		BcryptCost             int     `yaml:"bcrypt_cost"`
		LoginAttemptsPerMinute float64 `yaml:"login_attempts_per_minute"`
		LoginBurst             int     `yaml:"login_burst"`
	} `yaml:"auth"`

	// Sources are the labels offered when recording where a candidate came
	// from. Any free text is still accepted.
	Sources []string `yaml:"sources"`

	Log Log `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.App.DBFile = "candidates.db"
	cfg.Store.BusyTimeoutSeconds = 20
	cfg.Storage.AttachmentsDir = "attachments"
	cfg.Storage.PhotosDir = "photos"
	cfg.Auth.DefaultAdminUsername = "admin"
	cfg.Auth.DefaultAdminPassword = StockAdminPassword
	cfg.Auth.BcryptCost = 10
	cfg.Auth.LoginAttemptsPerMinute = 5
	cfg.Auth.LoginBurst = 5
	cfg.Sources = []string{"LinkedIn", "Indeed", "Company website", "Referral", "Job fair", "Other"}
	cfg.Log = Log{Level: "info", Format: "text"}
	return cfg
}

// Load reads path on top of Default, so a partial file only overrides the
// keys it names.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// LoadDir makes sure dataDir holds a config file, loads it and pins
// App.DataDir to dataDir.
func LoadDir(dataDir string) (Config, string, error) {
	path, err := EnsureUserConfig(dataDir)
	if err != nil {
		return Config{}, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	cfg.App.DataDir = dataDir
	if err := OverlaySources(&cfg, filepath.Join(dataDir, SourcesFileName)); err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}

func (c Config) DBPath() string          { return c.resolve(c.App.DBFile) }
func (c Config) AttachmentsPath() string { return c.resolve(c.Storage.AttachmentsDir) }
func (c Config) PhotosPath() string      { return c.resolve(c.Storage.PhotosDir) }

func (c Config) BusyTimeout() time.Duration {
	return time.Duration(c.Store.BusyTimeoutSeconds) * time.Second
}
