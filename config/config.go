package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvAPIURL selects the backend host and overrides api.base_url.
const EnvAPIURL = "FREXT_API_URL"

type Config struct {
	API        APIConfig        `yaml:"api"`
	Storage    StorageConfig    `yaml:"storage"`
	Minio      MinioConfig      `yaml:"minio"`
	Connection ConnectionConfig `yaml:"connection"`
	Upload     UploadConfig     `yaml:"upload"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Store      StoreConfig      `yaml:"store"`
	Users      []User           `yaml:"users"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Prefix         string `yaml:"prefix"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"` // file, minio
	Dir        string `yaml:"dir"`
	SessionDir string `yaml:"session_dir"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
}

type ConnectionConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

type UploadConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig, AuthConfig, StoreConfig and Users only matter to frext-mockapi.
type ServerConfig struct {
	Port               int `yaml:"port"`
	ProcessingDelayMs  int `yaml:"processing_delay_ms"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type StoreConfig struct {
	MaxResults   int `yaml:"max_results"`
	MonthlyQuota int `yaml:"monthly_quota"`
}

type User struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Load reads a YAML config file, applies the environment and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.setDefaults()
	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg = &Config{}
	cfg.applyEnv()
	cfg.setDefaults()
	return cfg, nil
}

// LoadEnv loads a .env file into the process environment if one is present.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000"
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Prefix == "" {
		c.API.Prefix = "/api/v1"
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 30
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		c.Storage.Dir = filepath.Join(home, ".frext")
	}
	if c.Storage.SessionDir == "" {
		c.Storage.SessionDir = filepath.Join(os.TempDir(), "frext-session")
	}
	if c.Minio.Prefix == "" {
		c.Minio.Prefix = "frext/"
	}
	if c.Connection.PollIntervalSeconds == 0 {
		c.Connection.PollIntervalSeconds = 30
	}
	if c.Upload.MaxFileSizeMB == 0 {
		c.Upload.MaxFileSizeMB = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.RateLimitPerMinute == 0 {
		c.Server.RateLimitPerMinute = 100
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.Store.MaxResults == 0 {
		c.Store.MaxResults = 100
	}
	if c.Store.MonthlyQuota == 0 {
		c.Store.MonthlyQuota = 500
	}
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) ProcessingDelay() time.Duration {
	return time.Duration(c.Server.ProcessingDelayMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Connection.PollIntervalSeconds) * time.Second
}

// MaxFileSize returns the upload limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

// FindUser finds a mock account by email
func (c *Config) FindUser(email string) *User {
	for i := range c.Users {
		if strings.EqualFold(c.Users[i].Email, email) {
			return &c.Users[i]
		}
	}
	return nil
}
