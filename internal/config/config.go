// Package config loads run settings from the environment and an optional YAML
// file. Environment variables win over the file; the file wins over defaults.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"course-promo/internal/domain"
	"course-promo/internal/providers/work24"
	"course-promo/internal/sftpclient"
)

type Config struct {
	Work24       Work24Config `mapstructure:"work24"`
	PexelsAPIKey string       `mapstructure:"pexels_api_key"`
	Region       string       `mapstructure:"region"`
	OutputDir    string       `mapstructure:"output_dir"`
	SnapshotPath string       `mapstructure:"snapshot_path"`
	Fonts        FontConfig   `mapstructure:"fonts"`
	SFTP         SFTPConfig   `mapstructure:"sftp"`
}

type Work24Config struct {
	APIKey         string        `mapstructure:"api_key"`
	ListURL        string        `mapstructure:"list_url"`
	DetailURL      string        `mapstructure:"detail_url"`
	Area           string        `mapstructure:"area"`
	Category       string        `mapstructure:"category"`
	PageSize       int           `mapstructure:"page_size"`
	MaxPages       int           `mapstructure:"max_pages"`
	WindowDays     int           `mapstructure:"window_days"`
	Enrich         bool          `mapstructure:"enrich"`
	DetailInterval time.Duration `mapstructure:"detail_interval"`
}

type FontConfig struct {
	Regular string `mapstructure:"regular"`
	Bold    string `mapstructure:"bold"`
}

type SFTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	Dir        string `mapstructure:"dir"`
	KnownHosts string `mapstructure:"known_hosts"`
	Insecure   bool   `mapstructure:"insecure"`
}

// envBindings maps config keys to the variables operators already use.
var envBindings = map[string]string{
	"work24.api_key":         "HRD_API_KEY",
	"work24.list_url":        "WORK24_LIST_URL",
	"work24.detail_url":      "WORK24_DETAIL_URL",
	"work24.area":            "WORK24_AREA",
	"work24.category":        "WORK24_CATEGORY",
	"work24.page_size":       "WORK24_PAGE_SIZE",
	"work24.max_pages":       "WORK24_MAX_PAGES",
	"work24.window_days":     "WORK24_WINDOW_DAYS",
	"work24.enrich":          "WORK24_ENRICH",
	"work24.detail_interval": "WORK24_DETAIL_INTERVAL",
	"pexels_api_key":         "PEXELS_API_KEY",
	"region":                 "PROMO_REGION",
	"output_dir":             "PROMO_OUTPUT_DIR",
	"snapshot_path":          "PROMO_SNAPSHOT_PATH",
	"fonts.regular":          "PROMO_FONT_REGULAR",
	"fonts.bold":             "PROMO_FONT_BOLD",
	"sftp.host":              "SFTP_HOST",
	"sftp.port":              "SFTP_PORT",
	"sftp.user":              "SFTP_USER",
	"sftp.pass":              "SFTP_PASS",
	"sftp.dir":               "SFTP_DIR",
	"sftp.known_hosts":       "SFTP_KNOWN_HOSTS",
	"sftp.insecure":          "SFTP_INSECURE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("work24.api_key", "")
	v.SetDefault("work24.list_url", work24.DefaultListURL)
	v.SetDefault("work24.detail_url", work24.DefaultDetailURL)
	v.SetDefault("work24.area", work24.DefaultArea)
	v.SetDefault("work24.category", work24.DefaultCategory)
	v.SetDefault("work24.page_size", 100)
	v.SetDefault("work24.max_pages", 1)
	v.SetDefault("work24.window_days", 180)
	v.SetDefault("work24.enrich", true)
	v.SetDefault("work24.detail_interval", work24.DefaultDetailInterval)
	v.SetDefault("pexels_api_key", "")
	v.SetDefault("region", string(domain.RegionNonCapital))
	v.SetDefault("output_dir", "output")
	v.SetDefault("snapshot_path", "data/programs.json")
	v.SetDefault("fonts.regular", "")
	v.SetDefault("fonts.bold", "")
	v.SetDefault("sftp.host", "")
	v.SetDefault("sftp.port", 22)
	v.SetDefault("sftp.user", "")
	v.SetDefault("sftp.pass", "")
	v.SetDefault("sftp.dir", "/")
	v.SetDefault("sftp.known_hosts", "")
	v.SetDefault("sftp.insecure", false)
}

// Load reads defaults, then path (YAML, optional), then the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", env)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Region = strings.TrimSpace(cfg.Region)
	return &cfg, nil
}

// Validate checks what a run needs. A local JSON source does not need the
// Work24 key.
func (c *Config) Validate(localJSON bool) error {
	if !localJSON && strings.TrimSpace(c.Work24.APIKey) == "" {
		return errors.WithHint(
			errors.New("missing Work24 API key"),
			"set HRD_API_KEY, or pass --json FILE to render from a local course list",
		)
	}
	if _, err := c.ParsedRegion(); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return errors.WithHint(errors.New("empty output directory"), "set PROMO_OUTPUT_DIR")
	}
	return nil
}

func (c *Config) ParsedRegion() (domain.Region, error) {
	return domain.ParseRegion(c.Region)
}

// ListParams is the Work24 listing window starting at now.
func (c *Config) ListParams(now time.Time) work24.ListParams {
	days := c.Work24.WindowDays
	if days <= 0 {
		days = 180
	}
	return work24.ListParams{
		Area:     c.Work24.Area,
		Category: c.Work24.Category,
		From:     now,
		To:       now.AddDate(0, 0, days),
		PageSize: c.Work24.PageSize,
		MaxPages: c.Work24.MaxPages,
	}
}

// Work24Client builds the API client with the configured endpoints.
func (c *Config) Work24Client() *work24.Client {
	client := work24.New(c.Work24.APIKey)
	client.ListURL = c.Work24.ListURL
	client.DetailURL = c.Work24.DetailURL
	return client
}

// UploadEnabled reports whether SFTP credentials are present.
func (c *Config) UploadEnabled() bool {
	return c.SFTP.Host != "" && c.SFTP.User != "" && c.SFTP.Pass != ""
}

func (c *Config) SFTPClientConfig() sftpclient.Config {
	return sftpclient.Config{
		Host:                  c.SFTP.Host,
		Port:                  c.SFTP.Port,
		User:                  c.SFTP.User,
		Pass:                  c.SFTP.Pass,
		RemoteDir:             c.SFTP.Dir,
		KnownHostsFile:        c.SFTP.KnownHosts,
		InsecureIgnoreHostKey: c.SFTP.Insecure,
	}
}
