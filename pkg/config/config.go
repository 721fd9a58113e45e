package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	apperrors "threadscraper/pkg/errors"
)

// Storage modes
const (
	StorageRemote = "remote"
	StorageLocal  = "local"
)

// Config holds all configuration options for threadscraper.
// It is built once by Load and treated as read-only afterwards.
type Config struct {
	Target        TargetConfig       `yaml:"target" json:"target"`
	Browser       BrowserConfig      `yaml:"browser" json:"browser"`
	Pagination    PaginationConfig   `yaml:"pagination" json:"pagination"`
	Extract       ExtractConfig      `yaml:"extract" json:"extract"`
	Auth          AuthConfig         `yaml:"auth" json:"auth"`
	Storage       StorageConfig      `yaml:"storage" json:"storage"`
	Download      DownloadConfig     `yaml:"download" json:"download"`
	Export        ExportConfig       `yaml:"export" json:"export"`
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`
	Logging       LoggingConfig      `yaml:"logging" json:"logging"`
}

// TargetConfig describes what to scrape
type TargetConfig struct {
	URL string `yaml:"url" json:"url"`
	// MaxPosts caps the number of processed posts; 0 means no cap
	MaxPosts int `yaml:"max_posts" json:"max_posts"`
}

// BrowserConfig holds browser session settings
type BrowserConfig struct {
	Headless                  bool   `yaml:"headless" json:"headless"`
	UseProfile                bool   `yaml:"use_profile" json:"use_profile"`
	UserDataDir               string `yaml:"user_data_dir" json:"user_data_dir"`
	ProfileDir                string `yaml:"profile_dir" json:"profile_dir"`
	Attach                    bool   `yaml:"attach" json:"attach"`
	DebugAddress              string `yaml:"debug_address" json:"debug_address"`
	AllowFreshProfileFallback bool   `yaml:"allow_fresh_profile_fallback" json:"allow_fresh_profile_fallback"`
	Bin                       string `yaml:"bin" json:"bin"`
	NoSandbox                 bool   `yaml:"no_sandbox" json:"no_sandbox"`
	WindowSize                string `yaml:"window_size" json:"window_size"`
	Stealth                   bool   `yaml:"stealth" json:"stealth"`
}

// PaginationConfig controls scroll-driven loading
type PaginationConfig struct {
	MaxScrolls  int           `yaml:"max_scrolls" json:"max_scrolls"`
	ScrollPause time.Duration `yaml:"scroll_pause" json:"scroll_pause"`
	InitialWait time.Duration `yaml:"initial_wait" json:"initial_wait"`
	ReturnWait  time.Duration `yaml:"return_wait" json:"return_wait"`
	// Accumulate keeps posts seen on earlier scrolls instead of replacing the set
	Accumulate bool `yaml:"accumulate" json:"accumulate"`
}

// ExtractConfig holds the selector and lexicon data used by the extraction heuristics
type ExtractConfig struct {
	PostSelectors    []string      `yaml:"post_selectors" json:"post_selectors"`
	ControlSelector  string        `yaml:"control_selector" json:"control_selector"`
	TextNodeSelector string        `yaml:"text_node_selector" json:"text_node_selector"`
	ExpandTokens     []string      `yaml:"expand_tokens" json:"expand_tokens"`
	TranslateToken   string        `yaml:"translate_token" json:"translate_token"`
	TranslateNoise   []string      `yaml:"translate_noise" json:"translate_noise"`
	NoiseWords       []string      `yaml:"noise_words" json:"noise_words"`
	ExpandWait       time.Duration `yaml:"expand_wait" json:"expand_wait"`
	ScrollIntoView   bool          `yaml:"scroll_into_view" json:"scroll_into_view"`
}

// AuthConfig holds login credentials and the login/OTP form selectors
type AuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	// Account names a stored credential to use when Username is empty
	Account string `yaml:"account" json:"account"`

	UserSelectors      []string `yaml:"user_selectors" json:"user_selectors"`
	PasswordSelectors  []string `yaml:"password_selectors" json:"password_selectors"`
	SubmitSelectors    []string `yaml:"submit_selectors" json:"submit_selectors"`
	SubmitTextSelector string   `yaml:"submit_text_selector" json:"submit_text_selector"`
	SubmitTexts        []string `yaml:"submit_texts" json:"submit_texts"`
	OTPSelectors       []string `yaml:"otp_selectors" json:"otp_selectors"`
	ConfirmSelectors   []string `yaml:"confirm_selectors" json:"confirm_selectors"`

	RecheckDelay      time.Duration `yaml:"recheck_delay" json:"recheck_delay"`
	PostSubmitDelay   time.Duration `yaml:"post_submit_delay" json:"post_submit_delay"`
	OTPWait           time.Duration `yaml:"otp_wait" json:"otp_wait"`
	OTPPollInterval   time.Duration `yaml:"otp_poll_interval" json:"otp_poll_interval"`
	CredentialTimeout time.Duration `yaml:"credential_timeout" json:"credential_timeout"`
	CodeTimeout       time.Duration `yaml:"code_timeout" json:"code_timeout"`
}

// StorageConfig selects and configures the asset sink
type StorageConfig struct {
	Mode       string           `yaml:"mode" json:"mode"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary" json:"cloudinary"`
	Local      LocalConfig      `yaml:"local" json:"local"`
}

// CloudinaryConfig holds remote storage credentials
type CloudinaryConfig struct {
	CloudName string   `yaml:"cloud_name" json:"cloud_name"`
	APIKey    string   `yaml:"api_key" json:"api_key"`
	APISecret string   `yaml:"api_secret" json:"api_secret"`
	Folder    string   `yaml:"folder" json:"folder"`
	Tags      []string `yaml:"tags" json:"tags"`
}

// LocalConfig holds local storage settings
type LocalConfig struct {
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// DownloadConfig holds image fetch settings
type DownloadConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Workers           int           `yaml:"workers" json:"workers"`
	PostDelay         time.Duration `yaml:"post_delay" json:"post_delay"`
}

// ExportConfig holds the tabular output settings
type ExportConfig struct {
	OutputDir      string `yaml:"output_dir" json:"output_dir"`
	BaseName       string `yaml:"base_name" json:"base_name"`
	RemoteBaseName string `yaml:"remote_base_name" json:"remote_base_name"`
	LocalBaseName  string `yaml:"local_base_name" json:"local_base_name"`
	CSV            bool   `yaml:"csv" json:"csv"`
	XLSX           bool   `yaml:"xlsx" json:"xlsx"`
	JSON           bool   `yaml:"json" json:"json"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnOTP      bool `yaml:"on_otp" json:"on_otp"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the defaults of the original tools
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			URL:      "https://www.threads.com/saved",
			MaxPosts: 200,
		},
		Browser: BrowserConfig{
			UseProfile:                true,
			UserDataDir:               DefaultUserDataDir(),
			ProfileDir:                "Default",
			DebugAddress:              "127.0.0.1:9222",
			AllowFreshProfileFallback: true,
			NoSandbox:                 true,
			WindowSize:                "1920,1080",
			Stealth:                   true,
		},
		Pagination: PaginationConfig{
			MaxScrolls:  20,
			ScrollPause: time.Second,
			InitialWait: 3 * time.Second,
			ReturnWait:  2 * time.Second,
		},
		Extract: ExtractConfig{
			PostSelectors: []string{
				`article`,
				`div[role="article"]`,
				`div[data-testid="post"]`,
				`div[class*="post"]`,
				`div[class*="card"]`,
				`div[class*="thread"]`,
				`div[class*="item"]`,
			},
			ControlSelector:  `button, [role="button"]`,
			TextNodeSelector: "span, p, div",
			ExpandTokens:     []string{"see more", "more", "…"},
			TranslateToken:   "translate",
			TranslateNoise:   []string{"translate", "more", "see more"},
			NoiseWords: []string{
				"like", "reply", "repost", "share", "follow", "translate", "more",
				"see more", "followers", "following", "posts", "views", "comments",
			},
			ExpandWait:     150 * time.Millisecond,
			ScrollIntoView: true,
		},
		Auth: AuthConfig{
			UserSelectors: []string{
				"input[name='username']",
				"input[name='email']",
				"input[type='email']",
				"input[type='text']",
				"input[autocomplete='username']",
			},
			PasswordSelectors: []string{
				"input[name='password']",
				"input[type='password']",
				"input[autocomplete='current-password']",
			},
			SubmitSelectors: []string{
				"button[type='submit']",
				"input[type='submit']",
				"button[data-testid='login']",
				"button[aria-label*='Log in' i]",
				"button[aria-label*='Sign in' i]",
			},
			SubmitTextSelector: "button, div[role='button']",
			SubmitTexts:        []string{"log in", "sign in"},
			OTPSelectors: []string{
				"input[name='otp']",
				"input[name='code']",
				"input[type='tel']",
				"input[autocomplete='one-time-code']",
			},
			ConfirmSelectors: []string{
				"button[type='submit']",
				"button[aria-label*='Confirm' i]",
				"button[aria-label*='Continue' i]",
			},
			RecheckDelay:      2 * time.Second,
			PostSubmitDelay:   3 * time.Second,
			OTPWait:           30 * time.Second,
			OTPPollInterval:   time.Second,
			CredentialTimeout: 300 * time.Second,
			CodeTimeout:       300 * time.Second,
		},
		Storage: StorageConfig{
			Mode: StorageRemote,
			Cloudinary: CloudinaryConfig{
				Folder: "threads_saved",
				Tags:   []string{"threads", "saved"},
			},
			Local: LocalConfig{
				OutputDir: "./threads_saved_images",
			},
		},
		Download: DownloadConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			RequestsPerMinute: 120,
			Workers:           1,
			PostDelay:         300 * time.Millisecond,
		},
		Export: ExportConfig{
			OutputDir:      ".",
			RemoteBaseName: "saved_posts_cloudinary",
			LocalBaseName:  "saved_posts_local",
			CSV:            true,
			XLSX:           true,
		},
		Notifications: NotificationConfig{
			Enabled:    true,
			OnOTP:      true,
			OnComplete: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultUserDataDir returns Chrome's default user-data directory for this OS
func DefaultUserDataDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "Google", "Chrome", "User Data")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome")
	default:
		linux := filepath.Join(home, ".config", "google-chrome")
		if info, err := os.Stat(linux); err == nil && info.IsDir() {
			return linux
		}
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome")
	}
}

// OutputBaseName returns the export file base name for the configured storage mode
func (c *Config) OutputBaseName() string {
	if c.Export.BaseName != "" {
		return c.Export.BaseName
	}
	if c.Storage.Mode == StorageLocal {
		return c.Export.LocalBaseName
	}
	return c.Export.RemoteBaseName
}

// envValue returns the first non-empty environment variable among names
func envValue(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// parseBool accepts the truthy spellings the original scripts honoured
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// LoadFromEnv loads configuration from environment variables.
// The unprefixed names are the ones the original scripts read.
func (c *Config) LoadFromEnv() error {
	if v := envValue("THREADSCRAPER_TARGET_URL", "THREADS_SAVED_URL"); v != "" {
		c.Target.URL = v
	}
	if v := envValue("THREADSCRAPER_MAX_POSTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid THREADSCRAPER_MAX_POSTS %q: %w", v, err)
		}
		c.Target.MaxPosts = n
	}
	if v := envValue("THREADSCRAPER_HEADLESS"); v != "" {
		c.Browser.Headless = parseBool(v)
	}
	if v := envValue("THREADSCRAPER_USER_DATA_DIR", "CHROME_USER_DATA_DIR"); v != "" {
		c.Browser.UserDataDir = v
	}
	if v := envValue("THREADSCRAPER_PROFILE_DIR", "CHROME_PROFILE_DIR"); v != "" {
		c.Browser.ProfileDir = v
	}
	if v := envValue("THREADSCRAPER_ATTACH", "CHROME_ATTACH"); v != "" {
		c.Browser.Attach = parseBool(v)
	}
	if v := envValue("THREADSCRAPER_DEBUG_ADDRESS", "CHROME_DEBUG_ADDRESS"); v != "" {
		c.Browser.DebugAddress = v
	}
	if v := envValue("THREADSCRAPER_ALLOW_FRESH_PROFILE_FALLBACK", "ALLOW_FRESH_PROFILE_FALLBACK"); v != "" {
		c.Browser.AllowFreshProfileFallback = parseBool(v)
	}
	if v := envValue("THREADSCRAPER_BROWSER_BIN"); v != "" {
		c.Browser.Bin = v
	}

	if v := envValue("THREADSCRAPER_USERNAME", "THREADS_ID"); v != "" {
		c.Auth.Username = v
	}
	if v := envValue("THREADSCRAPER_PASSWORD", "THREADS_PASSWORD"); v != "" {
		c.Auth.Password = v
	}

	if v := envValue("THREADSCRAPER_STORAGE_MODE"); v != "" {
		c.Storage.Mode = strings.ToLower(v)
	}
	if v := envValue("THREADSCRAPER_CLOUDINARY_CLOUD_NAME", "CLOUDINARY_CLOUD_NAME"); v != "" {
		c.Storage.Cloudinary.CloudName = v
	}
	if v := envValue("THREADSCRAPER_CLOUDINARY_API_KEY", "CLOUDINARY_API_KEY"); v != "" {
		c.Storage.Cloudinary.APIKey = v
	}
	if v := envValue("THREADSCRAPER_CLOUDINARY_API_SECRET", "CLOUDINARY_API_SECRET"); v != "" {
		c.Storage.Cloudinary.APISecret = v
	}
	if v := envValue("THREADSCRAPER_IMAGES_DIR"); v != "" {
		c.Storage.Local.OutputDir = v
	}

	if v := envValue("OUTPUT_XLSX"); v != "" {
		c.Export.RemoteBaseName = strings.TrimSuffix(v, ".xlsx")
	}
	if v := envValue("OUTPUT_XLSX_LOCAL"); v != "" {
		c.Export.LocalBaseName = strings.TrimSuffix(v, ".xlsx")
	}
	if v := envValue("THREADSCRAPER_OUTPUT_DIR"); v != "" {
		c.Export.OutputDir = v
	}

	if v := envValue("THREADSCRAPER_NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = parseBool(v)
	}
	if v := envValue("THREADSCRAPER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in the standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"threadscraper.yaml",
		".threadscraper.yaml",
		".threadscraper.yml",
		filepath.Join(home, ".config", "threadscraper", "config.yaml"),
		filepath.Join(home, ".threadscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks the configuration before any browser session starts.
// Every problem is reported at once; the returned error is always fatal.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Target.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("target url must be an absolute http(s) URL, got %q", c.Target.URL))
	}
	if c.Target.MaxPosts < 0 {
		errs = append(errs, errors.New("max posts cannot be negative"))
	}

	switch c.Storage.Mode {
	case StorageRemote:
		cld := c.Storage.Cloudinary
		if cld.CloudName == "" {
			errs = append(errs, errors.New("cloudinary cloud name is required for remote storage (CLOUDINARY_CLOUD_NAME)"))
		}
		if cld.APIKey == "" {
			errs = append(errs, errors.New("cloudinary API key is required for remote storage (CLOUDINARY_API_KEY)"))
		}
		if cld.APISecret == "" {
			errs = append(errs, errors.New("cloudinary API secret is required for remote storage (CLOUDINARY_API_SECRET)"))
		}
	case StorageLocal:
		if c.Storage.Local.OutputDir == "" {
			errs = append(errs, errors.New("local output directory is required for local storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage mode must be %q or %q, got %q", StorageRemote, StorageLocal, c.Storage.Mode))
	}

	if c.Browser.Attach && c.Browser.DebugAddress == "" {
		errs = append(errs, errors.New("debug address is required when attaching to a running browser"))
	}

	if c.Pagination.MaxScrolls < 0 {
		errs = append(errs, errors.New("max scrolls cannot be negative"))
	}
	if c.Pagination.ScrollPause < 0 {
		errs = append(errs, errors.New("scroll pause cannot be negative"))
	}

	if len(c.Extract.PostSelectors) == 0 {
		errs = append(errs, errors.New("at least one post selector is required"))
	}
	for _, sel := range append([]string{c.Extract.ControlSelector, c.Extract.TextNodeSelector}, c.Extract.PostSelectors...) {
		if _, err := cascadia.ParseGroup(sel); err != nil {
			errs = append(errs, fmt.Errorf("invalid selector %q: %w", sel, err))
		}
	}

	if len(c.Auth.UserSelectors) == 0 || len(c.Auth.PasswordSelectors) == 0 {
		errs = append(errs, errors.New("login field selectors cannot be empty"))
	}
	if c.Auth.CodeTimeout <= 0 || c.Auth.CredentialTimeout <= 0 {
		errs = append(errs, errors.New("prompt timeouts must be positive"))
	}
	if c.Auth.OTPPollInterval <= 0 {
		errs = append(errs, errors.New("otp poll interval must be positive"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.Download.Workers < 1 || c.Download.Workers > 8 {
		errs = append(errs, errors.New("storage workers must be between 1 and 8"))
	}

	if !c.Export.CSV && !c.Export.XLSX && !c.Export.JSON {
		errs = append(errs, errors.New("at least one export format must be enabled"))
	}
	if c.OutputBaseName() == "" {
		errs = append(errs, errors.New("export base name is required"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return apperrors.Fatal("config", "invalid configuration", errors.Join(errs...))
	}
	return nil
}

// Masked returns a copy with secrets replaced, for display
func (c *Config) Masked() Config {
	m := *c
	m.Auth.Password = mask(m.Auth.Password)
	m.Storage.Cloudinary.APIKey = mask(m.Storage.Cloudinary.APIKey)
	m.Storage.Cloudinary.APISecret = mask(m.Storage.Cloudinary.APISecret)
	return m
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["target-url"].(string); ok && v != "" {
		c.Target.URL = v
	}
	if v, ok := flags["max-posts"].(int); ok && v >= 0 {
		c.Target.MaxPosts = v
	}
	if v, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = v
	}
	if v, ok := flags["attach"].(bool); ok {
		c.Browser.Attach = v
	}
	if v, ok := flags["debug-address"].(string); ok && v != "" {
		c.Browser.DebugAddress = v
	}
	if v, ok := flags["profile-dir"].(string); ok && v != "" {
		c.Browser.ProfileDir = v
	}
	if v, ok := flags["user-data-dir"].(string); ok && v != "" {
		c.Browser.UserDataDir = v
	}
	if v, ok := flags["no-profile"].(bool); ok && v {
		c.Browser.UseProfile = false
	}
	if v, ok := flags["storage-mode"].(string); ok && v != "" {
		c.Storage.Mode = strings.ToLower(v)
	}
	if v, ok := flags["images-dir"].(string); ok && v != "" {
		c.Storage.Local.OutputDir = v
	}
	if v, ok := flags["output-dir"].(string); ok && v != "" {
		c.Export.OutputDir = v
	}
	if v, ok := flags["base-name"].(string); ok && v != "" {
		c.Export.BaseName = v
	}
	if v, ok := flags["json"].(bool); ok {
		c.Export.JSON = v
	}
	if v, ok := flags["account"].(string); ok && v != "" {
		c.Auth.Account = v
	}
	if v, ok := flags["workers"].(int); ok && v > 0 {
		c.Download.Workers = v
	}
	if v, ok := flags["accumulate"].(bool); ok {
		c.Pagination.Accumulate = v
	}
	if v, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = v
	}
	if v, ok := flags["static-page"].(bool); ok && v {
		// a saved document never grows or needs settling
		c.Pagination.InitialWait = 0
		c.Pagination.ScrollPause = 0
		c.Pagination.ReturnWait = 0
		c.Pagination.MaxScrolls = 1
		c.Extract.ExpandWait = 0
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources and validates the result.
// Precedence: command line flags > environment variables > .env file > config file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".threadscraper.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, apperrors.Fatal("config", "failed to load config file", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, apperrors.Fatal("config", "failed to load environment variables", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
