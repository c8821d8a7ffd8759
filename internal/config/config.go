package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Channel names used to tag normalized ranges and build identities.
// These are fixed: the merger handles exactly these two booking channels.
const (
	ChannelAirbnb  = "airbnb"
	ChannelBooking = "booking"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for serve mode.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// AirbnbURL is the ICS reservation export URL for the Airbnb channel.
	AirbnbURL string `yaml:"airbnb_url" json:"airbnb_url"`

	// BookingURL is the ICS reservation export URL for the Booking.com channel.
	BookingURL string `yaml:"booking_url" json:"booking_url"`

	// Output is the path the merged blocked-dates calendar is written to.
	Output string `yaml:"output" json:"output"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is a cron-style schedule (e.g. "*/30 * * * *") used in
	// serve mode to re-merge the feeds periodically.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all serve
	// mode endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration. The channel URLs
// have no defaults; they must come from the config file or the environment.
func DefaultConfig() *Config {
	return &Config{
		Output:      "./blocked.ics",
		Listen:      "127.0.0.1:8080",
		RefreshCron: "*/30 * * * *",
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Output == "" {
		c.Output = "./blocked.ics"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
}

// ApplyEnv overlays environment variables onto the config. Environment wins
// over the file so deployments can keep feed URLs out of the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("AIRBNB_ICS_URL"); v != "" {
		c.AirbnbURL = v
	}
	if v := os.Getenv("BOOKING_ICS_URL"); v != "" {
		c.BookingURL = v
	}
	if v := os.Getenv("BLOCKCAL_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("BLOCKCAL_LISTEN"); v != "" {
		c.Listen = v
	}
}

// Validate reports whether the config is sufficient to run the pipeline.
// Both channel URLs are required: merging a single channel would publish a
// calendar silently missing the other channel's blocks.
func (c *Config) Validate() error {
	if c.AirbnbURL == "" {
		return errors.New("config: airbnb feed URL is required (airbnb_url / AIRBNB_ICS_URL)")
	}
	if c.BookingURL == "" {
		return errors.New("config: booking feed URL is required (booking_url / BOOKING_ICS_URL)")
	}
	return nil
}

// Load loads configuration from the given YAML path and applies environment
// overrides.
//
// Behavior:
//   - If path is empty: defaults + environment only.
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms, return it (with env applied).
//   - If the file exists: read YAML, normalize defaults, apply env.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create a default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.ApplyEnv()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600 (feed URLs carry tokens).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".blockcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
