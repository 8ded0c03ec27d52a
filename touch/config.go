package touch

import (
	"fmt"
	"path"
	"time"

	"gopkg.in/ini.v1"
)

const (
	DefaultRemoteArtifactPath = "/data/local/tmp/maatouch.apk"
	DefaultLocalArtifactPath  = "maatouch"
	DefaultMainClass          = "com.shxyke.MaaTouch.App"
	DefaultSettleDelay        = 50 * time.Millisecond
	DefaultHeaderMaxLines     = 3
	DefaultHeaderTimeout      = 3 * time.Second
	DefaultPressure           = 100
	DefaultSmoothParts        = 10
)

// Config holds everything a session needs to reach and drive the helper on
// one device. Each session owns its own copy.
type Config struct {
	DeviceID           string
	LocalArtifactPath  string
	RemoteArtifactPath string
	MainClass          string
	SettleDelay        time.Duration
	HeaderMaxLines     int
	HeaderTimeout      time.Duration
}

// DefaultConfig returns a Config for deviceID populated with the defaults.
func DefaultConfig(deviceID string) Config {
	return Config{
		DeviceID:           deviceID,
		LocalArtifactPath:  DefaultLocalArtifactPath,
		RemoteArtifactPath: DefaultRemoteArtifactPath,
		MainClass:          DefaultMainClass,
		SettleDelay:        DefaultSettleDelay,
		HeaderMaxLines:     DefaultHeaderMaxLines,
		HeaderTimeout:      DefaultHeaderTimeout,
	}
}

// withDefaults fills zero fields so a partially populated Config is usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig(c.DeviceID)
	if c.LocalArtifactPath == "" {
		c.LocalArtifactPath = d.LocalArtifactPath
	}
	if c.RemoteArtifactPath == "" {
		c.RemoteArtifactPath = d.RemoteArtifactPath
	}
	if c.MainClass == "" {
		c.MainClass = d.MainClass
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = d.SettleDelay
	}
	if c.HeaderMaxLines <= 0 {
		c.HeaderMaxLines = d.HeaderMaxLines
	}
	if c.HeaderTimeout <= 0 {
		c.HeaderTimeout = d.HeaderTimeout
	}
	return c
}

// StartCommand is the remote shell line that launches the helper.
func (c Config) StartCommand() string {
	return fmt.Sprintf("export CLASSPATH=%s; app_process %s %s",
		c.RemoteArtifactPath, path.Dir(c.RemoteArtifactPath), c.MainClass)
}

// LoadConfig reads an ini file and returns the configuration for deviceID.
// Keys in the default section apply to every device; a section named after
// the device id overrides them.
//
//	settle_delay = 50ms
//	[emulator-5554]
//	local_artifact = /opt/maatouch/maatouch.apk
func LoadConfig(filename, deviceID string) (Config, error) {
	cfg := DefaultConfig(deviceID)

	file, err := ini.Load(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config %s: %w", filename, err)
	}

	if err := applySection(&cfg, file.Section("")); err != nil {
		return cfg, err
	}

	if deviceID != "" && file.HasSection(deviceID) {
		if err := applySection(&cfg, file.Section(deviceID)); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func applySection(cfg *Config, section *ini.Section) error {
	if key, err := section.GetKey("local_artifact"); err == nil {
		cfg.LocalArtifactPath = key.String()
	}
	if key, err := section.GetKey("remote_artifact"); err == nil {
		cfg.RemoteArtifactPath = key.String()
	}
	if key, err := section.GetKey("main_class"); err == nil {
		cfg.MainClass = key.String()
	}
	if key, err := section.GetKey("settle_delay"); err == nil {
		d, err := key.Duration()
		if err != nil {
			return fmt.Errorf("invalid settle_delay in [%s]: %w", section.Name(), err)
		}
		cfg.SettleDelay = d
	}
	if key, err := section.GetKey("header_max_lines"); err == nil {
		n, err := key.Int()
		if err != nil {
			return fmt.Errorf("invalid header_max_lines in [%s]: %w", section.Name(), err)
		}
		cfg.HeaderMaxLines = n
	}
	if key, err := section.GetKey("header_timeout"); err == nil {
		d, err := key.Duration()
		if err != nil {
			return fmt.Errorf("invalid header_timeout in [%s]: %w", section.Name(), err)
		}
		cfg.HeaderTimeout = d
	}
	return nil
}
