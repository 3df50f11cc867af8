package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/open-control-systems/netwatch/components/status"
)

// Config is the application configuration.
type Config struct {
	Log struct {
		Path  string `mapstructure:"path"`
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Device struct {
		URL      string        `mapstructure:"url"`
		User     string        `mapstructure:"user"`
		Password string        `mapstructure:"password"`
		Timeout  time.Duration `mapstructure:"timeout"`
		LogLimit int           `mapstructure:"log_limit"`
		Topics   []string      `mapstructure:"topics"`
		Keywords []string      `mapstructure:"keywords"`

		MDNS struct {
			Enabled        bool          `mapstructure:"enabled"`
			Service        string        `mapstructure:"service"`
			BrowseInterval time.Duration `mapstructure:"browse_interval"`
			BrowseTimeout  time.Duration `mapstructure:"browse_timeout"`
		} `mapstructure:"mdns"`
	} `mapstructure:"device"`

	Monitor struct {
		LogInterval        time.Duration `mapstructure:"log_interval"`
		ThroughputInterval time.Duration `mapstructure:"throughput_interval"`
		MinInterval        time.Duration `mapstructure:"min_interval"`
		FailureThreshold   int           `mapstructure:"failure_threshold"`
		DedupCapacity      int           `mapstructure:"dedup_capacity"`
		IncludeFailed      bool          `mapstructure:"include_failed"`
		SendTimeout        time.Duration `mapstructure:"send_timeout"`
	} `mapstructure:"monitor"`

	Telegram struct {
		Token        string        `mapstructure:"token"`
		APIURL       string        `mapstructure:"api_url"`
		PollTimeout  time.Duration `mapstructure:"poll_timeout"`
		AllowedChats []int64       `mapstructure:"allowed_chats"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Enabled bool   `mapstructure:"enabled"`
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"http"`

	Storage struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"storage"`

	InfluxDB struct {
		URL    string `mapstructure:"url"`
		Org    string `mapstructure:"org"`
		Bucket string `mapstructure:"bucket"`
		Token  string `mapstructure:"token"`
	} `mapstructure:"influxdb"`
}

// LoadConfig reads the configuration from the YAML file and NETWATCH_* environment variables.
//
// Remarks:
//   - path can be empty, the defaults and the environment are used then.
//   - Nested keys are mapped to the environment with "_": device.password -> NETWATCH_DEVICE_PASSWORD.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("NETWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: path=%s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Device.URL == "" {
		errs = append(errs, errors.New("device.url is required"))
	}
	if c.Device.Timeout <= 0 {
		errs = append(errs, errors.New("device.timeout should be positive"))
	}
	if c.Device.LogLimit < 0 {
		errs = append(errs, errors.New("device.log_limit should not be negative"))
	}
	if c.Monitor.MinInterval <= 0 {
		errs = append(errs, errors.New("monitor.min_interval should be positive"))
	}
	if c.Monitor.LogInterval <= 0 {
		errs = append(errs, errors.New("monitor.log_interval should be positive"))
	} else if c.Monitor.LogInterval < c.Monitor.MinInterval {
		errs = append(errs, errors.New("monitor.log_interval should not be less than monitor.min_interval"))
	}
	if c.Monitor.ThroughputInterval <= 0 {
		errs = append(errs, errors.New("monitor.throughput_interval should be positive"))
	} else if c.Monitor.ThroughputInterval < c.Monitor.MinInterval {
		errs = append(errs,
			errors.New("monitor.throughput_interval should not be less than monitor.min_interval"))
	}
	if c.Monitor.FailureThreshold <= 0 {
		errs = append(errs, errors.New("monitor.failure_threshold should be positive"))
	}
	if c.Monitor.DedupCapacity < c.Device.LogLimit {
		errs = append(errs, errors.New("monitor.dedup_capacity should not be less than device.log_limit"))
	}
	if c.InfluxDB.URL != "" && (c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, errors.New("influxdb.org and influxdb.bucket are required with influxdb.url"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w: %w", errors.Join(errs...), status.StatusInvalidArg)
	}

	return nil
}

// Masked returns the settings safe to log.
func (c *Config) Masked() Config {
	masked := *c

	mask := func(s *string) {
		if *s != "" {
			*s = "******"
		}
	}

	mask(&masked.Device.Password)
	mask(&masked.Telegram.Token)
	mask(&masked.InfluxDB.Token)

	return masked
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")

	v.SetDefault("device.url", "")
	v.SetDefault("device.user", "admin")
	v.SetDefault("device.password", "")
	v.SetDefault("device.timeout", time.Second*10)
	v.SetDefault("device.log_limit", 10)
	v.SetDefault("device.topics", []string{"hotspot"})
	v.SetDefault("device.keywords", []string{"login", "logout", "hotspot"})
	v.SetDefault("device.mdns.enabled", true)
	v.SetDefault("device.mdns.service", "_http._tcp")
	v.SetDefault("device.mdns.browse_interval", time.Second*30)
	v.SetDefault("device.mdns.browse_timeout", time.Second*5)

	v.SetDefault("monitor.log_interval", time.Second*3)
	v.SetDefault("monitor.throughput_interval", time.Second*3)
	v.SetDefault("monitor.min_interval", time.Second)
	v.SetDefault("monitor.failure_threshold", 3)
	v.SetDefault("monitor.dedup_capacity", 1024)
	v.SetDefault("monitor.include_failed", true)
	v.SetDefault("monitor.send_timeout", time.Second*10)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.api_url", "")
	v.SetDefault("telegram.poll_timeout", time.Second*25)
	v.SetDefault("telegram.allowed_chats", []int64{})

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 8080)

	v.SetDefault("storage.path", "netwatch.db")

	v.SetDefault("influxdb.url", "")
	v.SetDefault("influxdb.org", "")
	v.SetDefault("influxdb.bucket", "")
	v.SetDefault("influxdb.token", "")
}
