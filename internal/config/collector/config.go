package collector_config

import (
	"time"

	"github.com/NordCoder/Tracerus/internal/obs"
)

type Remote struct {
	Key       string        `mapstructure:"key"`
	BaseURL   string        `mapstructure:"base_url"`
	Location  string        `mapstructure:"location"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type Local struct {
	Bin              string `mapstructure:"bin"`
	AssetDir         string `mapstructure:"asset_dir"`
	DisableIsolation bool   `mapstructure:"disable_isolation"`
}

type Output struct {
	Dir     string `mapstructure:"dir"`
	Summary string `mapstructure:"summary"`
	Archive string `mapstructure:"archive"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
}

type Config struct {
	Samples int    `mapstructure:"samples"`
	URLs    string `mapstructure:"urls"`
	Debug   bool   `mapstructure:"debug"`
	Remote  Remote `mapstructure:"wpt"`
	Local   Local  `mapstructure:"lighthouse"`
	Out     Output `mapstructure:"out"`
	Server  Server `mapstructure:"server"`
	Log     Log    `mapstructure:"log"`
	OTEL    OTEL   `mapstructure:"otel"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Debug:  c.Debug,
		Pretty: c.Log.Pretty,
		App:    "collector",
		Ver:    "1.0",
	}
}

func (c *Config) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      c.OTEL.Enable,
		Endpoint:    c.OTEL.OTLPEndpoint,
		ServiceName: c.OTEL.ServiceName,
		SampleRatio: c.OTEL.SampleRatio,
	}
}
