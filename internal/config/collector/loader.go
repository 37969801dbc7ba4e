package collector_config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("samples", 9)
	v.SetDefault("urls", "")
	v.SetDefault("debug", false)

	v.SetDefault("wpt.key", "")
	v.SetDefault("wpt.base_url", "https://www.webpagetest.org")
	v.SetDefault("wpt.location", "Dulles_MotoG6:Moto G (gen 6) - Chrome.3GFast")
	v.SetDefault("wpt.timeout", "30s")
	v.SetDefault("wpt.user_agent", "Tracerus/1.0")

	v.SetDefault("lighthouse.bin", "lighthouse")
	v.SetDefault("lighthouse.asset_dir", "./latest-run")
	v.SetDefault("lighthouse.disable_isolation", false)

	v.SetDefault("out.dir", "./collected-traces")
	v.SetDefault("out.summary", "./collected-traces/summary.json")
	v.SetDefault("out.archive", "./collected-traces.tar.zst")

	v.SetDefault("server.metrics_addr", ":8085")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "collector")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Remote.Key == "" {
		return nil, errors.New("WPT_KEY is required")
	}
	return &cfg, nil
}

// URLList resolves the configured corpus: the URLS override (whitespace or
// comma separated) when set, the built-in list otherwise.
func (c *Config) URLList() []string {
	raw := strings.TrimSpace(c.URLs)
	if raw == "" {
		return append([]string(nil), defaultURLs...)
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	urls := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}
