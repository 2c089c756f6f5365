package metrics

// Provider selects a metric reader.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OTLPProvider       Provider = "otlp"
)

// Config describes the meter provider.
type Config struct {
	ServiceName string
	Version     string
	Provider    []ProviderCfg
}

// ProviderCfg configures one reader. Endpoint, Headers and Insecure apply to OTLP only.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type OptionFn func(config Config) Config

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

func WithVersion(version string) OptionFn {
	return func(config Config) Config {
		config.Version = version
		return config
	}
}
