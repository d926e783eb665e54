package config

// OpenTelemetryConfig configures the OTLP exporter cmd/dwnd wires up for the
// tracer provider eventbus and scheduler pull spans from via
// otel.GetTracerProvider().
type OpenTelemetryConfig struct {
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME" desc:"Service name reported on emitted spans. Empty disables the OTLP exporter (a no-op tracer provider is used)." required:"N"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" desc:"OTLP endpoint traces are exported to, e.g. 'localhost:4317'." required:"N"`
	Protocol    string `yaml:"protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL" desc:"OTLP transport protocol: 'grpc' or 'http'. Defaults to 'grpc'." required:"N"`
}

func (c *OpenTelemetryConfig) Enabled() bool {
	return c != nil && c.ServiceName != ""
}
