package procsim

import (
	"io"
	"log/slog"

	"github.com/viant/afs/storage"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dispatcher"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service.
type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithEventHandler subscribes handler to process lifecycle events of every run.
func WithEventHandler(handler event.Handler) Option {
	return func(s *Service) {
		s.eventHandlers = append(s.eventHandlers, handler)
	}
}

// WithDispatchListener is notified each time a process gets the CPU.
func WithDispatchListener(listener dispatcher.Listener) Option {
	return func(s *Service) {
		s.listener = listener
	}
}

// WithTrace writes the per-instruction trace to w.
func WithTrace(w io.Writer) Option {
	return func(s *Service) {
		s.trace = w
	}
}

// WithProgress is called whenever run counters change.
func WithProgress(onChange func(progress.Progress)) Option {
	return func(s *Service) {
		s.onProgress = onChange
	}
}

// WithRecordsFactory overrides the accounting store created for every run.
func WithRecordsFactory(factory func() dao.Service[process.PID, process.Record]) Option {
	return func(s *Service) {
		s.recordsFactory = factory
	}
}

// WithBaseURL resolves relative declaration URLs against baseURL.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = baseURL
	}
}

// WithFsOptions passes storage options to declaration loaders.
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.fsOptions = options
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErrors = append(s.initErrors, err)
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.initErrors = append(s.initErrors, err)
		}
	}
}
