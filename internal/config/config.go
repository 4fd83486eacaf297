package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logging struct {
	Level  string `koanf:"level" json:"level,omitempty"`
	Pretty bool   `koanf:"pretty" json:"pretty,omitempty"`
}

func (l Logging) validate() []error {
	var errs []error
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		errs = append(errs, fmt.Errorf("level: invalid log level %q: %w", l.Level, err))
	}
	return errs
}

var loggingDefault = Logging{
	Level: "info",
}

type Service struct {
	// Unit is the systemd unit that runs the service. A bare name gets the
	// '.service' suffix.
	Unit string `koanf:"unit" json:"unit,omitempty"`
	// UnitFile is an optional path to the unit file. It's only read for
	// failure diagnostics.
	UnitFile string `koanf:"unit_file" json:"unit_file,omitempty"`
}

func (s Service) validate() []error {
	var errs []error
	if s.Unit == "" {
		errs = append(errs, errors.New("unit: cannot be empty"))
	}
	if strings.ContainsAny(s.Unit, " /") {
		errs = append(errs, fmt.Errorf("unit: invalid unit name %q", s.Unit))
	}
	return errs
}

var serviceDefault = Service{
	Unit: "hpd-pricing.service",
}

type Health struct {
	URL            string        `koanf:"url" json:"url,omitempty"`
	RequestTimeout time.Duration `koanf:"request_timeout" json:"request_timeout,omitempty"`
	ReadinessKey   string        `koanf:"readiness_key" json:"readiness_key,omitempty"`
	ReadinessValue string        `koanf:"readiness_value" json:"readiness_value,omitempty"`
}

func (h Health) validate() []error {
	var errs []error
	if h.URL == "" {
		errs = append(errs, errors.New("url: cannot be empty"))
	} else if u, err := url.Parse(h.URL); err != nil {
		errs = append(errs, fmt.Errorf("url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("url: unsupported scheme %q", u.Scheme))
	}
	if h.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout: must be positive"))
	}
	if h.ReadinessKey == "" {
		errs = append(errs, errors.New("readiness_key: cannot be empty"))
	}
	if h.ReadinessValue == "" {
		errs = append(errs, errors.New("readiness_value: cannot be empty"))
	}
	return errs
}

var healthDefault = Health{
	URL:            "http://127.0.0.1:8000/health",
	RequestTimeout: 5 * time.Second,
	ReadinessKey:   "status",
	ReadinessValue: "ok",
}

type Retry struct {
	MaxAttempts int           `koanf:"max_attempts" json:"max_attempts,omitempty"`
	Interval    time.Duration `koanf:"interval" json:"interval,omitempty"`
}

func (r Retry) validate() []error {
	var errs []error
	if r.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts: must be at least 1, got %d", r.MaxAttempts))
	}
	if r.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval: cannot be negative, got %s", r.Interval))
	}
	return errs
}

var retryDefault = Retry{
	MaxAttempts: 30,
	Interval:    2 * time.Second,
}

type ProbeMethod string

const (
	ProbeMethodAuto      ProbeMethod = "auto"
	ProbeMethodDBus      ProbeMethod = "dbus"
	ProbeMethodSystemctl ProbeMethod = "systemctl"
	ProbeMethodNone      ProbeMethod = "none"
)

type Probe struct {
	Method ProbeMethod `koanf:"method" json:"method,omitempty"`
}

func (p Probe) validate() []error {
	valid := []ProbeMethod{ProbeMethodAuto, ProbeMethodDBus, ProbeMethodSystemctl, ProbeMethodNone}
	if !slices.Contains(valid, p.Method) {
		return []error{fmt.Errorf("method: unsupported probe method %q", p.Method)}
	}
	return nil
}

type FetcherMethod string

const (
	FetcherMethodAuto    FetcherMethod = "auto"
	FetcherMethodHTTP    FetcherMethod = "http"
	FetcherMethodCurl    FetcherMethod = "curl"
	FetcherMethodWget    FetcherMethod = "wget"
	FetcherMethodCommand FetcherMethod = "command"
)

type Fetcher struct {
	Method FetcherMethod `koanf:"method" json:"method,omitempty"`
}

func (f Fetcher) validate() []error {
	valid := []FetcherMethod{
		FetcherMethodAuto,
		FetcherMethodHTTP,
		FetcherMethodCurl,
		FetcherMethodWget,
		FetcherMethodCommand,
	}
	if !slices.Contains(valid, f.Method) {
		return []error{fmt.Errorf("method: unsupported fetcher method %q", f.Method)}
	}
	return nil
}

type Logs struct {
	Enabled bool `koanf:"enabled" json:"enabled,omitempty"`
	Lines   int  `koanf:"lines" json:"lines,omitempty"`
}

func (l Logs) validate() []error {
	if !l.Enabled {
		return nil
	}
	if l.Lines < 1 {
		return []error{fmt.Errorf("lines: must be at least 1, got %d", l.Lines)}
	}
	return nil
}

var logsDefault = Logs{
	Enabled: true,
	Lines:   200,
}

type Diagnostics struct {
	Host bool `koanf:"host" json:"host,omitempty"`
}

var diagnosticsDefault = Diagnostics{
	Host: true,
}

type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

type Output struct {
	Format     OutputFormat `koanf:"format" json:"format,omitempty"`
	ResultFile string       `koanf:"result_file" json:"result_file,omitempty"`
}

func (o Output) validate() []error {
	valid := []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatYAML}
	if !slices.Contains(valid, o.Format) {
		return []error{fmt.Errorf("format: unsupported output format %q", o.Format)}
	}
	return nil
}

var outputDefault = Output{
	Format: OutputFormatText,
}

type Watch struct {
	Every time.Duration `koanf:"every" json:"every,omitempty"`
}

func (w Watch) validate() []error {
	if w.Every < time.Second {
		return []error{fmt.Errorf("every: must be at least 1s, got %s", w.Every)}
	}
	return nil
}

var watchDefault = Watch{
	Every: 5 * time.Minute,
}

type MQTT struct {
	Enabled   bool   `koanf:"enabled" json:"enabled,omitempty"`
	BrokerURL string `koanf:"broker_url" json:"broker_url,omitempty"`
	Topic     string `koanf:"topic" json:"topic,omitempty"`
	ClientID  string `koanf:"client_id" json:"client_id,omitempty"`
	Username  string `koanf:"username" json:"username,omitempty"`
	Password  string `koanf:"password" json:"password,omitempty"`
}

func (m MQTT) validate() []error {
	if !m.Enabled {
		return nil
	}
	var errs []error
	if m.BrokerURL == "" {
		errs = append(errs, errors.New("broker_url: cannot be empty"))
	}
	if m.Topic == "" {
		errs = append(errs, errors.New("topic: cannot be empty"))
	}
	return errs
}

type Config struct {
	Service     Service     `koanf:"service" json:"service,omitzero"`
	Health      Health      `koanf:"health" json:"health,omitzero"`
	Retry       Retry       `koanf:"retry" json:"retry,omitzero"`
	Probe       Probe       `koanf:"probe" json:"probe,omitzero"`
	Fetcher     Fetcher     `koanf:"fetcher" json:"fetcher,omitzero"`
	Logs        Logs        `koanf:"logs" json:"logs,omitzero"`
	Diagnostics Diagnostics `koanf:"diagnostics" json:"diagnostics,omitzero"`
	Output      Output      `koanf:"output" json:"output,omitzero"`
	Watch       Watch       `koanf:"watch" json:"watch,omitzero"`
	MQTT        MQTT        `koanf:"mqtt" json:"mqtt,omitzero"`
	Logging     Logging     `koanf:"logging" json:"logging,omitzero"`
}

func (c Config) Validate() error {
	var errs []error
	for _, err := range c.Service.validate() {
		errs = append(errs, fmt.Errorf("service.%w", err))
	}
	for _, err := range c.Health.validate() {
		errs = append(errs, fmt.Errorf("health.%w", err))
	}
	for _, err := range c.Retry.validate() {
		errs = append(errs, fmt.Errorf("retry.%w", err))
	}
	for _, err := range c.Probe.validate() {
		errs = append(errs, fmt.Errorf("probe.%w", err))
	}
	for _, err := range c.Fetcher.validate() {
		errs = append(errs, fmt.Errorf("fetcher.%w", err))
	}
	for _, err := range c.Logs.validate() {
		errs = append(errs, fmt.Errorf("logs.%w", err))
	}
	for _, err := range c.Output.validate() {
		errs = append(errs, fmt.Errorf("output.%w", err))
	}
	for _, err := range c.Watch.validate() {
		errs = append(errs, fmt.Errorf("watch.%w", err))
	}
	for _, err := range c.MQTT.validate() {
		errs = append(errs, fmt.Errorf("mqtt.%w", err))
	}
	for _, err := range c.Logging.validate() {
		errs = append(errs, fmt.Errorf("logging.%w", err))
	}
	return errors.Join(errs...)
}

func DefaultConfig() Config {
	return Config{
		Service:     serviceDefault,
		Health:      healthDefault,
		Retry:       retryDefault,
		Probe:       Probe{Method: ProbeMethodAuto},
		Fetcher:     Fetcher{Method: FetcherMethodAuto},
		Logs:        logsDefault,
		Diagnostics: diagnosticsDefault,
		Output:      outputDefault,
		Watch:       watchDefault,
		Logging:     loggingDefault,
	}
}
