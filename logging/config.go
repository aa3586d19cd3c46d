package logging

import "time"

// Config tunes the Router: which named sinks actually run, how much they
// buffer, the severity floor below which events are discarded, and which
// event types are exempt from that floor.
type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration

	// AlwaysEmit names event types that bypass MinimumSeverity entirely.
	// DefaultConfig lists the desync event, so it reaches a sink even when
	// an operator has turned the floor up to quiet routine tick noise.
	AlwaysEmit map[EventType]bool
}

type JSONConfig struct {
	FilePath      string
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	UseColor bool
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FlushInterval: 2 * time.Second,
		},
		AlwaysEmit: map[EventType]bool{
			"lockstep.desync_detected": true,
		},
	}
}

// HasSink reports whether name is in EnabledSinks. An empty EnabledSinks
// list means "run whatever NamedSinks the caller supplied," matching
// NewRouter's behavior when no filter is configured.
func (c Config) HasSink(name string) bool {
	if len(c.EnabledSinks) == 0 {
		return true
	}
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

// Bypasses reports whether t is exempt from MinimumSeverity filtering.
func (c Config) Bypasses(t EventType) bool {
	return c.AlwaysEmit[t]
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
