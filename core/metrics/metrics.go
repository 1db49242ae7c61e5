package metrics

// Recorder records form interactions for observability purposes.
type Recorder interface {
	// RecordEvent counts one applied event by name.
	RecordEvent(name string)
	// RecordSubmission counts a submit attempt and its outcome.
	RecordSubmission(accepted bool)
	// RecordSinkError counts a failed payload emission.
	RecordSinkError()
}

// SessionRecorder tracks the number of live form sessions.
type SessionRecorder interface {
	SetActiveSessions(n int)
}

// Config defines settings for metrics exposition.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	Path              string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

// NopRecorder discards every record.
type NopRecorder struct{}

func (NopRecorder) RecordEvent(string)    {}
func (NopRecorder) RecordSubmission(bool) {}
func (NopRecorder) RecordSinkError()      {}
func (NopRecorder) SetActiveSessions(int) {}
