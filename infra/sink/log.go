package sink

import (
	"context"

	corelogger "github.com/kilianp07/batteryform/core/logger"
	coresink "github.com/kilianp07/batteryform/core/sink"
	"github.com/kilianp07/batteryform/infra/logger"
)

// SubmittedMessage prefixes every logged submission.
const SubmittedMessage = "Formulaire soumis:"

// LogSink writes each submission as a structured log line.
type LogSink struct {
	log corelogger.FieldLogger
}

// NewLogSink returns a LogSink writing through log. A nil logger uses the
// "submissions" zerolog component.
func NewLogSink(log corelogger.FieldLogger) *LogSink {
	if log == nil {
		log = logger.New("submissions")
	}
	return &LogSink{log: log}
}

// Emit logs the submission.
func (s *LogSink) Emit(_ context.Context, sub coresink.Submission) error {
	s.log.Infow(SubmittedMessage, map[string]any{
		"submission_id":   sub.ID,
		"session_id":      sub.SessionID,
		"virtualBattery":  sub.VirtualBattery,
		"physicalBattery": sub.PhysicalBattery,
		"solarPanels":     sub.SolarPanels,
	})
	return nil
}

func (s *LogSink) Close() error { return nil }
