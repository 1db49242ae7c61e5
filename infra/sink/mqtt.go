package sink

import (
	"context"
	"encoding/json"
	"strings"

	coresink "github.com/kilianp07/batteryform/core/sink"
	"github.com/kilianp07/batteryform/infra/mqtt"
)

// DefaultTopic receives submissions when no topic is configured.
const DefaultTopic = "batteryform/submissions"

// MQTTConfig configures the MQTT sink. The connection settings are inlined.
type MQTTConfig struct {
	mqtt.Config `json:",squash"`
	// Topic may contain {battery}, replaced by virtual, physical or none.
	Topic string `json:"topic"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Disconnect()
}

// MQTTSink publishes each submission as JSON.
type MQTTSink struct {
	pub   publisher
	topic string
}

// NewMQTTSink connects to the broker described by cfg.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	cli, err := mqtt.NewPahoClient(cfg.Config)
	if err != nil {
		return nil, err
	}
	return newMQTTSink(cli, cfg.Topic), nil
}

func newMQTTSink(pub publisher, topic string) *MQTTSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTSink{pub: pub, topic: topic}
}

// Emit publishes the submission.
func (s *MQTTSink) Emit(ctx context.Context, sub coresink.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	topic := strings.ReplaceAll(s.topic, "{battery}", sub.BatteryType())
	return s.pub.Publish(ctx, topic, payload)
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.pub.Disconnect()
	return nil
}
