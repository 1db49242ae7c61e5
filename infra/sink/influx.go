package sink

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coresink "github.com/kilianp07/batteryform/core/sink"
	"github.com/kilianp07/batteryform/infra/logger"
)

// Measurement is the InfluxDB measurement written by InfluxSink.
const Measurement = "battery_form_submission"

// InfluxConfig configures the InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes submissions to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coresink.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coresink.NopSink{}
	}
	return sink
}

// Point converts a submission into its line protocol point.
func Point(sub coresink.Submission) *write.Point {
	return write.NewPointWithMeasurement(Measurement).
		AddTag("battery_type", sub.BatteryType()).
		AddTag("session_id", sub.SessionID).
		AddField("submission_id", sub.ID).
		AddField("virtual_battery", sub.VirtualBattery).
		AddField("physical_battery", sub.PhysicalBattery).
		AddField("solar_panels", sub.SolarPanels).
		SetTime(sub.Time)
}

// Emit writes the submission point.
func (s *InfluxSink) Emit(ctx context.Context, sub coresink.Submission) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, Point(sub))
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
