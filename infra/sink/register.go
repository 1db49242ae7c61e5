package sink

import (
	"github.com/kilianp07/batteryform/core/factory"
	coresink "github.com/kilianp07/batteryform/core/sink"
)

func init() {
	coresink.MustRegister("log", func(map[string]any) (coresink.Sink, error) {
		return NewLogSink(nil), nil
	})
	coresink.MustRegister("jsonl", func(conf map[string]any) (coresink.Sink, error) {
		var c JSONLConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLSink(c)
	})
	coresink.MustRegister("sqlite", func(conf map[string]any) (coresink.Sink, error) {
		var c SQLiteConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteSink(c)
	})
	coresink.MustRegister("mqtt", func(conf map[string]any) (coresink.Sink, error) {
		var c MQTTConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMQTTSink(c)
	})
	coresink.MustRegister("influx", func(conf map[string]any) (coresink.Sink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
