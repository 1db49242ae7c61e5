// Package metrics defines the Recorder used to observe form activity.
// The Prometheus implementation lives in infra/metrics.
package metrics
