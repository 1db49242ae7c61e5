// Package mqtt wraps the Eclipse Paho client used to publish form
// submissions. Publishing retries with exponential backoff and reports the
// final failure to the error monitor.
package mqtt
