// Package mqtt announces display status over MQTT.
//
// The announcer publishes the supervisor's status snapshot, retained, to
// ledmatrix/status whenever it changes, so dashboards and other services
// can follow the display without polling the HTTP API. A Last Will and
// Testament marks the service offline if it disconnects unexpectedly.
//
// The announcer is optional: when mqtt.enabled is false the service runs
// without a broker.
package mqtt
