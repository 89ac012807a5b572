// Package publish hands refresh results to the outside world.
//
//   - StatePublisher writes one retained MQTT message per observation to
//     {prefix}/state/{identifier} and clears the topic when the observation
//     is removed.
//   - MetricWriter writes numeric observation values and firmware
//     transitions to InfluxDB.
//   - FirmwareNotifier announces each firmware transition on
//     {prefix}/event/firmware.
//
// Each component depends on a narrow interface over the infrastructure
// client, so tests substitute recorders.
package publish
