// Package influxdb records numeric observation values and firmware
// transitions as time series.
//
// It wraps influxdb-client-go v2 with a non-blocking, batched write API.
// Batch size and flush interval come from the influxdb config section.
//
// Usage:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteObservation("12345", "rssi", "health", -55, time.Now())
package influxdb
