// Package mqtt provides the broker connection ringext uses for both input
// and output.
//
// Device snapshots arrive as retained fragments on
// {prefix}/device/{id}/{attributes|health|alerts}. Derived observation
// values are published retained on {prefix}/state/{identifier} and firmware
// transitions on {prefix}/event/firmware. The client registers an offline
// LWT on {prefix}/system/status.
//
// Usage:
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.Subscribe(topics.AllDeviceFragments(), 1,
//	    func(topic string, payload []byte) error {
//	        return cache.HandleMessage(topic, payload)
//	    })
package mqtt
