// Package mqtt mirrors simulator activity onto an MQTT broker.
//
// The mirror is export only: every device snapshot and activity entry the
// Registry produces is published, and nothing received from the broker ever
// changes a device. It is disabled unless mqtt.enabled is set.
//
// # Topics
//
//	{prefix}/devices/{id}     retained device snapshot (empty payload on removal)
//	{prefix}/activity         activity entries, not retained
//	{prefix}/system/status    retained online/offline status with LWT
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	mirror := mqtt.NewMirror(client, mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}, byte(cfg.MQTT.QoS))
//	registry.AddNotifier(mirror)
//	go mirror.Run(ctx)
package mqtt
