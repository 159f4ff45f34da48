// Package config loads the simulator configuration.
//
// Values come from three layers, later ones winning: built-in defaults, the
// YAML file, then HOMESIM_* environment variables. Validate reports every
// problem at once rather than stopping at the first.
//
// Broker passwords and the InfluxDB token are best supplied through the
// environment so the file can be committed.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
package config
