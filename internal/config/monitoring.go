package config

import "time"

// MonitoringConfig holds reachability check settings for the ping command and the
// /health route on the metrics listener
type MonitoringConfig struct {
	HealthCheckTimeout time.Duration `env:"HEALTH_CHECK_TIMEOUT" yaml:"health_check_timeout" default:"5s"`
}
