// Package config defines the runtime options consumed by the OpenPatrol
// resource-management core.
//
// Options are deliberately small: they scope a policy evaluation (region,
// account) and configure the injectable capabilities (cache, worker pool).
// Policy documents themselves are not loaded here; only the engine's own
// settings are.
//
// Configuration is read from YAML, validated with go-playground/validator
// struct tags, and can optionally be watched for changes with fsnotify:
//
//	cfg, err := config.Load("patrol.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stop, err := config.Watch("patrol.yaml", func(next *config.Config) {
//	    // swap options atomically
//	})
//	defer stop()
package config
