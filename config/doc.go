// Package config provides configuration management for streampump.
//
// Configuration is read from JSON or YAML files. Files are layered on top of
// built-in defaults, then STREAMPUMP_* environment variables are applied.
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/base.yml")
//	loader.AddLayer("configs/production.json") // Overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Defaults
//
//	segment_builder:
//	  path: ./etc/processors/*
//	pipelines:
//	  - id: main
//	    sink: stdout
//	metrics:
//	  enabled: false
//	  port: 9090
//	  path: /metrics
//
// # Thread-Safe Access
//
// SafeConfig wraps a Config with an RWMutex and hands out deep copies.
package config
