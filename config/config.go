// Copyright 2026 Ansatz ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package config provides the public API for the declarative Ansatz run
// configuration.
//
// Example:
//
//	cfg, err := config.Load("run.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"github.com/ansatz-ml/ansatz/internal/config"
)

// Config is the recognized configuration surface of one training run.
type Config = config.Config

// Default returns a configuration with sane defaults.
func Default() Config {
	return config.Default()
}

// Load reads a YAML configuration file over the defaults and validates it.
func Load(path string) (Config, error) {
	return config.Load(path)
}
