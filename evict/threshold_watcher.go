// threshold_watcher.go: hot-reloading the heap threshold percentage
// (spec.md §9 "global mutable state... realise as an explicit dependency
// injected at construction").
//
// Grounded on reference/teacher/hot-reload.go's argus.Watcher wiring:
// the same argus.UniversalConfigWatcherWithConfig + argus.Config{PollInterval}
// pattern, narrowed to the single tunable this map exposes for hot reload.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package evict

import (
	"time"

	"github.com/agilira/argus"
)

// ThresholdSettable is the narrow, K/V-independent surface a Map[K, V]
// exposes for hot-reloading its threshold, letting ThresholdWatcher stay
// non-generic regardless of which Map instantiation it is wired to.
type ThresholdSettable interface {
	SetThreshold(percent float64)
	Threshold() float64
}

// ThresholdWatcher watches a configuration file for a top-level
// `threshold_percent` key and atomically updates the eviction
// map's threshold fraction when it changes, without requiring map
// reconstruction.
type ThresholdWatcher struct {
	watcher   *argus.Watcher
	target    ThresholdSettable
	onReload  func(oldPercent, newPercent float64)
}

// ThresholdWatcherOptions configures a ThresholdWatcher.
type ThresholdWatcherOptions struct {
	// ConfigPath is the file to watch. Required.
	ConfigPath string

	// PollInterval is how often to check for changes. Default: 1s,
	// clamped to a 100ms minimum, matching the teacher's hot-reload.
	PollInterval time.Duration

	// OnReload is called after a successful threshold update.
	OnReload func(oldPercent, newPercent float64)
}

// NewThresholdWatcher starts watching opts.ConfigPath for top-level
// threshold_percent changes, applying them to target's threshold.
func NewThresholdWatcher(target ThresholdSettable, opts ThresholdWatcherOptions) (*ThresholdWatcher, error) {
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	tw := &ThresholdWatcher{
		target:   target,
		onReload: opts.OnReload,
	}

	argusConfig := argus.Config{PollInterval: opts.PollInterval}
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, tw.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	tw.watcher = watcher
	return tw, nil
}

// Start begins watching the configuration file.
func (tw *ThresholdWatcher) Start() error {
	if tw.watcher.IsRunning() {
		return nil
	}
	return tw.watcher.Start()
}

// Stop stops watching the configuration file.
func (tw *ThresholdWatcher) Stop() error {
	return tw.watcher.Stop()
}

func (tw *ThresholdWatcher) handleConfigChange(configData map[string]interface{}) {
	raw, ok := configData["threshold_percent"]
	if !ok {
		return
	}

	var newPercent float64
	switch v := raw.(type) {
	case float64:
		newPercent = v
	case int:
		newPercent = float64(v)
	default:
		return
	}
	if newPercent <= 0 || newPercent > 1 {
		return
	}

	oldPercent := tw.target.Threshold()
	tw.target.SetThreshold(newPercent)

	if tw.onReload != nil {
		tw.onReload(oldPercent, newPercent)
	}
}
