// Package config provides the vscreen configuration.
//
// Settings come from four sources, later ones overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  4. Command-line flags      │  ← Highest priority (LoadOptions.Overrides)
//	├─────────────────────────────┤
//	│  3. VSCREEN_* environment   │
//	├─────────────────────────────┤
//	│  2. Config file             │  ← TOML (.toml) or YAML (.yaml, .yml)
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment loaders producing generic maps
//   - watcher: fsnotify-based file watching for live reload
//   - notify: change fan-out to subscribers
//
// # Basic Usage
//
//	cfg, err := config.Load(config.LoadOptions{Path: "vscreen.toml"})
//	if err != nil {
//	    return err
//	}
//
// # Live Reload
//
//	m, err := config.NewManager(config.LoadOptions{Path: path})
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	m.SubscribePath("display", func(c notify.Change) {
//	    log.Info("%s: %v -> %v", c.Path, c.OldValue, c.NewValue)
//	})
//	if err := m.Watch(); err != nil {
//	    return err
//	}
//
// # Environment Variables
//
// VSCREEN_SECTION_KEY maps to section.key, so VSCREEN_DISPLAY_TICK_RATE=30
// sets display.tick_rate. A few short aliases exist: VSCREEN_LOG_LEVEL,
// VSCREEN_LOG_FILE, VSCREEN_BACKEND, VSCREEN_CHARMAP, VSCREEN_STRICT,
// VSCREEN_DEBUG_LAYERS and VSCREEN_SNAPSHOT_DIR.
package config
