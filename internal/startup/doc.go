// Package startup handles configuration loading, build information and
// startup/shutdown logging.
//
// # Configuration
//
// Configuration is read with viper from, in increasing priority:
//
//   - built-in defaults
//   - autotagger.yaml (or .toml/.json) in the user config directory
//     (for example ~/.config/autotagger) or the working directory
//   - AUTOTAGGER_* environment variables (nested keys use underscores,
//     so exiftool.path is AUTOTAGGER_EXIFTOOL_PATH)
//   - command line flags bound by the CLI
//
// Supported keys:
//
//   - log_level: debug, info, warn or error (default: from LOG_LEVEL/DEBUG)
//   - workers: metadata extraction pool size, 0 for automatic (default: 4)
//   - database_name: library file created in each scanned folder (default: photo_library.db)
//   - exiftool.enabled: use exiftool as the secondary reader (default: true)
//   - exiftool.path: exiftool binary, empty to search PATH
//   - listen: HTTP control address for "autotagger serve" (default: :8080)
//   - metrics_enabled: expose /metrics (default: true)
//   - log_health_checks: log /health and /livez requests (default: false)
//
// # Build Information
//
// Version, Commit and BuildTime are set at build time:
//
//	go build -ldflags "-X autotagger/internal/startup.Version=1.0.0 \
//	  -X autotagger/internal/startup.Commit=$(git rev-parse --short HEAD) \
//	  -X autotagger/internal/startup.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package startup
