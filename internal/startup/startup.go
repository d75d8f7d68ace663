package startup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"autotagger/internal/database"
	"autotagger/internal/logging"
	"autotagger/internal/workers"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Configuration keys
const (
	KeyLogLevel        = "log_level"
	KeyWorkers         = "workers"
	KeyDatabaseName    = "database_name"
	KeyExiftoolEnabled = "exiftool.enabled"
	KeyExiftoolPath    = "exiftool.path"
	KeyListen          = "listen"
	KeyMetricsEnabled  = "metrics_enabled"
	KeyLogHealthChecks = "log_health_checks"
)

const (
	configName = "autotagger"
	envPrefix  = "AUTOTAGGER"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// ExiftoolConfig controls the secondary metadata reader.
type ExiftoolConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config holds all application configuration
type Config struct {
	LogLevel        string         `mapstructure:"log_level"`
	Workers         int            `mapstructure:"workers"`
	DatabaseName    string         `mapstructure:"database_name"`
	Exiftool        ExiftoolConfig `mapstructure:"exiftool"`
	Listen          string         `mapstructure:"listen"`
	MetricsEnabled  bool           `mapstructure:"metrics_enabled"`
	LogHealthChecks bool           `mapstructure:"log_health_checks"`

	// ConfigFile is the file the values were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// NewViper returns a viper instance with defaults, config file search paths
// and AUTOTAGGER_* environment binding applied. Callers may bind flags
// before passing it to LoadConfig.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyWorkers, workers.DefaultExtraction)
	v.SetDefault(KeyDatabaseName, database.DefaultFileName)
	v.SetDefault(KeyExiftoolEnabled, true)
	v.SetDefault(KeyExiftoolPath, "")
	v.SetDefault(KeyListen, ":8080")
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyLogHealthChecks, false)

	v.SetConfigName(configName)
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, configName))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads the optional config file and decodes v into a Config.
// A missing config file is not an error; an unreadable or malformed one is.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.LogLevel != "" {
		level, _ := logging.ParseLevel(cfg.LogLevel)
		logging.SetLevel(level)
	}

	return &cfg, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, ok := logging.ParseLevel(c.LogLevel); !ok {
			return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d (want 0 for automatic or a positive count)", c.Workers)
	}
	if strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("database_name must not be empty")
	}
	if filepath.Base(c.DatabaseName) != c.DatabaseName {
		return fmt.Errorf("database_name %q must be a file name, not a path", c.DatabaseName)
	}
	return nil
}

// LogConfig logs the effective configuration.
func LogConfig(cfg *Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if cfg.ConfigFile != "" {
		logging.Info("  Config file:         %s", cfg.ConfigFile)
	} else {
		logging.Info("  Config file:         (none, using defaults and %s_* environment)", envPrefix)
	}
	logging.Info("  workers:             %d (resolved: %d)", cfg.Workers, workers.Extraction(cfg.Workers))
	logging.Info("  database_name:       %s", cfg.DatabaseName)
	logging.Info("  exiftool.enabled:    %v", cfg.Exiftool.Enabled)
	if cfg.Exiftool.Path != "" {
		logging.Info("  exiftool.path:       %s", cfg.Exiftool.Path)
	}
	logging.Info("  listen:              %s", cfg.Listen)
	logging.Info("  metrics_enabled:     %v", cfg.MetricsEnabled)
	logging.Info("  log_health_checks:   %v", cfg.LogHealthChecks)
	logging.Info("  log_level:           %s", logging.GetLevel())
	logging.Info("")
}

// LogExiftoolInit reports whether the exiftool binary can be found.
// It returns false when exiftool is disabled or missing.
func LogExiftoolInit(cfg ExiftoolConfig) bool {
	logging.Info("------------------------------------------------------------")
	logging.Info("METADATA READERS")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] goexif (primary)")

	if !cfg.Enabled {
		logging.Info("  exiftool disabled by configuration")
		return false
	}

	if err := checkExiftool(cfg.Path); err != nil {
		logging.Warn("  exiftool check failed: %v", err)
		logging.Warn("  Files without usable EXIF in goexif will fall back to mtime")
		return false
	}
	logging.Info("  [OK] exiftool (secondary)")
	return true
}

// LogReadersReady logs the final reader order.
func LogReadersReady(names []string) {
	logging.Info("  Reader order: %s", strings.Join(names, " -> "))
	logging.Info("")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes at debug level
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set %s_LOG_HEALTH_CHECKS=true to enable)", envPrefix)
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Listen          string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(config ServerConfig) {
	base := "http://" + displayAddr(config.Listen)

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Runs:          %s/api/runs", base)
	logging.Info("    Tags:          %s/api/tags?folder=<path>", base)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       %s/metrics", base)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// displayAddr turns a listen address such as ":8080" into one a browser can use.
func displayAddr(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "localhost" + listen
	}
	return listen
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// PrintBanner prints the startup banner and system information.
func PrintBanner() {
	banner := `
------------------------------------------------------------
    ___         __       ______
   /   | __  __/ /_____ /_  __/___ _____ _____ ____  _____
  / /| |/ / / / __/ __ \ / / / __ '/ __ '/ __ '/ _ \/ ___/
 / ___ / /_/ / /_/ /_/ // / / /_/ / /_/ / /_/ /  __/ /
/_/  |_\__,_/\__/\____//_/  \__,_/\__, /\__, /\___/_/
                                 /____//____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
	logSystemInfo()
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
	}

	logging.Info("")
}

func checkExiftool(binaryPath string) error {
	name := binaryPath
	if name == "" {
		name = "exiftool"
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found", name)
	}
	logging.Debug("  exiftool path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-ver").Output()
	if err != nil {
		return fmt.Errorf("failed to get exiftool version: %w", err)
	}
	logging.Debug("  exiftool version: %s", strings.TrimSpace(string(output)))

	return nil
}
