package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/shurlinet/dncp/internal/validate"
	"gopkg.in/yaml.v3"
)

// checkConfigFilePermissions returns an error if a config file has overly
// permissive permissions (any group/world bit set), which makes
// LoadDaemonConfig refuse the file. Config files can carry identity
// material (a pinned node_id) and listen addresses.
func checkConfigFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil // file access errors are handled by the caller
	}
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		return fmt.Errorf("config file %s has overly permissive mode %04o; expected 0600 — fix with: chmod 600 %s", path, mode, path)
	}
	return nil
}

// LoadDaemonConfig loads the dncpd daemon configuration from a YAML file.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if err := checkConfigFilePermissions(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg DaemonConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Default version to 1 for configs written before versioning was added.
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Version > CurrentConfigVersion {
		return nil, fmt.Errorf("%w: version %d is newer than supported version %d; please upgrade dncpd", ErrConfigVersionTooNew, cfg.Version, CurrentConfigVersion)
	}
	if len(cfg.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	return &cfg, nil
}

// Resolved is the daemon config with every duration string parsed and
// every default applied. Building it is kept separate from LoadDaemonConfig
// so that the raw YAML shape stays round-trippable while callers that
// drive pkg/dncp get typed durations.
type Resolved struct {
	NodeID             string
	NodeIDLen          int
	Endpoints          []ResolvedEndpoint
	Imin, Imax         time.Duration
	K                  int
	KeepAliveInterval  time.Duration
	GracePeriod        time.Duration
	ProfileVersion     uint8
	UserAgent          string
	APIListenAddress   string
	MetricsEnabled     bool
	MetricsListenAddr  string
	RouterNameBase     string
	DelegatedPrefix    *net.IPNet
	AssignLength       int
}

// ResolvedEndpoint is one EndpointConfig with its override parsed.
type ResolvedEndpoint struct {
	Interface         string
	KeepAliveInterval time.Duration // zero means "use the daemon default"
}

// Resolve parses every duration string in cfg and applies defaults,
// returning an error if any duration string is malformed.
func Resolve(cfg *DaemonConfig) (*Resolved, error) {
	r := &Resolved{
		NodeID:            cfg.Identity.NodeID,
		NodeIDLen:         cfg.Identity.Length,
		K:                 cfg.Trickle.K,
		ProfileVersion:    uint8(cfg.Profile.Version),
		UserAgent:         cfg.Profile.UserAgent,
		APIListenAddress:  cfg.API.ListenAddress,
		MetricsEnabled:    cfg.Telemetry.Metrics.Enabled,
		MetricsListenAddr: cfg.Telemetry.Metrics.ListenAddress,
		RouterNameBase:    cfg.DNS.RouterNameBase,
		AssignLength:      cfg.Prefix.AssignLength,
	}
	if r.NodeIDLen == 0 {
		r.NodeIDLen = 4
	}
	if r.APIListenAddress == "" {
		r.APIListenAddress = "127.0.0.1:8808"
	}
	if r.MetricsListenAddr == "" {
		r.MetricsListenAddr = "127.0.0.1:9091"
	}
	if r.RouterNameBase == "" {
		r.RouterNameBase = "r"
	} else if err := validate.RouterNameBase(r.RouterNameBase); err != nil {
		return nil, fmt.Errorf("dns.router_name_base: %w", err)
	}
	if r.AssignLength == 0 {
		r.AssignLength = 64
	}
	if cfg.Prefix.Delegated != "" {
		_, p, err := net.ParseCIDR(cfg.Prefix.Delegated)
		if err != nil {
			return nil, fmt.Errorf("prefix.delegated: %w", err)
		}
		r.DelegatedPrefix = p
	}

	var err error
	if r.Imin, err = parseDurationOrZero(cfg.Trickle.Imin); err != nil {
		return nil, fmt.Errorf("trickle.imin: %w", err)
	}
	if r.Imax, err = parseDurationOrZero(cfg.Trickle.Imax); err != nil {
		return nil, fmt.Errorf("trickle.imax: %w", err)
	}
	if r.KeepAliveInterval, err = parseDurationOrZero(cfg.KeepAlive.Interval); err != nil {
		return nil, fmt.Errorf("keepalive.interval: %w", err)
	}
	if r.GracePeriod, err = parseDurationOrZero(cfg.KeepAlive.GracePeriod); err != nil {
		return nil, fmt.Errorf("keepalive.grace_period: %w", err)
	}

	r.Endpoints = make([]ResolvedEndpoint, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		if err := validate.InterfaceName(ep.Interface); err != nil {
			return nil, fmt.Errorf("endpoints[%d].interface: %w", i, err)
		}
		d, err := parseDurationOrZero(ep.KeepAliveInterval)
		if err != nil {
			return nil, fmt.Errorf("endpoints[%d].keepalive_interval: %w", i, err)
		}
		r.Endpoints[i] = ResolvedEndpoint{Interface: ep.Interface, KeepAliveInterval: d}
	}
	return r, nil
}

func parseDurationOrZero(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// FindConfigFile searches for a dncpd config file in standard locations.
// Search order: explicitPath (if given), ./dncpd.yaml,
// ~/.config/dncpd/config.yaml, /etc/dncpd/config.yaml.
func FindConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicitPath)
		}
		return explicitPath, nil
	}

	searchPaths := []string{"dncpd.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "dncpd", "config.yaml"))
	}
	searchPaths = append(searchPaths, filepath.Join("/etc", "dncpd", "config.yaml"))

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w; searched %v", ErrConfigNotFound, searchPaths)
}

// DefaultConfigDir returns the default dncpd config directory
// (~/.config/dncpd).
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "dncpd"), nil
}
