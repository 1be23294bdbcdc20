package config

// CurrentConfigVersion is the latest configuration schema version.
// Bump this when adding fields that require migration.
const CurrentConfigVersion = 1

// DaemonConfig is the top-level configuration for the dncpd daemon.
type DaemonConfig struct {
	Version   int              `yaml:"version,omitempty"`
	Identity  IdentityConfig   `yaml:"identity,omitempty"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
	Trickle   TrickleConfig    `yaml:"trickle,omitempty"`
	KeepAlive KeepAliveConfig  `yaml:"keepalive,omitempty"`
	Profile   ProfileConfig    `yaml:"profile,omitempty"`
	API       APIConfig        `yaml:"api,omitempty"`
	Telemetry TelemetryConfig  `yaml:"telemetry,omitempty"`
	DNS       DNSConfig        `yaml:"dns,omitempty"`
	Prefix    PrefixConfig     `yaml:"prefix,omitempty"`
}

// DNSConfig configures the DNS_ROUTER_NAME TLV publisher.
type DNSConfig struct {
	// RouterNameBase is the preferred router name. On collision with a
	// peer's name a numeric suffix is appended and republished. Defaults
	// to "r" if empty.
	RouterNameBase string `yaml:"router_name_base,omitempty"`
}

// PrefixConfig configures IPv6 prefix delegation and per-endpoint
// assignment (DELEGATED_PREFIX / ASSIGNED_PREFIX TLVs).
type PrefixConfig struct {
	// Delegated is the CIDR this node is authoritative for, e.g. learned
	// from an out-of-scope DHCPv6-PD client. Leave empty if this node
	// only consumes prefixes delegated by other nodes.
	Delegated string `yaml:"delegated,omitempty"`
	// AssignLength is the prefix length handed to each enabled endpoint.
	// Defaults to 64.
	AssignLength int `yaml:"assign_length,omitempty"`
}

// IdentityConfig pins or seeds the node's own identifier.
type IdentityConfig struct {
	// NodeID is an explicit hex-encoded node identifier. If empty, the
	// daemon derives one from interface hardware addresses at startup.
	NodeID string `yaml:"node_id,omitempty"`
	Length int    `yaml:"length,omitempty"` // default 4
}

// EndpointConfig names one local interface to enable DNCP on.
type EndpointConfig struct {
	Interface string `yaml:"interface"`
	// KeepAliveInterval overrides the daemon-wide default for this endpoint.
	KeepAliveInterval string `yaml:"keepalive_interval,omitempty"`
}

// TrickleConfig overrides the default Trickle timer constants.
type TrickleConfig struct {
	Imin string `yaml:"imin,omitempty"`
	Imax string `yaml:"imax,omitempty"`
	K    int    `yaml:"k,omitempty"`
}

// KeepAliveConfig controls the daemon-wide keep-alive and prune cadence.
type KeepAliveConfig struct {
	Interval    string `yaml:"interval,omitempty"`
	GracePeriod string `yaml:"grace_period,omitempty"`
}

// ProfileConfig configures the profile validator.
type ProfileConfig struct {
	Version   int    `yaml:"version,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`
}

// APIConfig controls the local HTTP status/control API.
type APIConfig struct {
	ListenAddress string `yaml:"listen_address,omitempty"` // default 127.0.0.1:8808
}

// TelemetryConfig holds observability settings. Disabled by default.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// MetricsConfig controls Prometheus metrics exposure.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address,omitempty"` // default 127.0.0.1:9091
}
