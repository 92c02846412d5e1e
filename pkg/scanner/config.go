package scanner

import (
	"net"
	"net/netip"
	"time"

	"github.com/projectdiscovery/arpscan/pkg/frame"
	"github.com/projectdiscovery/arpscan/pkg/netif"
)

const (
	// DefaultRetries is the number of requests sent to each target
	DefaultRetries = 1
	// DefaultTimeout is how long a target's last request waits for a reply
	DefaultTimeout = 2 * time.Second
	// DefaultInterval is the delay between two requests when no bandwidth is set
	DefaultInterval = 10 * time.Millisecond
	// DefaultRetryDelay is the minimum delay before a target is probed again
	DefaultRetryDelay = time.Second
	// MaxTimeout bounds the reply window
	MaxTimeout = 5 * time.Hour
)

// Config holds the settings of a single scan. Build it with NewConfig and
// treat it as read-only afterwards; the scanner keeps its own copy.
type Config struct {
	Interface netif.Interface

	// Network is the scanned IPv4 network. Defaults to the first network
	// attached to the interface.
	Network netip.Prefix

	SourceMAC      net.HardwareAddr
	DestinationMAC net.HardwareAddr
	SourceIP       netip.Addr
	VLAN           *frame.VLANTag

	HardwareType uint16
	ProtocolType uint16
	HardwareLen  uint8
	ProtocolLen  uint8
	Opcode       uint16

	Retries    int
	Timeout    time.Duration
	RetryDelay time.Duration

	// Interval and Bandwidth (bits per second) are mutually exclusive
	Interval  time.Duration
	Bandwidth uint64

	Randomize bool
	Seed      int64
	Numeric   bool
}

// Option configures a Config
type Option func(*Config)

// WithNetwork scans network instead of the interface network
func WithNetwork(network netip.Prefix) Option {
	return func(c *Config) { c.Network = network }
}

// WithSourceMAC overrides the interface hardware address in requests
func WithSourceMAC(mac net.HardwareAddr) Option {
	return func(c *Config) { c.SourceMAC = mac }
}

// WithDestinationMAC overrides the broadcast destination of requests
func WithDestinationMAC(mac net.HardwareAddr) Option {
	return func(c *Config) { c.DestinationMAC = mac }
}

// WithSourceIP overrides the sender protocol address of requests
func WithSourceIP(ip netip.Addr) Option {
	return func(c *Config) { c.SourceIP = ip }
}

// WithVLAN tags requests with the given VLAN identifier
func WithVLAN(id uint16) Option {
	return func(c *Config) {
		c.VLAN = &frame.VLANTag{Priority: frame.DefaultVLANPriority, ID: id}
	}
}

// WithHardwareType overrides the ARP hardware type
func WithHardwareType(v uint16) Option {
	return func(c *Config) { c.HardwareType = v }
}

// WithProtocolType overrides the ARP protocol type
func WithProtocolType(v uint16) Option {
	return func(c *Config) { c.ProtocolType = v }
}

// WithHardwareLen overrides the ARP hardware address length field
func WithHardwareLen(v uint8) Option {
	return func(c *Config) { c.HardwareLen = v }
}

// WithProtocolLen overrides the ARP protocol address length field
func WithProtocolLen(v uint8) Option {
	return func(c *Config) { c.ProtocolLen = v }
}

// WithOpcode overrides the ARP operation of requests
func WithOpcode(v uint16) Option {
	return func(c *Config) { c.Opcode = v }
}

// WithRetries sets the number of requests sent to each target
func WithRetries(n int) Option {
	return func(c *Config) { c.Retries = n }
}

// WithTimeout sets the reply window after a target's last request
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetryDelay sets the minimum delay between two requests to one target
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) { c.RetryDelay = d }
}

// WithInterval paces requests by a fixed delay
func WithInterval(d time.Duration) Option {
	return func(c *Config) { c.Interval = d }
}

// WithBandwidth paces requests to stay under bitsPerSecond
func WithBandwidth(bitsPerSecond uint64) Option {
	return func(c *Config) { c.Bandwidth = bitsPerSecond }
}

// WithRandomize shuffles the target order using seed
func WithRandomize(seed int64) Option {
	return func(c *Config) {
		c.Randomize = true
		c.Seed = seed
	}
}

// WithNumeric disables hostname resolution of results
func WithNumeric() Option {
	return func(c *Config) { c.Numeric = true }
}

// NewConfig returns a validated configuration for a scan on iface.
func NewConfig(iface netif.Interface, opts ...Option) (Config, error) {
	cfg := Config{
		Interface:    iface,
		HardwareType: frame.HardwareTypeEthernet,
		ProtocolType: frame.ProtocolTypeIPv4,
		HardwareLen:  frame.HardwareLenEthernet,
		ProtocolLen:  frame.ProtocolLenIPv4,
		Opcode:       frame.OpRequest,
		Retries:      DefaultRetries,
		Timeout:      DefaultTimeout,
		RetryDelay:   DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Interval > 0 && cfg.Bandwidth > 0 {
		return Config{}, configErrorf("interval", "interval and bandwidth are mutually exclusive")
	}
	if cfg.Interval == 0 && cfg.Bandwidth == 0 {
		cfg.Interval = DefaultInterval
	}

	if !cfg.Network.IsValid() {
		if network, ok := iface.FirstNetwork(); ok {
			cfg.Network = network
		}
	}
	if !cfg.SourceIP.IsValid() {
		if network, ok := iface.FirstNetwork(); ok {
			cfg.SourceIP = network.Addr()
		}
	}
	if cfg.SourceMAC == nil {
		cfg.SourceMAC = iface.MAC
	}
	if cfg.DestinationMAC == nil {
		cfg.DestinationMAC = frame.BroadcastMAC
	}
	if cfg.Network.IsValid() {
		cfg.Network = cfg.Network.Masked()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration. It returns a *ConfigError or an
// *InterfaceError.
func (c *Config) Validate() error {
	if c.Interval > 0 && c.Bandwidth > 0 {
		return configErrorf("interval", "interval and bandwidth are mutually exclusive")
	}
	if c.Interval <= 0 && c.Bandwidth == 0 {
		return configErrorf("interval", "either an interval or a bandwidth is required")
	}
	if c.Retries < 1 {
		return configErrorf("retry", "retry count must be at least 1, got %d", c.Retries)
	}
	if c.Timeout <= 0 {
		return configErrorf("timeout", "timeout must be positive")
	}
	if c.Timeout > MaxTimeout {
		return configErrorf("timeout", "timeout exceeds the limit (maximum %s allowed)", MaxTimeout)
	}
	if c.RetryDelay < 0 {
		return configErrorf("retry-delay", "retry delay must not be negative")
	}
	if c.VLAN != nil && c.VLAN.ID > frame.MaxVLANID {
		return configErrorf("vlan", "VLAN identifier %d out of range (0-%d)", c.VLAN.ID, frame.MaxVLANID)
	}
	if c.DestinationMAC != nil && len(c.DestinationMAC) != 6 {
		return configErrorf("dest-mac", "expected a 6 byte MAC address, got %q", c.DestinationMAC)
	}

	if c.Interface.Name != "" && !c.Interface.Up {
		return &InterfaceError{Interface: c.Interface.Name, Reason: ReasonDown}
	}
	if len(c.SourceMAC) == 0 {
		return &InterfaceError{Interface: c.Interface.Name, Reason: ReasonNoMAC}
	}
	if len(c.SourceMAC) != 6 {
		return configErrorf("source-mac", "expected a 6 byte MAC address, got %q", c.SourceMAC)
	}
	if !c.Network.IsValid() {
		return &InterfaceError{Interface: c.Interface.Name, Reason: ReasonNoNetwork}
	}
	if !c.Network.Addr().Is4() {
		return configErrorf("network", "%s is not an IPv4 network", c.Network)
	}
	if !c.SourceIP.IsValid() {
		return &InterfaceError{Interface: c.Interface.Name, Reason: ReasonNoNetwork}
	}
	if !c.SourceIP.Is4() {
		return configErrorf("source-ip", "%s is not an IPv4 address", c.SourceIP)
	}
	return nil
}

// Template returns the request template derived from the configuration
func (c *Config) Template() frame.Template {
	t := frame.DefaultTemplate(c.SourceMAC, c.SourceIP)
	t.Destination = c.DestinationMAC
	if t.Destination == nil {
		t.Destination = frame.BroadcastMAC
	}
	t.VLAN = c.VLAN
	t.HardwareType = c.HardwareType
	t.ProtocolType = c.ProtocolType
	t.HardwareLen = c.HardwareLen
	t.ProtocolLen = c.ProtocolLen
	t.Operation = c.Opcode
	return t
}

// RequestSize returns the unpadded size of one request frame
func (c *Config) RequestSize() int {
	return frame.RequestSize(c.VLAN != nil)
}
