// Package ioprovider is the poll-based UDP/TCP/clock abstraction every
// networking component in the core is parametric over (spec.md §4.1,
// §9 "Trait/interface over async"). It is modeled directly on the
// teacher's internal/lidar/network.UDPSocket / UDPSocketFactory split
// (_examples/banshee-data-velocity.report/internal/lidar/network/
// udp_interface.go): a real implementation backed by *net.UDPConn plus a
// mock implementation for deterministic tests, with the same
// "never block, report would-block as a distinguishable result" contract
// the core's poll loop depends on.
//
// Every method here is synchronous and non-blocking except TCP Connect,
// which spec.md §5 permits as the one bounded (≤5s) blocking call in the
// whole core.
package ioprovider

import "time"

// IoError is the single error type the core distinguishes from "would
// block" (spec.md §4.1, §7). Code is a short machine-stable tag
// ("bind-failed", "send-failed", "join-failed", "connect-timeout", …);
// Message is human-readable detail for the debug log.
type IoError struct {
	Code    string
	Message string
}

func (e *IoError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func NewIoError(code, message string) *IoError {
	return &IoError{Code: code, Message: message}
}

// UDPSocket is a single non-blocking UDP endpoint, already bound and
// optionally joined to one or more multicast groups.
type UDPSocket interface {
	// SendTo writes data to addr:port. MUST NOT block; a partial send is
	// reported as an error rather than silently truncating.
	SendTo(data []byte, addr string, port int) (int, error)

	// RecvFrom attempts to read one datagram into buf without blocking.
	// ok is false when no datagram was ready (the would-block case);
	// err is non-nil only on a genuine socket failure.
	RecvFrom(buf []byte) (n int, srcAddr string, srcPort int, ok bool, err error)

	// SetBroadcast enables/disables SO_BROADCAST on the socket.
	SetBroadcast(enable bool) error

	// JoinMulticast joins the socket to a multicast group on the named
	// interface (empty iface = default route interface).
	JoinMulticast(group string, iface string) error

	// LocalPort reports the bound local port (0 if not yet bound).
	LocalPort() int

	Close() error
}

// UDPProvider creates UDP sockets. Separated from IoProvider so tests can
// substitute a MockUDPProvider without touching TCP/Clock.
type UDPProvider interface {
	// Bind creates a UDP socket bound to the given local port (0 = any
	// ephemeral port) ready for SendTo/RecvFrom.
	Bind(port int) (UDPSocket, error)
}

// TCPConn is a single non-blocking-after-connect TCP session.
type TCPConn interface {
	// Connect is the one permitted blocking call in the core (spec.md
	// §5): a bounded (≤5s) dial. Callers treat it as a single atomic
	// step, never interleaved with poll.
	Connect(addr string, port int, timeout time.Duration) error

	IsConnected() bool

	// Send writes data to the connection. Non-blocking; a partial write
	// is reported as an error.
	Send(data []byte) (int, error)

	// RecvLine returns the next CR/LF-delimited line accumulated from an
	// internal buffer fed by the socket, or ok=false if no complete line
	// is available yet (would-block case, never an error).
	RecvLine() (line string, ok bool, err error)

	// RecvRaw reads whatever bytes are immediately available into buf,
	// without waiting for a delimiter. ok=false means nothing was ready.
	RecvRaw(buf []byte) (n int, ok bool, err error)

	Close() error
}

// TCPProvider creates TCP connections.
type TCPProvider interface {
	NewTCP() TCPConn
}

// Clock is the core's only source of time; monotonic milliseconds.
type Clock interface {
	NowMs() int64
}

// Logger is the single debug-log sink (spec.md §4.1). Re-exported here so
// callers that only import ioprovider don't need a second import for the
// IoProvider's embedded logging method; see corelog.Logger for the
// canonical definition.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// IoProvider aggregates everything a controller, locator or spoke
// receiver needs: UDP and TCP socket factories, a clock, and a log sink.
// The runtime supplies exactly one implementation (Real, or a host-shim
// for a restricted/WASM embedding); the core never constructs sockets any
// other way.
type IoProvider interface {
	UDPProvider
	TCPProvider
	Clock
	Logger
}
