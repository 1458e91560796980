package ioprovider

import (
	"fmt"
	"net"
	"time"

	"github.com/banshee-data/radar-core/internal/corelog"
)

// pollDeadline is how far in the future RecvFrom/RecvRaw set the socket's
// read deadline before attempting a read. Setting the deadline to "now"
// would sometimes miss a datagram that arrived a few microseconds earlier
// but hasn't yet been handed to the runtime's scheduler; a short deadline
// gives the read a chance to succeed while still returning well within a
// single poll tick (spec.md poll runs at 10-100Hz, i.e. 10-100ms budget).
const pollDeadline = 500 * time.Microsecond

// realUDPSocket wraps a *net.UDPConn so RecvFrom never blocks, the same
// "set a near-immediate read deadline, translate timeout into would-block"
// technique the teacher's MockUDPSocket.ReadFromUDP stands in for
// (_examples/banshee-data-velocity.report/internal/lidar/network/
// udp_interface.go).
type realUDPSocket struct {
	conn *net.UDPConn
}

// NewRealUDPProvider returns a UDPProvider backed by real OS sockets.
func NewRealUDPProvider() UDPProvider { return realUDPProvider{} }

type realUDPProvider struct{}

func (realUDPProvider) Bind(port int) (UDPSocket, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, NewIoError("bind-failed", err.Error())
	}
	return &realUDPSocket{conn: conn}, nil
}

func (s *realUDPSocket) SendTo(data []byte, addr string, port int) (int, error) {
	raddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", addr, port))
	if err != nil {
		return 0, NewIoError("send-failed", err.Error())
	}
	n, err := s.conn.WriteToUDP(data, raddr)
	if err != nil {
		return n, NewIoError("send-failed", err.Error())
	}
	if n != len(data) {
		return n, NewIoError("send-failed", "partial write")
	}
	return n, nil
}

func (s *realUDPSocket) RecvFrom(buf []byte) (n int, srcAddr string, srcPort int, ok bool, err error) {
	if dlErr := s.conn.SetReadDeadline(time.Now().Add(pollDeadline)); dlErr != nil {
		return 0, "", 0, false, NewIoError("recv-failed", dlErr.Error())
	}
	n, addr, rerr := s.conn.ReadFromUDP(buf)
	if rerr != nil {
		if ne, isNet := rerr.(net.Error); isNet && ne.Timeout() {
			return 0, "", 0, false, nil
		}
		return 0, "", 0, false, NewIoError("recv-failed", rerr.Error())
	}
	return n, addr.IP.String(), addr.Port, true, nil
}

func (s *realUDPSocket) SetBroadcast(enable bool) error {
	// net.UDPConn has no direct SO_BROADCAST setter, so this is a no-op
	// kept for interface symmetry: the socket keeps the OS default for the
	// option. Writes to a broadcast address (the Furuno announce
	// destination) succeed only where the OS accepts them without it.
	return nil
}

func (s *realUDPSocket) JoinMulticast(group string, iface string) error {
	gaddr := net.ParseIP(group)
	if gaddr == nil {
		return NewIoError("join-failed", "invalid multicast address: "+group)
	}
	var ifi *net.Interface
	if iface != "" {
		found, err := net.InterfaceByName(iface)
		if err != nil {
			return NewIoError("join-failed", err.Error())
		}
		ifi = found
	}
	pc := ipv4PacketConnFor(s.conn)
	if err := pc.JoinGroup(ifi, &net.UDPAddr{IP: gaddr}); err != nil {
		return NewIoError("join-failed", err.Error())
	}
	return nil
}

func (s *realUDPSocket) LocalPort() int {
	if s.conn == nil {
		return 0
	}
	if a, ok := s.conn.LocalAddr().(*net.UDPAddr); ok {
		return a.Port
	}
	return 0
}

func (s *realUDPSocket) Close() error {
	return s.conn.Close()
}

// realTCPConn wraps a *net.TCPConn with the core's non-blocking-after-
// connect and CR/LF line-buffering contract, modeled on the teacher's
// RadarPort.Monitor line scanner (_examples/banshee-data-velocity.report/
// radar/serial.go), adapted from a serial port to a TCP socket.
type realTCPConn struct {
	conn      net.Conn
	connected bool
	lineBuf   []byte
}

// NewRealTCPProvider returns a TCPProvider backed by real OS sockets.
func NewRealTCPProvider() TCPProvider { return realTCPProvider{} }

type realTCPProvider struct{}

func (realTCPProvider) NewTCP() TCPConn { return &realTCPConn{} }

func (c *realTCPConn) Connect(addr string, port int, timeout time.Duration) error {
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	conn, err := net.DialTimeout("tcp4", fmt.Sprintf("%s:%d", addr, port), timeout)
	if err != nil {
		return NewIoError("connect-timeout", err.Error())
	}
	c.conn = conn
	c.connected = true
	c.lineBuf = nil
	return nil
}

func (c *realTCPConn) IsConnected() bool { return c.connected }

func (c *realTCPConn) Send(data []byte) (int, error) {
	if !c.connected {
		return 0, NewIoError("send-failed", "not connected")
	}
	n, err := c.conn.Write(data)
	if err != nil {
		c.connected = false
		return n, NewIoError("send-failed", err.Error())
	}
	return n, nil
}

func (c *realTCPConn) fill() error {
	if err := c.conn.SetReadDeadline(time.Now().Add(pollDeadline)); err != nil {
		return NewIoError("recv-failed", err.Error())
	}
	tmp := make([]byte, 4096)
	n, err := c.conn.Read(tmp)
	if n > 0 {
		c.lineBuf = append(c.lineBuf, tmp[:n]...)
	}
	if err != nil {
		if ne, isNet := err.(net.Error); isNet && ne.Timeout() {
			return nil
		}
		c.connected = false
		return NewIoError("recv-failed", err.Error())
	}
	return nil
}

func (c *realTCPConn) RecvLine() (line string, ok bool, err error) {
	if !c.connected {
		return "", false, NewIoError("recv-failed", "not connected")
	}
	if idx := indexCRLF(c.lineBuf); idx >= 0 {
		line = string(c.lineBuf[:idx])
		c.lineBuf = c.lineBuf[idx+1:]
		return line, true, nil
	}
	if err := c.fill(); err != nil {
		return "", false, err
	}
	if idx := indexCRLF(c.lineBuf); idx >= 0 {
		line = string(c.lineBuf[:idx])
		c.lineBuf = c.lineBuf[idx+1:]
		return line, true, nil
	}
	return "", false, nil
}

// indexCRLF returns the index of the first '\n'; a preceding '\r' is left
// in the returned line for the caller's protocol parser to trim.
func indexCRLF(buf []byte) int {
	for i, b := range buf {
		if b == '\n' {
			return i
		}
	}
	return -1
}

func (c *realTCPConn) RecvRaw(buf []byte) (n int, ok bool, err error) {
	if !c.connected {
		return 0, false, NewIoError("recv-failed", "not connected")
	}
	if len(c.lineBuf) > 0 {
		n = copy(buf, c.lineBuf)
		c.lineBuf = c.lineBuf[n:]
		return n, true, nil
	}
	if err := c.fill(); err != nil {
		return 0, false, err
	}
	if len(c.lineBuf) == 0 {
		return 0, false, nil
	}
	n = copy(buf, c.lineBuf)
	c.lineBuf = c.lineBuf[n:]
	return n, true, nil
}

func (c *realTCPConn) Close() error {
	c.connected = false
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// realClock reports real monotonic milliseconds via time.Now(), the real-
// world counterpart to the mock clock tests advance manually.
type realClock struct{}

// NewRealClock returns a Clock backed by the OS monotonic clock.
func NewRealClock() Clock { return realClock{} }

func (realClock) NowMs() int64 { return time.Now().UnixMilli() }

// Real is a ready-to-use IoProvider over real OS sockets, the clock, and a
// corelog.Logger debug sink. Runtimes embedding the core on a normal OS
// construct exactly one of these and pass it to provider.New.
type Real struct {
	UDPProvider
	TCPProvider
	Clock
	corelog.Logger
}

// NewReal builds a Real IoProvider with the given debug log prefix.
func NewReal(logPrefix string) *Real {
	return &Real{
		UDPProvider: NewRealUDPProvider(),
		TCPProvider: NewRealTCPProvider(),
		Clock:       NewRealClock(),
		Logger:      corelog.NewStandard(logPrefix),
	}
}
