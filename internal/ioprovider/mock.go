package ioprovider

import "time"

// MockPacket is one queued datagram for MockUDPSocket, matching the
// teacher's MockUDPPacket shape (_examples/banshee-data-velocity.report/
// internal/lidar/network/udp_interface.go).
type MockPacket struct {
	Data     []byte
	SrcAddr  string
	SrcPort  int
}

// MockUDPSocket implements UDPSocket for deterministic tests: a queue of
// inbound packets to hand back from RecvFrom, and a log of every SendTo
// call so tests can assert on outbound wire traffic.
type MockUDPSocket struct {
	Inbound     []MockPacket
	readIndex   int
	Sent        []MockSend
	Closed      bool
	Broadcast   bool
	JoinedGroup []MockJoin
	Port        int
	RecvError   error
	SendError   error
}

type MockSend struct {
	Data []byte
	Addr string
	Port int
}

type MockJoin struct {
	Group string
	Iface string
}

// NewMockUDPSocket creates an empty mock socket bound to the given port.
func NewMockUDPSocket(port int) *MockUDPSocket {
	return &MockUDPSocket{Port: port}
}

// Enqueue adds a datagram to be returned by a future RecvFrom call.
func (m *MockUDPSocket) Enqueue(data []byte, srcAddr string, srcPort int) {
	m.Inbound = append(m.Inbound, MockPacket{Data: data, SrcAddr: srcAddr, SrcPort: srcPort})
}

func (m *MockUDPSocket) SendTo(data []byte, addr string, port int) (int, error) {
	if m.SendError != nil {
		return 0, m.SendError
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.Sent = append(m.Sent, MockSend{Data: cp, Addr: addr, Port: port})
	return len(data), nil
}

func (m *MockUDPSocket) RecvFrom(buf []byte) (n int, srcAddr string, srcPort int, ok bool, err error) {
	if m.Closed {
		return 0, "", 0, false, NewIoError("recv-failed", "socket closed")
	}
	if m.RecvError != nil {
		e := m.RecvError
		m.RecvError = nil
		return 0, "", 0, false, e
	}
	if m.readIndex >= len(m.Inbound) {
		return 0, "", 0, false, nil
	}
	pkt := m.Inbound[m.readIndex]
	m.readIndex++
	n = copy(buf, pkt.Data)
	return n, pkt.SrcAddr, pkt.SrcPort, true, nil
}

func (m *MockUDPSocket) SetBroadcast(enable bool) error {
	m.Broadcast = enable
	return nil
}

func (m *MockUDPSocket) JoinMulticast(group, iface string) error {
	m.JoinedGroup = append(m.JoinedGroup, MockJoin{Group: group, Iface: iface})
	return nil
}

func (m *MockUDPSocket) LocalPort() int { return m.Port }

func (m *MockUDPSocket) Close() error {
	m.Closed = true
	return nil
}

// MockUDPProvider hands out MockUDPSockets, recording every Bind call.
type MockUDPProvider struct {
	Sockets   map[int]*MockUDPSocket
	BindError error
}

func NewMockUDPProvider() *MockUDPProvider {
	return &MockUDPProvider{Sockets: make(map[int]*MockUDPSocket)}
}

func (p *MockUDPProvider) Bind(port int) (UDPSocket, error) {
	if p.BindError != nil {
		return nil, p.BindError
	}
	sock := NewMockUDPSocket(port)
	p.Sockets[port] = sock
	return sock, nil
}

// MockTCPConn implements TCPConn for tests: a canned sequence of recv-line
// / recv-raw chunks and a log of sent bytes, mirroring the teacher's
// MockRadarPort (_examples/banshee-data-velocity.report/radar/serial.go)
// adapted to the line-buffered TCP contract.
type MockTCPConn struct {
	connected   bool
	ConnectErr  error
	Sent        [][]byte
	lineBuf     []byte
	Feed        [][]byte // not read by the mock; tests queue inbound bytes with Arrive
	feedIdx     int
	SendErr     error
	ConnectAddr string
	ConnectPort int
}

func NewMockTCPConn() *MockTCPConn { return &MockTCPConn{} }

func (m *MockTCPConn) Connect(addr string, port int, _ time.Duration) error {
	m.ConnectAddr, m.ConnectPort = addr, port
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.connected = true
	return nil
}

func (m *MockTCPConn) IsConnected() bool { return m.connected }

func (m *MockTCPConn) Send(data []byte) (int, error) {
	if m.SendErr != nil {
		return 0, m.SendErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.Sent = append(m.Sent, cp)
	return len(data), nil
}

// Arrive queues bytes as if they had just been read from the wire; tests
// call this before RecvLine/RecvRaw to simulate an inbound packet.
func (m *MockTCPConn) Arrive(data []byte) {
	m.lineBuf = append(m.lineBuf, data...)
}

func (m *MockTCPConn) RecvLine() (string, bool, error) {
	for i, b := range m.lineBuf {
		if b == '\n' {
			line := string(m.lineBuf[:i])
			m.lineBuf = m.lineBuf[i+1:]
			return line, true, nil
		}
	}
	return "", false, nil
}

func (m *MockTCPConn) RecvRaw(buf []byte) (int, bool, error) {
	if len(m.lineBuf) == 0 {
		return 0, false, nil
	}
	n := copy(buf, m.lineBuf)
	m.lineBuf = m.lineBuf[n:]
	return n, true, nil
}

func (m *MockTCPConn) Close() error {
	m.connected = false
	return nil
}

// MockTCPProvider hands back a pre-seeded *MockTCPConn instead of dialing.
type MockTCPProvider struct {
	Conn *MockTCPConn
}

func NewMockTCPProvider(conn *MockTCPConn) *MockTCPProvider {
	return &MockTCPProvider{Conn: conn}
}

func (p *MockTCPProvider) NewTCP() TCPConn { return p.Conn }

// MockClock is a manually advanced Clock for deterministic time-based
// tests (keepalive intervals, backoff timers, ARPA revolution timing).
type MockClock struct{ ms int64 }

func NewMockClock(startMs int64) *MockClock { return &MockClock{ms: startMs} }

func (c *MockClock) NowMs() int64 { return c.ms }

func (c *MockClock) Advance(d time.Duration) { c.ms += d.Milliseconds() }

// Mock is a ready-to-use IoProvider over mock UDP/TCP/clock/log, for unit
// tests of locators, controllers and the spoke receiver.
type Mock struct {
	*MockUDPProvider
	*MockTCPProvider
	*MockClock
	Logs []string
}

func NewMock() *Mock {
	return &Mock{
		MockUDPProvider: NewMockUDPProvider(),
		MockTCPProvider: NewMockTCPProvider(NewMockTCPConn()),
		MockClock:       NewMockClock(0),
	}
}

func (m *Mock) Debugf(format string, args ...any) { m.Logs = append(m.Logs, format) }
func (m *Mock) Warnf(format string, args ...any)  { m.Logs = append(m.Logs, "WARN "+format) }
