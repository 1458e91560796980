// Package discovery implements the poll-driven multicast locator
// (spec.md §4.3): one UDP socket per brand/address pair, drained every
// poll, producing deduplicated RadarDiscovery events.
package discovery

import (
	"strconv"

	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/common"
	"github.com/banshee-data/radar-core/internal/protocol/furuno"
	"github.com/banshee-data/radar-core/internal/protocol/garmin"
	"github.com/banshee-data/radar-core/internal/protocol/navico"
	"github.com/banshee-data/radar-core/internal/protocol/raymarine"
	"github.com/banshee-data/radar-core/internal/state"
)

// MaxAgeMs is the recommended (not asserted by the core) staleness bound
// before a discovery is dropped from Known (spec.md §3: "N=60
// recommended").
const MaxAgeMs = 60_000

// furunoAnnounceIntervalMs is how often the locator must re-announce
// itself on the Furuno beacon port so the radar accepts later TCP logins
// (spec.md §4.3).
const furunoAnnounceIntervalMs = 2_000

type socketBinding struct {
	brand   state.Brand
	address string
	port    int
	socket  ioprovider.UDPSocket
}

// Locator maintains one socket per brand/address and the deduplicated
// set of currently-known radars.
type Locator struct {
	udp    ioprovider.UDPProvider
	clock  ioprovider.Clock
	logger ioprovider.Logger

	sockets []socketBinding
	known   map[string]common.RadarDiscovery // key: brand.String()+"/"+name

	lastFurunoAnnounceMs int64
}

// New constructs a Locator over the given IoProvider; call Open to bind
// the brand sockets before the first Poll.
func New(p ioprovider.IoProvider) *Locator {
	return &Locator{
		udp:                  p,
		clock:                p,
		logger:               p,
		known:                make(map[string]common.RadarDiscovery),
		lastFurunoAnnounceMs: -furunoAnnounceIntervalMs,
	}
}

// Open binds one socket per brand/address pair this locator listens on.
// Safe to call once at startup.
func (l *Locator) Open() error {
	bindings := []struct {
		brand   state.Brand
		address string
		port    int
	}{
		{state.BrandFuruno, furuno.BeaconAddress, furuno.BeaconPort},
		{state.BrandNavico, navico.BR24BeaconAddress, navico.BR24BeaconPort},
		{state.BrandNavico, navico.Gen3BeaconAddress, navico.Gen3BeaconPort},
		{state.BrandRaymarine, raymarine.BeaconAddress, raymarine.BeaconPort},
		{state.BrandGarmin, garmin.ReportAddress, garmin.ReportPort},
	}
	for _, b := range bindings {
		sock, err := l.udp.Bind(b.port)
		if err != nil {
			return err
		}
		if err := sock.JoinMulticast(b.address, ""); err != nil {
			l.logger.Warnf("discovery: join multicast %s:%d failed: %v", b.address, b.port, err)
		}
		l.sockets = append(l.sockets, socketBinding{brand: b.brand, address: b.address, port: b.port, socket: sock})
	}
	return nil
}

// Poll drains every socket's recv queue, recognizes and parses beacons,
// updates Known, and (for Furuno) re-announces if due. It never blocks.
func (l *Locator) Poll() {
	now := l.clock.NowMs()
	for _, b := range l.sockets {
		l.drain(b, now)
	}
	l.maybeAnnounceFuruno(now)
}

// recvBufSize comfortably bounds every brand's beacon/report frame
// (the largest is Furuno's 170-byte model report).
const recvBufSize = 2048

func (l *Locator) drain(b socketBinding, now int64) {
	buf := make([]byte, recvBufSize)
	for {
		n, srcAddr, _, ok, err := b.socket.RecvFrom(buf)
		if err != nil {
			l.logger.Warnf("discovery: recv on %s:%d failed: %v", b.address, b.port, err)
			return
		}
		if !ok {
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		l.recognize(b.brand, data, srcAddr, now)
	}
}

func (l *Locator) recognize(brand state.Brand, data []byte, srcAddr string, now int64) {
	switch brand {
	case state.BrandFuruno:
		l.recognizeFuruno(data, srcAddr, now)
	case state.BrandNavico:
		l.recognizeNavico(data, srcAddr, now)
	case state.BrandRaymarine:
		l.recognizeRaymarine(data, srcAddr, now)
	case state.BrandGarmin:
		l.recognizeGarmin(data, srcAddr, now)
	}
}

func (l *Locator) recognizeFuruno(data []byte, srcAddr string, now int64) {
	if furuno.IsModelReport(data) {
		model, err := furuno.ParseModelReport(data)
		if err != nil {
			l.logger.Debugf("discovery: furuno model report: %v", err)
			return
		}
		l.enrichModelByAddress(state.BrandFuruno, srcAddr, model, now)
		return
	}
	if !furuno.IsBeacon(data) {
		return
	}
	port, err := furuno.ParseBeacon(data)
	if err != nil {
		l.logger.Debugf("discovery: furuno beacon: %v", err)
		return
	}
	d := common.RadarDiscovery{
		Brand:       state.BrandFuruno,
		Name:        "Furuno " + srcAddr,
		Address:     srcAddr,
		CommandPort: port,
		LastSeenMs:  now,
	}
	l.upsert(d)
}

func (l *Locator) recognizeNavico(data []byte, srcAddr string, now int64) {
	if !navico.IsBeacon(data) {
		return
	}
	b, err := navico.ParseBeacon(data)
	if err != nil {
		l.logger.Debugf("discovery: navico beacon: %v", err)
		return
	}
	for _, sub := range b.SubRadars {
		name := "Navico " + b.Serial
		if len(b.SubRadars) > 1 {
			name = name + "/" + strconv.Itoa(sub.Index)
		}
		d := common.RadarDiscovery{
			Brand:       state.BrandNavico,
			Serial:      b.Serial,
			Name:        name,
			Address:     sub.DataAddress,
			CommandPort: sub.CommandPort,
			DataPort:    sub.DataPort,
			LastSeenMs:  now,
		}
		l.upsert(d)
	}
}

func (l *Locator) recognizeRaymarine(data []byte, srcAddr string, now int64) {
	if !raymarine.IsBeacon(data) {
		return
	}
	b, err := raymarine.ParseBeacon(data)
	if err != nil {
		l.logger.Debugf("discovery: raymarine beacon: %v", err)
		return
	}
	d := common.RadarDiscovery{
		Brand:      state.BrandRaymarine,
		Name:       b.Name,
		Serial:     b.Serial,
		Address:    srcAddr,
		LastSeenMs: now,
	}
	l.upsert(d)
}

func (l *Locator) recognizeGarmin(data []byte, srcAddr string, now int64) {
	if !garmin.IsReport(data) {
		return
	}
	if _, err := garmin.ParseReport(data); err != nil {
		l.logger.Debugf("discovery: garmin report: %v", err)
		return
	}
	d := common.RadarDiscovery{
		Brand:      state.BrandGarmin,
		Name:       "Garmin " + srcAddr,
		Address:    srcAddr,
		LastSeenMs: now,
	}
	l.upsert(d)
}

func (l *Locator) upsert(d common.RadarDiscovery) {
	key := dedupKey(d.Brand, d.Name)
	if existing, ok := l.known[key]; ok {
		d.Model = firstNonEmpty(d.Model, existing.Model)
		d.Serial = firstNonEmpty(d.Serial, existing.Serial)
		d.DataPort = firstNonZero(d.DataPort, existing.DataPort)
		d.SpokesPerRevolution = firstNonZero(d.SpokesPerRevolution, existing.SpokesPerRevolution)
		d.MaxSpokeLength = firstNonZero(d.MaxSpokeLength, existing.MaxSpokeLength)
	}
	l.known[key] = d
}

func (l *Locator) enrichModelByAddress(brand state.Brand, addr, model string, now int64) {
	for key, d := range l.known {
		if d.Brand == brand && d.Address == addr {
			d.Model = model
			d.LastSeenMs = now
			l.known[key] = d
		}
	}
}

func (l *Locator) maybeAnnounceFuruno(now int64) {
	if now-l.lastFurunoAnnounceMs < furunoAnnounceIntervalMs {
		return
	}
	var sock ioprovider.UDPSocket
	for _, b := range l.sockets {
		if b.brand == state.BrandFuruno {
			sock = b.socket
			break
		}
	}
	if sock == nil {
		return
	}
	for _, pkt := range furuno.AnnouncePackets() {
		if _, err := sock.SendTo(pkt, furuno.BeaconAddress, furuno.BeaconPort); err != nil {
			l.logger.Warnf("discovery: furuno announce failed: %v", err)
		}
	}
	l.lastFurunoAnnounceMs = now
}

// Known returns a snapshot of every currently-known discovery, aging out
// entries untouched for at least MaxAgeMs.
func (l *Locator) Known() []common.RadarDiscovery {
	now := l.clock.NowMs()
	out := make([]common.RadarDiscovery, 0, len(l.known))
	for key, d := range l.known {
		if d.Aged(now, MaxAgeMs) {
			delete(l.known, key)
			continue
		}
		out = append(out, d)
	}
	return out
}

func dedupKey(brand state.Brand, name string) string {
	return brand.String() + "/" + name
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}
