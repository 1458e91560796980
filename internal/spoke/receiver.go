// Package spoke implements the multicast spoke receiver (spec.md §4.5):
// join the brand's data multicast group, validate payload length,
// decimate native-resolution radars down to an output resolution by
// element-wise MAX, and fan out completed output spokes to every
// downstream consumer.
package spoke

import (
	"github.com/banshee-data/radar-core/internal/capability"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/state"
)

// Consumer receives one completed output spoke per call. Implemented by
// the ARPA history buffer, guard-zone processors and trail sampling
// (spec.md §4.5).
type Consumer interface {
	OnSpoke(state.Spoke)
}

// Receiver owns one multicast socket for one radar's spoke stream.
type Receiver struct {
	io       ioprovider.IoProvider
	manifest capability.CapabilityManifest

	sock         ioprovider.UDPSocket
	dataAddr     string
	dataPort     int
	decimation   int
	outputLength int

	// group holds the native spokes of the in-progress output spoke until a
	// full decimation group has arrived, then is MAXed down and forwarded.
	group      [][]byte
	groupCount int
	groupBase  int // native spoke index of the first member of the in-progress group

	consumers []Consumer
}

// New constructs a spoke receiver for one radar. Open must be called
// before Poll.
func New(io ioprovider.IoProvider, manifest capability.CapabilityManifest, dataAddr string, dataPort int, consumers ...Consumer) *Receiver {
	factor := manifest.DecimationFactor()
	return &Receiver{
		io:           io,
		manifest:     manifest,
		dataAddr:     dataAddr,
		dataPort:     dataPort,
		decimation:   factor,
		outputLength: manifest.MaxSpokeLength,
		consumers:    consumers,
	}
}

// Open binds the receive socket and joins the brand's spoke multicast
// group.
func (r *Receiver) Open() error {
	sock, err := r.io.Bind(r.dataPort)
	if err != nil {
		return err
	}
	if err := sock.JoinMulticast(r.dataAddr, ""); err != nil {
		r.io.Warnf("spoke: join multicast %s:%d failed: %v", r.dataAddr, r.dataPort, err)
	}
	r.sock = sock
	return nil
}

func (r *Receiver) Close() error {
	if r.sock == nil {
		return nil
	}
	return r.sock.Close()
}

// rawHeaderLen is the fixed prefix of a spoke datagram: spoke index
// (uint16), range in decimeters (uint32), both little-endian (spec.md
// §4.5, §6 "spoke header giving spoke-index, range-in-effect").
const rawHeaderLen = 6

// Poll drains the socket and processes every datagram it carries
// (spec.md §4.5: one or more spokes per datagram).
func (r *Receiver) Poll() {
	if r.sock == nil {
		return
	}
	buf := make([]byte, 2048)
	now := r.io.NowMs()
	for {
		n, _, _, ok, err := r.sock.RecvFrom(buf)
		if err != nil {
			r.io.Warnf("spoke: recv failed: %v", err)
			return
		}
		if !ok {
			return
		}
		r.ingest(buf[:n], now)
	}
}

func (r *Receiver) ingest(datagram []byte, now int64) {
	if len(datagram) < rawHeaderLen {
		r.io.Debugf("spoke: datagram too short for header (%d bytes)", len(datagram))
		return
	}
	spokeIndex := int(datagram[0]) | int(datagram[1])<<8
	rangeDm := uint32(datagram[2]) | uint32(datagram[3])<<8 | uint32(datagram[4])<<16 | uint32(datagram[5])<<24
	returns := datagram[rawHeaderLen:]
	if r.manifest.MaxSpokeLength > 0 && len(returns) > r.manifest.MaxSpokeLength {
		r.io.Debugf("spoke: payload length %d exceeds max %d, truncating", len(returns), r.manifest.MaxSpokeLength)
		returns = returns[:r.manifest.MaxSpokeLength]
	}
	rangeM := float64(rangeDm) / 10

	if r.decimation <= 1 {
		r.emit(state.Spoke{SpokeIndex: spokeIndex, TimestampMs: now, RangeM: rangeM, Returns: returns})
		return
	}
	r.accumulate(spokeIndex, rangeM, returns, now)
}

// accumulate folds one native spoke into the in-progress decimation
// group by element-wise MAX across N=decimation consecutive native
// spokes (spec.md §4.5, §8 scenario 8).
func (r *Receiver) accumulate(nativeIndex int, rangeM float64, returns []byte, now int64) {
	outputIndex := nativeIndex / r.decimation
	groupBase := outputIndex * r.decimation

	if r.group == nil || r.groupBase != groupBase {
		r.flushPartialGroup(rangeM, now)
		r.groupBase = groupBase
		r.group = make([][]byte, 0, r.decimation)
		r.groupCount = 0
	}
	cp := make([]byte, len(returns))
	copy(cp, returns)
	r.group = append(r.group, cp)
	r.groupCount++

	if r.groupCount >= r.decimation {
		r.emit(state.Spoke{
			SpokeIndex:  outputIndex,
			TimestampMs: now,
			RangeM:      rangeM,
			Returns:     maxMerge(r.group),
		})
		r.group = nil
		r.groupCount = 0
	}
}

// flushPartialGroup emits whatever has accumulated so far if a new
// native spoke belongs to a different output group than the one in
// progress (out-of-order arrival, spec.md §4.5 "Ordering" note).
func (r *Receiver) flushPartialGroup(rangeM float64, now int64) {
	if r.groupCount == 0 {
		return
	}
	r.emit(state.Spoke{
		SpokeIndex:  r.groupBase / r.decimation,
		TimestampMs: now,
		RangeM:      rangeM,
		Returns:     maxMerge(r.group),
	})
}

func maxMerge(spokes [][]byte) []byte {
	if len(spokes) == 0 {
		return nil
	}
	maxLen := 0
	for _, s := range spokes {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	out := make([]byte, maxLen)
	for _, s := range spokes {
		for i, b := range s {
			if b > out[i] {
				out[i] = b
			}
		}
	}
	return out
}

func (r *Receiver) emit(sp state.Spoke) {
	for _, c := range r.consumers {
		c.OnSpoke(sp)
	}
}
