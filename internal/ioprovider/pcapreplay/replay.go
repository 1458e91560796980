//go:build pcap
// +build pcap

// Package pcapreplay replays a recorded .pcap capture of radar discovery
// beacons and spoke multicast traffic through the ioprovider.UDPSocket
// interface, for offline replay by the cmd/track-plot tool. It is built behind the "pcap" tag exactly as the teacher's offline
// capture reader is (_examples/banshee-data-velocity.report/internal/lidar/
// network/pcap.go), since it links against the system libpcap.
package pcapreplay

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/banshee-data/radar-core/internal/ioprovider"
)

// LoadUDPPackets reads every UDP datagram addressed to udpPort out of a
// pcap file and returns them as ioprovider.MockPacket values, ready to be
// fed into a MockUDPSocket's Inbound queue so the core's locator /
// controller / spoke-receiver poll loops can be replayed against real
// captured wire traffic.
func LoadUDPPackets(pcapFile string, udpPort int) ([]ioprovider.MockPacket, error) {
	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return nil, fmt.Errorf("open pcap %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filter := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filter); err != nil {
		return nil, fmt.Errorf("set BPF filter %q: %w", filter, err)
	}

	var out []ioprovider.MockPacket
	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for packet := range source.Packets() {
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp, ok := udpLayer.(*layers.UDP)
		if !ok {
			continue
		}
		srcIP := "0.0.0.0"
		if ipLayer := packet.Layer(layers.LayerTypeIPv4); ipLayer != nil {
			if ip, ok := ipLayer.(*layers.IPv4); ok {
				srcIP = ip.SrcIP.String()
			}
		}
		payload := make([]byte, len(udp.Payload))
		copy(payload, udp.Payload)
		out = append(out, ioprovider.MockPacket{
			Data:    payload,
			SrcAddr: srcIP,
			SrcPort: int(udp.SrcPort),
		})
	}
	return out, nil
}
