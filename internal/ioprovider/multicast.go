package ioprovider

import (
	"net"

	"golang.org/x/net/ipv4"
)

// ipv4PacketConnFor wraps conn for IGMP group membership management. IPv4
// multicast join needs the packet-conn helper from golang.org/x/net/ipv4;
// net.UDPConn alone has no JoinGroup method.
func ipv4PacketConnFor(conn *net.UDPConn) *ipv4.PacketConn {
	return ipv4.NewPacketConn(conn)
}
