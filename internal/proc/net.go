package proc

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

// Protocols in the order their tables are processed.
var Protocols = []string{"tcp", "tcp6", "udp", "udp6"}

// SocketTablePath returns the procfs table for proto.
func (fs FS) SocketTablePath(proto string) string {
	return fs.procPath("net", proto)
}

// ReadListeners returns the listening entries of one socket table. TCP
// tables keep only LISTEN rows; every UDP row counts since UDP has no
// listen state.
func (fs FS) ReadListeners(proto string) ([]model.Socket, error) {
	path := fs.SocketTablePath(proto)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	isTCP := strings.HasPrefix(proto, "tcp")
	ipv6 := strings.HasSuffix(proto, "6")

	var sockets []model.Socket
	scanner := bufio.NewScanner(f)
	scanner.Scan() // skip header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}

		// fields[1] local address, fields[3] state, fields[9] inode
		stateVal, err := strconv.ParseInt(fields[3], 16, 32)
		if err != nil {
			continue
		}
		if isTCP && stateVal != tcpListen {
			continue
		}
		addr, err := parseAddr(fields[1], ipv6)
		if err != nil {
			continue
		}
		inode, err := strconv.ParseUint(fields[9], 10, 64)
		if err != nil {
			continue
		}

		s := model.Socket{
			Inode:        inode,
			Protocol:     proto,
			LocalAddress: addr.String(),
			Port:         addr.Port(),
		}
		if isTCP {
			s.State = mapTCPState(int(stateVal))
		}
		sockets = append(sockets, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return sockets, nil
}

// parseAddr decodes the hex "ADDR:PORT" form used by /proc/net tables.
func parseAddr(raw string, ipv6 bool) (netip.AddrPort, error) {
	ipHex, portHex, ok := strings.Cut(raw, ":")
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("malformed address %q", raw)
	}
	port, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("malformed port %q", raw)
	}
	b, err := hex.DecodeString(ipHex)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("malformed address %q", raw)
	}

	if ipv6 {
		if len(b) != 16 {
			return netip.AddrPort{}, fmt.Errorf("malformed ipv6 address %q", raw)
		}
		// IPv6 is stored as 4 little-endian 32-bit groups
		var ip [16]byte
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return netip.AddrPortFrom(netip.AddrFrom16(ip), uint16(port)), nil
	}

	if len(b) != 4 {
		return netip.AddrPort{}, fmt.Errorf("malformed ipv4 address %q", raw)
	}
	ip := [4]byte{b[3], b[2], b[1], b[0]}
	return netip.AddrPortFrom(netip.AddrFrom4(ip), uint16(port)), nil
}
