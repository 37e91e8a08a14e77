package network

import (
	"strconv"
	"strings"
)

type serviceKey struct {
	protocol string
	port     uint16
}

var serviceTable = map[serviceKey]string{
	{"tcp", 21}:   "ftp",
	{"tcp", 22}:   "ssh",
	{"tcp", 23}:   "telnet",
	{"tcp", 25}:   "smtp",
	{"tcp", 53}:   "dns",
	{"udp", 53}:   "dns",
	{"tcp", 80}:   "http",
	{"tcp", 110}:  "pop3",
	{"tcp", 143}:  "imap",
	{"tcp", 389}:  "ldap",
	{"tcp", 443}:  "https",
	{"tcp", 445}:  "smb",
	{"tcp", 465}:  "smtps",
	{"tcp", 587}:  "submission",
	{"tcp", 993}:  "imaps",
	{"tcp", 995}:  "pop3s",
	{"tcp", 1433}: "mssql",
	{"tcp", 1521}: "oracle",
	{"tcp", 2049}: "nfs",
	{"udp", 2049}: "nfs",
	{"tcp", 2375}: "docker",
	{"tcp", 3306}: "mysql",
	{"tcp", 3389}: "rdp",
	{"tcp", 5432}: "postgresql",
	{"tcp", 5900}: "vnc",
	{"tcp", 6379}: "redis",
	{"tcp", 8080}: "http-alt",
	{"tcp", 8443}: "https-alt",
}

var insecureServices = map[string]struct{}{
	"telnet": {},
	"ftp":    {},
	"pop3":   {},
	"imap":   {},
	"smtp":   {},
	"mysql":  {},
	"redis":  {},
	"rdp":    {},
	"vnc":    {},
}

// classifyService looks up a well-known service name. IPv6 tables share the
// IPv4 port assignments, so tcp6 and udp6 resolve through tcp and udp.
func classifyService(protocol, localAddress string) *string {
	port, ok := extractPort(localAddress)
	if !ok {
		return nil
	}
	family := strings.TrimSuffix(strings.ToLower(protocol), "6")
	name, ok := serviceTable[serviceKey{family, port}]
	if !ok {
		return nil
	}
	return &name
}

// extractPort parses the text after the last ':' of an address.
func extractPort(address string) (uint16, bool) {
	idx := strings.LastIndex(address, ":")
	if idx < 0 {
		return 0, false
	}
	port, err := strconv.ParseUint(address[idx+1:], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(port), true
}

func isWildcardAddress(address string) bool {
	for _, prefix := range []string{"0.0.0.0:", ":::", "[::]:", "[::ffff:0.0.0.0]:"} {
		if strings.HasPrefix(address, prefix) {
			return true
		}
	}
	return false
}

func isInsecure(service *string) bool {
	if service == nil {
		return false
	}
	_, ok := insecureServices[*service]
	return ok
}
