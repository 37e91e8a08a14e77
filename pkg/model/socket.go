package model

// MaxSocketSamples caps the materialized socket samples of one run across
// all four protocols combined.
const MaxSocketSamples = 20

// Socket is one row of a /proc/net socket table.
type Socket struct {
	Inode        uint64
	Protocol     string // tcp, tcp6, udp, udp6
	LocalAddress string // 0.0.0.0:22, [::]:22
	Port         uint16
	State        string // LISTEN, ESTABLISHED, ...; empty for udp
}

type InterfaceInfo struct {
	Name      string `json:"name"`
	RxBytes   uint64 `json:"rx_bytes"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	TxPackets uint64 `json:"tx_packets"`
}

type ListenerCounts struct {
	TCP  int `json:"tcp"`
	TCP6 int `json:"tcp6"`
	UDP  int `json:"udp"`
	UDP6 int `json:"udp6"`
}

func (c ListenerCounts) Total() int {
	return c.TCP + c.TCP6 + c.UDP + c.UDP6
}

// SocketProcessInfo links a socket inode to one process holding it.
// Command is empty when the process name could not be read.
type SocketProcessInfo struct {
	PID       int     `json:"pid"`
	Command   string  `json:"command,omitempty"`
	UID       *uint32 `json:"uid"`
	Container *string `json:"container"`
}

type SocketSample struct {
	Protocol     string              `json:"protocol"`
	LocalAddress string              `json:"local_address"`
	State        *string             `json:"state"`
	Processes    []SocketProcessInfo `json:"processes"`
	Service      *string             `json:"service"`
}

type ListenerProcessGroup struct {
	PID            int      `json:"pid"`
	Command        string   `json:"command,omitempty"`
	UID            *uint32  `json:"uid"`
	SocketCount    int      `json:"socket_count"`
	Protocols      []string `json:"protocols"`
	LocalAddresses []string `json:"local_addresses"`
}

type ListenerContainerGroup struct {
	Container    *string                `json:"container"`
	SocketCount  int                    `json:"socket_count"`
	ProcessCount int                    `json:"process_count"`
	Processes    []ListenerProcessGroup `json:"processes"`
}

type SocketReference struct {
	Protocol     string  `json:"protocol"`
	LocalAddress string  `json:"local_address"`
	Service      *string `json:"service"`
	Container    *string `json:"container"`
	PID          *int    `json:"pid"`
}

type ListenerInsight struct {
	Rule     string            `json:"rule"`
	Severity Severity          `json:"severity"`
	Message  string            `json:"message"`
	Sockets  []SocketReference `json:"sockets"`
}

type ListenerSnapshot struct {
	Counts      ListenerCounts           `json:"counts"`
	Samples     []SocketSample           `json:"samples"`
	Groups      []ListenerContainerGroup `json:"groups"`
	Insights    []ListenerInsight        `json:"insights"`
	SampleLimit int                      `json:"sample_limit"`
	Truncated   bool                     `json:"truncated"`
}

// NetworkSnapshot is the body of the network section.
type NetworkSnapshot struct {
	Interfaces []InterfaceInfo  `json:"interfaces"`
	Listeners  ListenerSnapshot `json:"listeners"`
}

// DisplayCommand returns the command or "?" when it is unknown.
func (p SocketProcessInfo) DisplayCommand() string { return displayCommand(p.Command) }

// DisplayCommand returns the command or "?" when it is unknown.
func (g ListenerProcessGroup) DisplayCommand() string { return displayCommand(g.Command) }

func displayCommand(c string) string {
	if c == "" {
		return "?"
	}
	return c
}
