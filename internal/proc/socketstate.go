package proc

import "fmt"

const tcpListen = 0x0A

// mapTCPState maps Linux kernel TCP states (include/net/tcp_states.h) to strings
func mapTCPState(state int) string {
	switch state {
	case 1:
		return "ESTABLISHED"
	case 2:
		return "SYN_SENT"
	case 3:
		return "SYN_RECV"
	case 4:
		return "FIN_WAIT_1"
	case 5:
		return "FIN_WAIT_2"
	case 6:
		return "TIME_WAIT"
	case 7:
		return "CLOSE"
	case 8:
		return "CLOSE_WAIT"
	case 9:
		return "LAST_ACK"
	case tcpListen:
		return "LISTEN"
	case 11:
		return "CLOSING"
	default:
		return fmt.Sprintf("UNKNOWN (%02X)", state)
	}
}
