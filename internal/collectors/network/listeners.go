package network

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"

	"golang.org/x/sync/errgroup"

	"github.com/pranshuparmar/hostreport/internal/proc"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

type tableResult struct {
	sockets []model.Socket
	err     error
}

// gatherListeners reads the four socket tables and the process inode map
// concurrently, then joins them in tcp, tcp6, udp, udp6 order. Counts are
// exact; samples stop at model.MaxSocketSamples across all protocols.
// It returns the number of tables that could be read.
func gatherListeners(ctx context.Context, fs proc.FS) (model.ListenerSnapshot, []string, int) {
	tables := make([]tableResult, len(proc.Protocols))
	var owners map[uint64][]model.SocketProcessInfo

	g, _ := errgroup.WithContext(ctx)
	for i, proto := range proc.Protocols {
		g.Go(func() error {
			sockets, err := fs.ReadListeners(proto)
			tables[i] = tableResult{sockets: sockets, err: err}
			return nil
		})
	}
	g.Go(func() error {
		owners = fs.SocketOwners()
		return nil
	})
	_ = g.Wait()

	snap := model.ListenerSnapshot{
		Samples:     []model.SocketSample{},
		SampleLimit: model.MaxSocketSamples,
	}
	notes := []string{}
	readable := 0

	for i, proto := range proc.Protocols {
		res := tables[i]
		if res.err != nil {
			notes = append(notes, fmt.Sprintf("Failed to read %s: %s", fs.SocketTablePath(proto), describe(res.err)))
			continue
		}
		readable++

		addCount(&snap.Counts, proto, len(res.sockets))
		for _, s := range res.sockets {
			if len(snap.Samples) >= model.MaxSocketSamples {
				break
			}
			snap.Samples = append(snap.Samples, sample(s, owners))
		}
	}

	if total := snap.Counts.Total(); total > len(snap.Samples) {
		snap.Truncated = true
		notes = append(notes, fmt.Sprintf(
			"Showing %d of %d listening sockets; samples are taken in tcp, tcp6, udp, udp6 order and groups and insights cover samples only",
			len(snap.Samples), total))
	}

	snap.Groups = buildGroups(snap.Samples)
	snap.Insights = deriveInsights(snap.Samples)
	return snap, notes, readable
}

func sample(s model.Socket, owners map[uint64][]model.SocketProcessInfo) model.SocketSample {
	// A missing inode means the owner exited or is hidden from us.
	processes := make([]model.SocketProcessInfo, len(owners[s.Inode]))
	copy(processes, owners[s.Inode])
	// tcp6/udp6 rows get service names too, so an IPv6-only telnet or ftp
	// listener raises legacy_protocol like its IPv4 counterpart.
	out := model.SocketSample{
		Protocol:     s.Protocol,
		LocalAddress: s.LocalAddress,
		Processes:    processes,
		Service:      classifyService(s.Protocol, s.LocalAddress),
	}
	if s.State != "" {
		state := s.State
		out.State = &state
	}
	return out
}

func addCount(c *model.ListenerCounts, proto string, n int) {
	switch proto {
	case "tcp":
		c.TCP += n
	case "tcp6":
		c.TCP6 += n
	case "udp":
		c.UDP += n
	case "udp6":
		c.UDP6 += n
	}
}

func describe(err error) string {
	var pathErr *iofs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
