package network

import (
	"sort"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

const (
	ruleWildcardListener = "wildcard_listener"
	ruleLegacyProtocol   = "legacy_protocol"
)

type processGroupBuilder struct {
	container *string
	group     model.ListenerProcessGroup
	protocols map[string]struct{}
	addresses map[string]struct{}
}

// buildGroups rolls sampled sockets up by pid, then by container. Sockets
// with no owning process do not appear in any group.
func buildGroups(samples []model.SocketSample) []model.ListenerContainerGroup {
	byPID := make(map[int]*processGroupBuilder)
	var order []int

	for _, s := range samples {
		for _, p := range s.Processes {
			b, ok := byPID[p.PID]
			if !ok {
				b = &processGroupBuilder{
					container: p.Container,
					group: model.ListenerProcessGroup{
						PID:     p.PID,
						Command: p.Command,
						UID:     p.UID,
					},
					protocols: make(map[string]struct{}),
					addresses: make(map[string]struct{}),
				}
				byPID[p.PID] = b
				order = append(order, p.PID)
			}
			b.group.SocketCount++
			b.protocols[s.Protocol] = struct{}{}
			b.addresses[s.LocalAddress] = struct{}{}
		}
	}

	byContainer := make(map[string]*model.ListenerContainerGroup)
	var containerOrder []string
	for _, pid := range order {
		b := byPID[pid]
		b.group.Protocols = sortedKeys(b.protocols)
		b.group.LocalAddresses = sortedKeys(b.addresses)

		key := containerKey(b.container)
		cg, ok := byContainer[key]
		if !ok {
			cg = &model.ListenerContainerGroup{Container: b.container}
			byContainer[key] = cg
			containerOrder = append(containerOrder, key)
		}
		cg.SocketCount += b.group.SocketCount
		cg.ProcessCount++
		cg.Processes = append(cg.Processes, b.group)
	}

	groups := make([]model.ListenerContainerGroup, 0, len(containerOrder))
	for _, key := range containerOrder {
		cg := byContainer[key]
		sort.SliceStable(cg.Processes, func(i, j int) bool {
			a, b := cg.Processes[i], cg.Processes[j]
			if a.SocketCount != b.SocketCount {
				return a.SocketCount > b.SocketCount
			}
			return a.PID < b.PID
		})
		groups = append(groups, *cg)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].SocketCount != groups[j].SocketCount {
			return groups[i].SocketCount > groups[j].SocketCount
		}
		return containerKey(groups[i].Container) < containerKey(groups[j].Container)
	})
	return groups
}

// containerKey maps host-level processes to "none".
func containerKey(c *string) string {
	if c == nil {
		return "none"
	}
	return "container:" + *c
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// deriveInsights applies the fixed listener rules to the samples. Each rule
// yields at most one insight and insights are sorted by rule name.
func deriveInsights(samples []model.SocketSample) []model.ListenerInsight {
	buckets := make(map[string]*model.ListenerInsight)
	add := func(rule, message string, s model.SocketSample) {
		b, ok := buckets[rule]
		if !ok {
			b = &model.ListenerInsight{Rule: rule, Severity: model.SeverityWarning, Message: message}
			buckets[rule] = b
		}
		b.Sockets = append(b.Sockets, reference(s))
	}

	for _, s := range samples {
		if isWildcardAddress(s.LocalAddress) {
			add(ruleWildcardListener, "Listener bound to all interfaces", s)
		}
		if isInsecure(s.Service) {
			add(ruleLegacyProtocol, "Legacy or insecure protocol exposed", s)
		}
	}

	rules := make([]string, 0, len(buckets))
	for rule := range buckets {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	insights := make([]model.ListenerInsight, 0, len(rules))
	for _, rule := range rules {
		insights = append(insights, *buckets[rule])
	}
	return insights
}

func reference(s model.SocketSample) model.SocketReference {
	ref := model.SocketReference{
		Protocol:     s.Protocol,
		LocalAddress: s.LocalAddress,
		Service:      s.Service,
	}
	for _, p := range s.Processes {
		if p.Container != nil {
			ref.Container = p.Container
			break
		}
	}
	if len(s.Processes) > 0 {
		pid := s.Processes[0].PID
		ref.PID = &pid
	}
	return ref
}
