package osinfo

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

func TestCollect(t *testing.T) {
	c := &Collector{info: func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{
			Hostname:             "web-01",
			OS:                   "linux",
			Platform:             "ubuntu",
			PlatformVersion:      "24.04",
			KernelVersion:        "6.8.0-45-generic",
			KernelArch:           "x86_64",
			Uptime:               3600,
			BootTime:             1700000000,
			VirtualizationSystem: "kvm",
			VirtualizationRole:   "guest",
		}, nil
	}}

	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, "ubuntu 24.04 (kernel 6.8.0-45-generic)", *section.Summary)

	info := section.Body.(Info)
	assert.Equal(t, "web-01", info.Hostname)
	assert.Equal(t, int64(1700000000), info.BootTime.Unix())
	require.NotNil(t, info.Virtualization)
	assert.Equal(t, "kvm (guest)", *info.Virtualization)
}

func TestCollectError(t *testing.T) {
	c := &Collector{info: func(context.Context) (*host.InfoStat, error) {
		return nil, errors.New("utsname failed")
	}}
	_, err := c.Collect(context.Background(), model.CollectionContext{})
	assert.ErrorContains(t, err, "utsname failed")
}
