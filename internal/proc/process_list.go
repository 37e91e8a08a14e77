package proc

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

// Pids lists the numeric entries of the procfs root in ascending order.
func (fs FS) Pids() ([]int, error) {
	entries, err := os.ReadDir(fs.Proc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fs.Proc, err)
	}

	pids := make([]int, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids, nil
}

// SocketOwners maps socket inodes to the processes holding them. Processes
// that exit or deny access mid-scan are skipped; an unreadable procfs root
// yields an empty map.
func (fs FS) SocketOwners() map[uint64][]model.SocketProcessInfo {
	owners := make(map[uint64][]model.SocketProcessInfo)

	pids, err := fs.Pids()
	if err != nil {
		return owners
	}

	for _, pid := range pids {
		inodes, err := fs.socketInodes(pid)
		if err != nil || len(inodes) == 0 {
			continue
		}

		info := model.SocketProcessInfo{PID: pid}
		if comm, err := fs.ReadComm(pid); err == nil {
			info.Command = comm
		}
		if uid, err := fs.ReadUID(pid); err == nil {
			info.UID = &uid
		}
		if id, ok := fs.ReadContainerID(pid); ok {
			info.Container = &id
		}

		for _, inode := range inodes {
			owners[inode] = append(owners[inode], info)
		}
	}
	return owners
}

// CountProcesses returns the number of live pids.
func (fs FS) CountProcesses() (int, error) {
	pids, err := fs.Pids()
	if err != nil {
		return 0, err
	}
	return len(pids), nil
}
