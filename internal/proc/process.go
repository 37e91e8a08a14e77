package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadComm returns the command name from /proc/<pid>/stat.
func (fs FS) ReadComm(pid int) (string, error) {
	stat, err := os.ReadFile(fs.pidPath(pid, "stat"))
	if err != nil {
		return "", err
	}
	return parseStatComm(stat)
}

// stat format is evil, command is inside ()
func parseStatComm(stat []byte) (string, error) {
	raw := string(stat)
	open := strings.Index(raw, "(")
	close := strings.LastIndex(raw, ")")
	if open == -1 || close == -1 || close <= open {
		return "", fmt.Errorf("invalid stat format")
	}
	return raw[open+1 : close], nil
}

// ReadUID returns the real uid from /proc/<pid>/status.
func (fs FS) ReadUID(pid int) (uint32, error) {
	f, err := os.Open(fs.pidPath(pid, "status"))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Uid:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		uid, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid %q", fields[1])
		}
		return uint32(uid), nil
	}
	return 0, fmt.Errorf("no Uid line in status for pid %d", pid)
}

// ReadContainerID applies the container heuristic to /proc/<pid>/cgroup.
func (fs FS) ReadContainerID(pid int) (string, bool) {
	data, err := os.ReadFile(fs.pidPath(pid, "cgroup"))
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(data), "\n") {
		// hierarchy-ID:controller-list:cgroup-path
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		if id, ok := ContainerFromCgroupPath(parts[2]); ok {
			return id, true
		}
	}
	return "", false
}

// ContainerFromCgroupPath derives a best-effort container id from a cgroup
// path: the segment after "docker/", the systemd "docker-<id>.scope" unit,
// or the last segment of a kubepods path.
func ContainerFromCgroupPath(path string) (string, bool) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "", false
	}

	if _, rest, ok := strings.Cut(path, "docker/"); ok {
		id, _, _ := strings.Cut(rest, "/")
		if id != "" {
			return id, true
		}
	}
	if _, rest, ok := strings.Cut(path, "docker-"); ok {
		if id, _, ok := strings.Cut(rest, ".scope"); ok && id != "" && !strings.Contains(id, "/") {
			return id, true
		}
	}
	if strings.Contains(path, "kubepods/") || (strings.HasPrefix(path, "kubepods") && strings.Contains(path, "/")) {
		last := path[strings.LastIndex(path, "/")+1:]
		if last != "" {
			return last, true
		}
	}
	return "", false
}

// socketInodes lists the socket inodes referenced by /proc/<pid>/fd.
func (fs FS) socketInodes(pid int) ([]uint64, error) {
	fdPath := fs.pidPath(pid, "fd")
	fds, err := os.ReadDir(fdPath)
	if err != nil {
		return nil, err
	}

	var inodes []uint64
	for _, fd := range fds {
		link, err := os.Readlink(fdPath + "/" + fd.Name())
		if err != nil {
			continue
		}
		if !strings.HasPrefix(link, "socket:[") {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
		inode, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		inodes = append(inodes, inode)
	}
	return inodes, nil
}
