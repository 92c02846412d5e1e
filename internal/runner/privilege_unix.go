//go:build !windows

package runner

import "golang.org/x/sys/unix"

// isPrivileged reports whether raw frames can be captured without extra
// capabilities
func isPrivileged() bool {
	return unix.Geteuid() == 0
}
