//go:build windows

package runner

// isPrivileged always reports true: Npcap decides access on Windows
func isPrivileged() bool {
	return true
}
