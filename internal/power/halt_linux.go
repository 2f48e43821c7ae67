//go:build linux

package power

import "golang.org/x/sys/unix"

// SystemHalt flushes filesystems and powers the host off. It needs CAP_SYS_BOOT.
func SystemHalt() error {
	unix.Sync()
	return unix.Reboot(unix.LINUX_REBOOT_CMD_POWER_OFF)
}
