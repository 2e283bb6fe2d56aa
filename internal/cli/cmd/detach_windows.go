//go:build windows

package cmd

import "syscall"

func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{HideWindow: true}
}
