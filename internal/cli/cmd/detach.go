package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const pidFileName = "cliprecall.pid"

// detach re-runs the current command line without --detach as a
// background process and records its PID next to the socket.
func detach(out io.Writer) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	args := make([]string, 0, len(os.Args))
	for _, arg := range os.Args[1:] {
		if arg == "--detach" || strings.HasPrefix(arg, "--detach=") {
			continue
		}
		args = append(args, arg)
	}

	proc := exec.Command(executable, args...)
	proc.SysProcAttr = detachedAttr()

	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer null.Close()
	proc.Stdin, proc.Stdout, proc.Stderr = null, null, null

	if err := proc.Start(); err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	pidFile := pidFilePath()
	if err := os.MkdirAll(filepath.Dir(pidFile), 0700); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(proc.Process.Pid)), 0644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}

	fmt.Fprintf(out, "cliprecall started in background (PID: %d)\n", proc.Process.Pid)
	return proc.Process.Release()
}

func pidFilePath() string {
	return filepath.Join(filepath.Dir(cfg.SocketPath()), pidFileName)
}

// readPID returns the PID recorded by the last detached start, or 0.
func readPID() int {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
