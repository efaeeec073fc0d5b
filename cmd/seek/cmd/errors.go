package cmd

import (
	"errors"
	"fmt"
	"os"

	berrors "go.etcd.io/bbolt"

	"github.com/corey/seek/internal/adapters/socket"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
func isDBLockError(err error) bool {
	return errors.Is(err, berrors.ErrTimeout)
}

// diagnoseDBLock returns actionable guidance when a bbolt open fails due to
// lock contention. It distinguishes a running daemon, a stale socket, and an
// unknown lock holder.
func diagnoseDBLock(sockPath string) string {
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "database is locked by the running daemon\n" +
			"  → stop it first:  seek daemon stop\n" +
			"  → then retry your command"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("database is locked; daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'seek daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'seek'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}

// explainStoreError adds lock guidance to store open failures.
func explainStoreError(err error, sockPath string) error {
	if isDBLockError(err) {
		return fmt.Errorf("%w\n%s", err, diagnoseDBLock(sockPath))
	}
	return err
}
