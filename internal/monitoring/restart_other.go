//go:build !windows

package monitoring

import "fmt"

// restartService is Windows-only; the monitoring agent service lives under
// the Windows SCM.
func restartService(name string) error {
	return fmt.Errorf("restarting service %s: only supported on windows", name)
}
