//go:build windows

package monitoring

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

const stopTimeout = 30 * time.Second

// restartService stops and starts a service through the Windows SCM,
// waiting for the stop to complete before starting again.
func restartService(name string) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to service manager: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err != nil {
		return fmt.Errorf("open service %s: %w", name, err)
	}
	defer s.Close()

	status, err := s.Query()
	if err != nil {
		return fmt.Errorf("query service %s: %w", name, err)
	}

	if status.State != svc.Stopped {
		status, err = s.Control(svc.Stop)
		if err != nil {
			return fmt.Errorf("stop service %s: %w", name, err)
		}
		deadline := time.Now().Add(stopTimeout)
		for status.State != svc.Stopped {
			if time.Now().After(deadline) {
				return fmt.Errorf("service %s did not stop within %s", name, stopTimeout)
			}
			time.Sleep(500 * time.Millisecond)
			status, err = s.Query()
			if err != nil {
				return fmt.Errorf("query service %s: %w", name, err)
			}
		}
	}

	if err := s.Start(); err != nil {
		return fmt.Errorf("start service %s: %w", name, err)
	}

	log.Printf("[monitoring] Service %s restarted", name)
	return nil
}
