// Package monitoring installs the monitoring agent configuration on a
// provisioned server and bounces the agent service so it picks the file up.
package monitoring

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Defaults for the Datadog agent on Windows.
const (
	DefaultConfigDest  = `C:\ProgramData\Datadog\datadog.yaml`
	DefaultServiceName = "DatadogAgent"
)

// Installer copies a rendered agent config into place and restarts the
// agent service.
type Installer struct {
	ConfigDest  string
	ServiceName string

	// restart is swapped out in tests.
	restart func(serviceName string) error
}

// NewInstaller returns an installer with the Windows Datadog defaults.
func NewInstaller() *Installer {
	return &Installer{
		ConfigDest:  DefaultConfigDest,
		ServiceName: DefaultServiceName,
		restart:     restartService,
	}
}

// InstallConfig validates that sourcePath exists, overwrites the destination
// config and restarts the agent service.
func (i *Installer) InstallConfig(sourcePath string) error {
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("config source %s: %w", sourcePath, err)
	}

	if err := copyFile(sourcePath, i.ConfigDest); err != nil {
		return fmt.Errorf("install config: %w", err)
	}
	log.Printf("[monitoring] Installed %s to %s", sourcePath, i.ConfigDest)

	restart := i.restart
	if restart == nil {
		restart = restartService
	}
	if err := restart(i.ServiceName); err != nil {
		return fmt.Errorf("restart %s: %w", i.ServiceName, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
