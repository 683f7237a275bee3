// Deployment helper for Windows server provisioning.
//
// Subcommands:
//   - fetch: download an artifact from Artifactory
//   - install-config: install the monitoring agent config and restart the agent
//   - region: print the instance's region
//   - stack-name: print the instance's CloudFormation stack name
//   - db-exists: report whether a database exists on a server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/davidobrien1985/deploymenthelper/internal/artifactory"
	"github.com/davidobrien1985/deploymenthelper/internal/config"
	"github.com/davidobrien1985/deploymenthelper/internal/dbcheck"
	"github.com/davidobrien1985/deploymenthelper/internal/metadata"
	"github.com/davidobrien1985/deploymenthelper/internal/monitoring"
	"github.com/davidobrien1985/deploymenthelper/internal/secrets"
)

var (
	Version   = "0.2.0"
	BuildTime = "unknown"
)

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version", "-version", "--version":
		fmt.Printf("deployment-helper %s (built %s)\n", Version, BuildTime)
	case "fetch":
		runFetch(os.Args[2:])
	case "install-config":
		runInstallConfig(os.Args[2:])
	case "region":
		runRegion()
	case "stack-name":
		runStackName()
	case "db-exists":
		runDBExists(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: deployment-helper <command> [flags]

Commands:
  fetch           Download an artifact from Artifactory
  install-config  Install the monitoring agent config and restart the agent
  region          Print the instance's region
  stack-name      Print the instance's CloudFormation stack name
  db-exists       Report whether a database exists (exit 0 yes, 1 no, 2 check failed)
  version         Print version and exit
`)
}

func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	path := fs.String("path", "", "Artifact path beginning with / (required)")
	out := fs.String("out", "", "Local output path (required)")
	host := fs.String("host", "", "Artifactory base URL")
	apiKey := fs.String("api-key", "", "Artifactory API key")
	useStore := fs.Bool("use-parameter-store", false, "Resolve credentials from the managed parameter store")
	cfgPath := fs.String("config", "", "Config file path (optional)")
	fs.Parse(args)

	if *path == "" || *out == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	ctx := context.Background()

	opts := artifactory.ResolveOptions{
		UseParameterStore: *useStore || cfg.UseParameterStore,
		APIKey:            firstNonEmpty(*apiKey, cfg.ArtifactoryAPIKey),
		Endpoint:          firstNonEmpty(*host, cfg.ArtifactoryHost),
	}
	if opts.UseParameterStore {
		store, err := secrets.NewParameterStore(ctx)
		if err != nil {
			log.Fatalf("Parameter store: %v", err)
		}
		opts.Store = store
	}

	creds, err := artifactory.Resolve(ctx, opts)
	if err != nil {
		log.Fatalf("Resolve credentials: %v", err)
	}

	client := artifactory.NewClient(creds, artifactory.Options{
		Timeout: time.Duration(cfg.FetchTimeout) * time.Second,
		Retries: cfg.FetchRetries,
	})

	if err := client.Fetch(ctx, *path, *out); err != nil {
		var rejected *artifactory.RemoteRejectedError
		switch {
		case errors.Is(err, artifactory.ErrMissingConfiguration):
			log.Fatalf("Fetch: no API key or host configured (set %s/%s, pass -api-key/-host, or use -use-parameter-store)",
				artifactory.EnvAPIKey, artifactory.EnvHost)
		case errors.As(err, &rejected) && rejected.AuthFailure():
			log.Fatalf("Fetch: repository rejected the API key (HTTP %d)", rejected.StatusCode)
		case errors.As(err, &rejected) && rejected.NotFound():
			log.Fatalf("Fetch: artifact %s not found", *path)
		default:
			log.Fatalf("Fetch: %v", err)
		}
	}
}

func runInstallConfig(args []string) {
	fs := flag.NewFlagSet("install-config", flag.ExitOnError)
	source := fs.String("source", "", "Rendered agent config to install (required)")
	cfgPath := fs.String("config", "", "Config file path (optional)")
	fs.Parse(args)

	if *source == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	inst := monitoring.NewInstaller()
	if cfg.MonitoringConfigDest != "" {
		inst.ConfigDest = cfg.MonitoringConfigDest
	}
	if cfg.MonitoringService != "" {
		inst.ServiceName = cfg.MonitoringService
	}

	if err := inst.InstallConfig(*source); err != nil {
		log.Fatalf("Install config: %v", err)
	}
}

func runRegion() {
	region, err := metadata.New().Region(context.Background())
	if err != nil {
		log.Fatalf("Region: %v", err)
	}
	fmt.Println(region)
}

func runStackName() {
	name, err := metadata.New().StackName(context.Background())
	if err != nil {
		log.Fatalf("Stack name: %v", err)
	}
	fmt.Println(name)
}

func runDBExists(args []string) {
	fs := flag.NewFlagSet("db-exists", flag.ExitOnError)
	server := fs.String("server", "", "Database server address (host[:port] or connection URL)")
	name := fs.String("name", "", "Database name (required)")
	cfgPath := fs.String("config", "", "Config file path (optional)")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	addr := firstNonEmpty(*server, cfg.DatabaseServer)
	if addr == "" || *name == "" {
		fs.Usage()
		os.Exit(2)
	}

	exists, err := dbcheck.NewChecker().Exists(context.Background(), addr, *name)
	if err != nil {
		// A failed check is not the same answer as "absent".
		log.Printf("db-exists: %v", err)
		os.Exit(2)
	}
	if exists {
		fmt.Println("true")
		return
	}
	fmt.Println("false")
	os.Exit(1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
