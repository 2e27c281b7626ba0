// Package main implements the lattice-alter command line tool. It compiles a
// YAML alteration plan into a single request and either prints it or sends it
// to the metadata service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/internal/transport"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		planFile    string
		configFile  string
		addr        string
		dryRun      bool
		showVersion bool
	)

	flag.StringVar(&planFile, "plan", "", "Path to the alteration plan (YAML)")
	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&addr, "addr", "", "Metadata service address (overrides config)")
	flag.BoolVar(&dryRun, "dry-run", false, "Compile and print the request without sending it")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lattice-alter - compile and submit table alterations\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lattice-alter --plan plan.yaml [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lattice-alter --plan add-column.yaml --addr localhost:9090\n")
		fmt.Fprintf(os.Stderr, "  lattice-alter --plan rename.yaml --dry-run\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  LATTICE_SERVICE_ADDR          Metadata service address\n")
		fmt.Fprintf(os.Stderr, "  LATTICE_SERVICE_CALL_TIMEOUT  Per-call timeout (e.g. 30s)\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("lattice-alter version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if planFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(configFile, addr)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	plan, err := LoadPlan(planFile)
	if err != nil {
		log.Fatalf("Failed to load plan: %v", err)
	}

	alterer, err := plan.Alterer()
	if err != nil {
		log.Fatalf("Invalid plan: %v", err)
	}

	req, err := alterer.Build()
	if err != nil {
		log.Fatalf("Failed to compile alteration: %v", err)
	}

	if dryRun {
		out, err := json.MarshalIndent(req, "", "  ")
		if err != nil {
			log.Fatalf("Failed to render request: %v", err)
		}
		fmt.Println(string(out))
		log.Printf("dry run: %d steps, %d wire bytes", len(req.Steps), len(req.Marshal()))
		return
	}

	client, err := transport.Dial(cfg.Service.Addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Service.CallTimeout)
	defer cancel()

	resp, err := client.AlterTable(ctx, req)
	if err != nil {
		log.Fatalf("Alteration failed: %v", err)
	}
	log.Printf("Altered table %s (schema version %d)", resp.TableID, resp.SchemaVersion)
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, addr string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if addr != "" {
		cfg.Service.Addr = addr
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
