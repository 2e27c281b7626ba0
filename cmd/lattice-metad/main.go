// Package main implements the Lattice metadata service daemon. It serves the
// AlterTable RPC backed by the SQLite catalog and optionally propagates
// applied alterations to an external catalog store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/latticedb/lattice/internal/catalog"
	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/internal/storage"
	"github.com/latticedb/lattice/internal/transport"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		addr        string
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&addr, "addr", "", "gRPC listen address (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lattice-metad - Lattice metadata service\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lattice-metad [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  LATTICE_DATA_DIR      Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  LATTICE_SERVICE_ADDR  gRPC listen address\n")
		fmt.Fprintf(os.Stderr, "  LATTICE_STORAGE_TYPE  External catalog storage type (local, s3)\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("lattice-metad version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, dataDir, addr)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	cat, err := catalog.NewCatalog(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer cat.Close()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize external catalog storage: %v", err)
	}
	cat.AttachExternalCatalog(store, cfg.Catalog.ExternalPrefix)

	lis, err := net.Listen("tcp", cfg.Service.Addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.Service.Addr, err)
	}

	server := grpc.NewServer()
	transport.NewMetadataServer(cat).Register(server)

	log.Printf("lattice-metad %s listening on %s (catalog %s, storage %s)",
		version, cfg.Service.Addr, cfg.Catalog.Path, cfg.Storage.Type)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(lis)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
		server.GracefulStop()
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Serve error: %v", err)
		}
	}
}

// newStore builds the external catalog object store from configuration.
func newStore(cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.Storage.Type {
	case "local":
		return storage.NewLocalStore(cfg.Storage.Path)
	case "s3":
		return storage.NewS3Store(context.Background(), cfg.Storage.S3.Bucket, storage.S3Config{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, dataDir, addr string) (*config.Config, error) {
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

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if addr != "" {
		cfg.Service.Addr = addr
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
