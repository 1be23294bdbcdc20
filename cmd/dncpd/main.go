// Command dncpd runs the distributed node configuration protocol daemon:
// it joins the configured interfaces' DNCP multicast group, gossips node
// state with neighbors, and exposes a local status/control API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/shurlinet/dncp/internal/config"
	"github.com/shurlinet/dncp/internal/dncpd"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to dncpd config file (default: search standard locations)")
	printVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Printf("dncpd %s (%s)\n", version, commit)
		fmt.Printf("Go %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return
	}

	path, err := config.FindConfigFile(*configPath)
	if err != nil {
		log.Fatalf("dncpd: locate config: %v", err)
	}

	enforceCtx, stopEnforce := context.WithCancel(context.Background())
	defer stopEnforce()
	if deadline, err := config.CheckPending(path); err != nil {
		slog.Warn("dncpd: check commit-confirmed state", "error", err)
	} else if !deadline.IsZero() {
		go config.EnforceCommitConfirmed(enforceCtx, path, deadline, os.Exit)
	}

	cfg, err := config.LoadDaemonConfig(path)
	if err != nil {
		log.Fatalf("dncpd: load config %s: %v", path, err)
	}
	resolved, err := config.Resolve(cfg)
	if err != nil {
		log.Fatalf("dncpd: resolve config: %v", err)
	}

	d, err := dncpd.New(resolved, version)
	if err != nil {
		log.Fatalf("dncpd: start: %v", err)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		slog.Info("dncpd: shutting down")
		d.Close()
	}()

	if err := d.Run(); err != nil {
		log.Fatalf("dncpd: %v", err)
	}
}
