package dncpd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shurlinet/dncp/internal/config"
	"github.com/shurlinet/dncp/internal/dnssd"
	"github.com/shurlinet/dncp/internal/prefix"
	"github.com/shurlinet/dncp/internal/transport"
	"github.com/shurlinet/dncp/internal/watchdog"
	"github.com/shurlinet/dncp/pkg/dncp"
)

// Daemon owns the Core, the transport, the control API, and the metrics
// registry for one dncpd process, wiring internal/config's resolved
// settings into pkg/dncp.Config the way a daemon main would.
type Daemon struct {
	core       *dncp.Core
	transport  *transport.UDP
	server     *Server
	metrics    *Metrics
	metricsSrv *http.Server
	routerName *dnssd.RouterName
	assigner   *prefix.Assigner

	version   string
	userAgent string
	startedAt time.Time
}

// New builds a Daemon from resolved configuration. It enables every
// configured endpoint but does not start serving; call Run for that.
func New(resolved *config.Resolved, version string) (*Daemon, error) {
	tr, err := transport.New(dncp.Port)
	if err != nil {
		return nil, fmt.Errorf("dncpd: create transport: %w", err)
	}

	metrics := NewMetrics(version, goVersionString())

	var nodeID dncp.NodeID
	if resolved.NodeID != "" {
		raw, err := hex.DecodeString(resolved.NodeID)
		if err != nil {
			tr.Close()
			return nil, fmt.Errorf("dncpd: decode identity.node_id: %w", err)
		}
		nodeID = dncp.NewNodeID(raw)
	}

	core, err := dncp.New(dncp.Config{
		NodeID:            nodeID,
		NodeIDLen:         resolved.NodeIDLen,
		Imin:              resolved.Imin,
		Imax:              resolved.Imax,
		K:                 resolved.K,
		KeepAliveInterval: resolved.KeepAliveInterval,
		GracePeriod:       resolved.GracePeriod,
		Version:           resolved.ProfileVersion,
		UserAgent:         resolved.UserAgent,
		Transport:         tr,
		Metrics:           metrics,
	})
	if err != nil {
		tr.Close()
		return nil, fmt.Errorf("dncpd: create core: %w", err)
	}

	d := &Daemon{
		core:      core,
		transport: tr,
		metrics:   metrics,
		version:   version,
		userAgent: resolved.UserAgent,
		startedAt: time.Now(),
	}
	d.server = NewServer(resolved.APIListenAddress, d, metrics)
	if resolved.MetricsEnabled {
		d.metricsSrv = &http.Server{
			Addr:    resolved.MetricsListenAddr,
			Handler: metrics.Handler(),
		}
	}

	d.routerName = dnssd.NewRouterName(core, resolved.RouterNameBase)
	core.Subscribe(d.routerName.Subscriber())

	d.assigner = prefix.NewAssigner(core, resolved.AssignLength)
	if resolved.DelegatedPrefix != nil {
		if err := d.assigner.SetDelegatedPrefix(resolved.DelegatedPrefix); err != nil {
			d.Close()
			return nil, fmt.Errorf("dncpd: publish delegated prefix: %w", err)
		}
	}

	for _, ep := range resolved.Endpoints {
		iface, err := interfaceIndex(ep.Interface)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("dncpd: resolve endpoint %s: %w", ep.Interface, err)
		}
		if _, err := core.EnableEndpoint(ep.Interface, iface); err != nil {
			d.Close()
			return nil, fmt.Errorf("dncpd: enable endpoint %s: %w", ep.Interface, err)
		}
		if err := d.assigner.EnableEndpoint(ep.Interface, localEndpointID(core, ep.Interface)); err != nil {
			d.Close()
			return nil, fmt.Errorf("dncpd: assign prefix to %s: %w", ep.Interface, err)
		}
	}
	return d, nil
}

// localEndpointID looks up the LocalEndpointID pkg/dncp assigned to a
// just-enabled endpoint, for tagging its ASSIGNED_PREFIX TLV.
func localEndpointID(core *dncp.Core, name string) uint32 {
	for _, ep := range core.Endpoints() {
		if ep.Name == name {
			return ep.LocalEndpointID
		}
	}
	return 0
}

// Core satisfies RuntimeInfo.
func (d *Daemon) Core() *dncp.Core { return d.core }

// StartedAt satisfies RuntimeInfo.
func (d *Daemon) StartedAt() time.Time { return d.startedAt }

// Version satisfies RuntimeInfo.
func (d *Daemon) Version() string { return d.version }

// UserAgent satisfies RuntimeInfo.
func (d *Daemon) UserAgent() string { return d.userAgent }

// Run blocks serving the control API until it stops or errors. If metrics
// are enabled it serves them concurrently on their own listener. Once the
// control API is accepting connections it notifies systemd (if run under
// it) and starts heartbeating the watchdog. Every datagram the transport
// receives is fed into the Core via Core.Deliver until Run returns.
func (d *Daemon) Run() error {
	recvCtx, stopRecv := context.WithCancel(context.Background())
	defer stopRecv()
	go func() {
		for {
			ib, err := d.transport.Recv(recvCtx)
			if err != nil {
				return
			}
			d.core.Deliver(ib)
		}
	}()

	if d.metricsSrv != nil {
		go func() {
			if err := d.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.core.Close()
			}
		}()
	}

	watchdogCtx, stopWatchdog := context.WithCancel(context.Background())
	defer stopWatchdog()
	watchdog.Ready()
	go watchdog.Run(watchdogCtx, watchdog.Config{}, []watchdog.HealthCheck{
		{Name: "node-reachable", Check: d.healthCheck},
	})

	err := d.server.Start()
	watchdog.Stopping()
	return err
}

// healthCheck reports this node's own liveness: it must always appear as
// a reachable node in its own store.
func (d *Daemon) healthCheck() error {
	store := d.core.Store()
	own, ok := store.Find(store.OwnID())
	if !ok {
		return fmt.Errorf("dncpd: own node missing from store")
	}
	if !own.Reachable {
		return fmt.Errorf("dncpd: own node not reachable in store")
	}
	return nil
}

// Close stops the control API, the metrics server, the Core, and the
// transport.
func (d *Daemon) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if d.metricsSrv != nil {
		d.metricsSrv.Shutdown(ctx)
	}
	d.server.Stop(ctx)
	d.routerName.Close()
	d.core.Close()
	return d.transport.Close()
}
