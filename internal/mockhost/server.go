package mockhost

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"greenrun/internal/catalog"
	"greenrun/internal/logging"
	"greenrun/internal/telnet"
)

// Server is the mock TN5250 host: a TCP listener plus the read-only
// catalog, navigation config, and data store every connection negotiates
// and renders against (spec §4.11 "Session + TCP server").
type Server struct {
	BindAddress string
	Port        int

	Catalog    *catalog.Catalog
	Navigation *NavigationConfig
	Store      *DataStore

	connections prometheus.Gauge
	sessions    prometheus.Counter
}

// NewServer builds a Server bound to addr:port, serving the given
// read-only catalog/navigation/data-store triple.
func NewServer(bindAddress string, port int, cat *catalog.Catalog, nav *NavigationConfig, store *DataStore, reg prometheus.Registerer) *Server {
	if bindAddress == "" {
		bindAddress = "127.0.0.1"
	}
	s := &Server{
		BindAddress: bindAddress,
		Port:        port,
		Catalog:     cat,
		Navigation:  nav,
		Store:       store,
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "greenrun_mockhost_connections",
			Help: "Current number of open mock TN5250 connections.",
		}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greenrun_mockhost_sessions_total",
			Help: "Total number of mock TN5250 sessions accepted.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.connections, s.sessions)
	}
	return s
}

// Listen opens the TCP listener without serving it, so a caller (tests, in
// particular) can discover the actual bound port before Serve starts
// accepting connections.
func (s *Server) Listen() (net.Listener, error) {
	addr := fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("mockhost: listen %s: %w", addr, err)
	}
	return ln, nil
}

// ListenAndServe opens a listener at s.BindAddress:s.Port and serves it
// until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, running each
// connection's session under one errgroup. Cancellation closes the
// listener; open sessions are not closed by it, and Serve doesn't return
// until every session has exited (spec §5 "Isolation", §7 "Concurrency").
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logging.Get(logging.CategoryMockhost)
	log.Info("mock TN5250 server listening on %s", ln.Addr())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})

	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return g.Wait()
			default:
				return fmt.Errorf("mockhost: accept: %w", err)
			}
		}

		id := uuid.NewString()
		s.connections.Inc()
		s.sessions.Inc()
		g.Go(func() error {
			defer s.connections.Dec()
			defer nc.Close()
			if err := s.serveConn(nc, id); err != nil {
				log.Warn("session %s: %v", id, err)
			}
			return nil
		})
	}
}

func (s *Server) serveConn(nc net.Conn, id string) error {
	res, err := telnet.Negotiate(nc, telnet.Config{Role: telnet.RoleServer})
	if err != nil {
		return fmt.Errorf("telnet negotiation failed: %w", err)
	}
	return runSession(id, nc, s.Catalog, s.Navigation, s.Store, res.Pending)
}
