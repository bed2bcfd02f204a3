package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/metrics"
	metricsconfig "github.com/bidconnect/exchange-connector/metrics/config"
	"github.com/golang/glog"
)

const shutdownTimeout = 10 * time.Second

// namedServer is one of the listeners run by Listen. Connections to it are counted
// when metrics is set.
type namedServer struct {
	name    string
	server  *http.Server
	metrics metrics.MetricsEngine
}

// Listen serves exchange requests on the main port and the admin routes on the admin port,
// plus Prometheus metrics when they are enabled. It blocks until SIGTERM or SIGINT, then
// shuts every server down gracefully.
func Listen(cfg *config.Configuration, handler http.Handler, adminHandler http.Handler, me *metricsconfig.DetailedMetricsEngine) error {
	servers, err := newServers(cfg, handler, adminHandler, me)
	if err != nil {
		return err
	}

	listeners := make([]net.Listener, 0, len(servers))
	for _, s := range servers {
		ln, err := newListener(s.server.Addr, s.metrics)
		if err != nil {
			for _, open := range listeners {
				open.Close()
			}
			return fmt.Errorf("%s server: %w", s.name, err)
		}
		listeners = append(listeners, ln)
	}

	stopSignals := make(chan os.Signal, 1)
	signal.Notify(stopSignals, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(stopSignals)

	// Fan the stop signal out to each server for graceful shutdowns.
	done := make(chan struct{})
	stoppers := make([]chan<- os.Signal, len(servers))
	for i, s := range servers {
		stop := make(chan os.Signal)
		stoppers[i] = stop
		go shutdownAfterSignals(s.server, stop, done)
		go runServer(s.server, s.name, listeners[i])
	}

	wait(stopSignals, done, stoppers...)
	return nil
}

func newServers(cfg *config.Configuration, handler http.Handler, adminHandler http.Handler, me *metricsconfig.DetailedMetricsEngine) ([]namedServer, error) {
	mainServer := namedServer{name: "Main", server: newMainServer(cfg, handler)}
	if me != nil {
		mainServer.metrics = me
	}
	servers := []namedServer{
		mainServer,
		{name: "Admin", server: newAdminServer(cfg, adminHandler)},
	}

	if cfg.Metrics.Prometheus.Port != 0 {
		prometheusServer, err := newPrometheusServer(cfg, me)
		if err != nil {
			return nil, err
		}
		servers = append(servers, namedServer{name: "Prometheus", server: prometheusServer})
	}
	return servers, nil
}

func newAdminServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.AdminPort)),
		Handler: handler,
	}
}

func newMainServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	if cfg.EnableGzip {
		handler = gziphandler.GzipHandler(handler)
	}

	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

func runServer(server *http.Server, name string, listener net.Listener) error {
	var err error
	switch {
	case server == nil:
		err = errors.New("server is nil")
	case listener == nil:
		err = errors.New("listener is nil")
	default:
		glog.Infof("%s server starting on: %s", name, server.Addr)
		err = server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
	}
	glog.Errorf("%s server quit with error: %v", name, err)
	return err
}

func newListener(address string, me metrics.MetricsEngine) (net.Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("error listening for TCP connections on %s: %v", address, err)
	}

	if me != nil {
		ln = &monitorableListener{ln, me}
	}
	return ln, nil
}

// wait blocks until a signal arrives on inbound, forwards it to every outbound channel and
// returns once each of them has reported on done.
func wait(inbound <-chan os.Signal, done <-chan struct{}, outbound ...chan<- os.Signal) {
	sig := <-inbound

	for _, out := range outbound {
		go func(out chan<- os.Signal) {
			out <- sig
		}(out)
	}
	for range outbound {
		<-done
	}
}

func shutdownAfterSignals(server *http.Server, stopper <-chan os.Signal, done chan<- struct{}) {
	sig := <-stopper

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	glog.Infof("Stopping %s because of signal: %s", server.Addr, sig)
	if err := server.Shutdown(ctx); err != nil {
		glog.Errorf("Failed to shutdown %s: %v", server.Addr, err)
	}
	done <- struct{}{}
}
