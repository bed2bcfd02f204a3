package main

import (
	"flag"
	"net/http"

	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/deploy"
	"github.com/bidconnect/exchange-connector/router"
	"github.com/bidconnect/exchange-connector/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/golang/glog"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/viper"
)

// Rev holds binary revision string
// Set manually at build time using:
//
//	go build -ldflags "-X main.Rev=`git rev-parse --short HEAD` -X main.Version=`git describe --tags`"
var Rev string

// Version holds the release tag the binary was built from.
var Version string

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	// write PID to file for deploy management
	if cfg.DeployPID.Enabled {
		pid, err := deploy.WritePIDFile(cfg.DeployPID.Path, cfg.DeployPID.Mode)
		if err != nil {
			glog.Fatalf("error writing pid[%d]: %s", pid, err)
		}
	}

	err = serve(Version, Rev, cfg)
	if err != nil {
		glog.Exitf("exchange-connector failed: %v", err)
	}
}

const configFileName = "connector"

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

func serve(version, revision string, cfg *config.Configuration) error {
	conversions := currency.ConversionsFromTable(cfg.CurrencyRates)

	r, err := router.New(cfg, conversions)
	if err != nil {
		return err
	}
	defer r.Shutdown()

	auctionRoutes := make(map[string]bool, len(r.AuctionRoutes))
	for _, route := range r.AuctionRoutes {
		auctionRoutes[route] = true
	}

	corsRouter := router.SupportCORS(r)
	// only auction routes are traced
	otelHandler := otelhttp.NewHandler(corsRouter, "exchange-connector/auction",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return auctionRoutes[r.URL.Path]
		}),
	)

	var registry gometrics.Registry
	if r.MetricsEngine.GoMetrics != nil {
		registry = r.MetricsEngine.GoMetrics.MetricsRegistry
	}
	admin := router.Admin(version, revision, cfg, conversions, r.Agents, registry)

	return server.Listen(cfg, router.NoCache{Handler: otelHandler}, admin, r.MetricsEngine)
}
