package router

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"path"
	"sort"

	"github.com/bidconnect/exchange-connector/adapters"
	agentConfig "github.com/bidconnect/exchange-connector/agentconfig/config"
	"github.com/bidconnect/exchange-connector/auction"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/endpoints"
	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/bidconnect/exchange-connector/exchange"
	"github.com/bidconnect/exchange-connector/logger"
	metricsConf "github.com/bidconnect/exchange-connector/metrics/config"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/bidconnect/exchange-connector/router/aspects"
	"github.com/bidconnect/exchange-connector/util/task"
	"github.com/julienschmidt/httprouter"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/rcrowley/go-metrics/exp"
	"github.com/rs/cors"
)

const winNoticeRoute = "/win/:exchange"

type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

// Router serves the exchange-facing routes: one auction route per enabled exchange and the win notices.
type Router struct {
	*httprouter.Router
	MetricsEngine *metricsConf.DetailedMetricsEngine
	Agents        *exchange.AgentStore
	// AuctionRoutes lists the path of every auction route, sorted.
	AuctionRoutes []string
	Shutdown      func()
}

// New builds the connectors of every enabled exchange, starts the agent configuration
// refresh and registers the routes which use them.
func New(cfg *config.Configuration, conversions currency.Conversions) (r *Router, err error) {
	r = &Router{
		Router: httprouter.New(),
	}

	r.MetricsEngine = metricsConf.NewMetricsEngine(cfg, openrtb_ext.CoreExchangeNames())

	connectors, errs := exchange.BuildConnectors(cfg, conversions)
	if len(errs) > 0 {
		return nil, errortypes.NewAggregateErrors("Failed to initialize connectors", errs)
	}

	fetcher, shutdownFetcher := agentConfig.NewFetcher(cfg.AgentConfigs)
	r.Agents = exchange.NewAgentStore(fetcher, connectors, r.MetricsEngine)

	agentsTask := task.NewTickerTask("agent_configs", cfg.AgentConfigs.RefreshRate(), r.Agents)
	agentsTask.Start()

	r.Shutdown = func() {
		agentsTask.Stop()
		shutdownFetcher()
	}

	exchanges := cfg.EnabledExchanges()
	decoders := make(map[openrtb_ext.ExchangeName]adapters.WinPriceDecoder, len(connectors))
	for name, connector := range connectors {
		exchangeCfg := exchanges[name]
		runner := auction.NewLocalRunner(conversions, exchangeCfg.Currency)
		auctionEndpoint, err := endpoints.NewAuctionEndpoint(connector, r.Agents, runner, cfg.Auction, r.MetricsEngine)
		if err != nil {
			r.Shutdown()
			return nil, fmt.Errorf("%s: %v", name, err)
		}

		if cfg.Auction.RequestTimeoutHeaders.Enabled() {
			auctionEndpoint = aspects.QueuedRequestTimeout(auctionEndpoint, cfg.Auction.RequestTimeoutHeaders, connector, r.MetricsEngine)
		}

		route := AuctionRoute(name, exchangeCfg)
		r.Handle(exchangeCfg.AuctionVerb, route, auctionEndpoint)
		r.AuctionRoutes = append(r.AuctionRoutes, route)
		logger.Infof("Serving %s auctions on %s %s", name, exchangeCfg.AuctionVerb, route)

		if decoder, ok := connector.(adapters.WinPriceDecoder); ok {
			decoders[name] = decoder
		}
	}
	sort.Strings(r.AuctionRoutes)

	r.GET(winNoticeRoute, endpoints.NewWinNoticeEndpoint(decoders, cfg.WinNotice, r.MetricsEngine))
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))

	return r, nil
}

// AuctionRoute is the path an exchange sends its bid requests to: the configured auction
// resource followed by the exchange name.
func AuctionRoute(name openrtb_ext.ExchangeName, cfg config.Exchange) string {
	return path.Join("/", cfg.AuctionResource, name.String())
}

// Admin returns the handler of the admin port.
func Admin(version, revision string, cfg *config.Configuration, conversions currency.Conversions, agents endpoints.AgentStatusSource, registry gometrics.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/version", endpoints.NewVersionEndpoint(version, revision))
	mux.HandleFunc("/currency/rates", endpoints.NewCurrencyRatesEndpoint(conversions))
	mux.Handle("/status", adapt(endpoints.NewStatusEndpoint(cfg.StatusResponse)))
	mux.Handle("/agents", adapt(endpoints.NewAgentStatusEndpoint(agents)))
	if registry != nil {
		mux.Handle("/metrics", exp.ExpHandler(registry))
	}

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func adapt(handle httprouter.Handle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle(w, r, nil)
	})
}

func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
