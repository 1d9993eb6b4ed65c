package pusher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cryptopusher/config"
	"cryptopusher/internal/alert"
	"cryptopusher/internal/memorystore"
	"cryptopusher/internal/notification"
	"cryptopusher/internal/server"
	"cryptopusher/internal/stream"
	"cryptopusher/pkg/binance"
	"cryptopusher/pkg/coingecko"
	"cryptopusher/pkg/fcm"
	"cryptopusher/pkg/google"
	"cryptopusher/pkg/notify"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App owns every long-lived component of the service.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	book     *alert.ThresholdBook
	store    *memorystore.PriceStore
	gate     *alert.Gate
	throttle *alert.Throttle

	ingestor *Ingestor
	monitor  *Monitor
	sender   *Sender
	ws       *binance.WSClient
	http     *http.Server

	closers []func() error
}

// New wires the service from cfg. Thresholds are loaded here: a service
// without valid thresholds refuses to start.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	return newApp(ctx, cfg, config.NewParameterStore(), logger)
}

func newApp(ctx context.Context, cfg *config.Config, params config.ParameterGetter, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:      cfg,
		logger:   logger,
		gate:     alert.NewGate(),
		throttle: alert.NewThrottle(),
	}

	metas := make([]memorystore.Meta, 0, len(cfg.Symbols))
	pairMap := make(map[string]string, len(cfg.Symbols))
	geckoIDs := make(map[string]string, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		metas = append(metas, memorystore.Meta{Symbol: s.Symbol, DisplayName: s.Name})
		pairMap[s.Symbol] = s.BinancePair
		geckoIDs[s.Symbol] = s.CoinGeckoID
	}
	pairs := binance.NewPairs(pairMap)

	// Thresholds
	source, closeSource, err := OpenThresholdSource(ctx, cfg, params, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeSource)

	set, err := source.Load(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load thresholds: %w", err)
	}
	a.book = alert.NewThresholdBook(cfg.SymbolIDs())
	if ignored := a.book.Replace(set); len(ignored) > 0 {
		logger.Warn("thresholds for untracked symbols ignored", zap.Strings("symbols", ignored))
	}
	if len(a.book.Snapshot()) == 0 {
		a.Close()
		return nil, fmt.Errorf("load thresholds: %w", alert.ErrNoThresholds)
	}
	logger.Info("thresholds loaded", zap.String("backend", cfg.Thresholds.Backend), zap.Strings("symbols", a.book.Snapshot().Symbols()))

	a.store = memorystore.NewPriceStore(metas, a.book)

	// Price sources
	binanceREST := binance.NewRESTClient(cfg.Binance.REST.BaseURL, cfg.Binance.REST.Timeout, pairs)
	sources := map[string]PriceSource{
		"coingecko": coingecko.NewClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.VsCurrency, cfg.CoinGecko.Timeout, geckoIDs),
		"binance":   binanceREST,
	}
	primary, ok := sources[cfg.Prices.Primary]
	if !ok {
		a.Close()
		return nil, fmt.Errorf("unknown price source %q", cfg.Prices.Primary)
	}
	chain := []PriceSource{primary}
	if fb, ok := sources[cfg.Prices.Fallback]; ok && cfg.Prices.Fallback != cfg.Prices.Primary {
		chain = append(chain, fb)
	}
	if cfg.Prices.Primary == "binance" || cfg.Prices.Fallback == "binance" {
		pingBinance(ctx, binanceREST, logger.Named("prices"))
	}
	a.ingestor = NewIngestor(NewChainSource(logger.Named("prices"), chain...), a.store, logger.Named("ingest"))
	a.monitor = NewMonitor(a.store, a.gate, logger.Named("monitor"))

	if cfg.Binance.WS.Enabled {
		a.ws = binance.NewWSClient(cfg.Binance.WS.URL, pairs.StreamNames(cfg.SymbolIDs()), logger.Named("ws"))
		a.ws.SetTimeouts(cfg.Binance.WS.Timeout, cfg.Binance.WS.ReconnectDelay)
		a.ws.SetMessageHandler(stream.MakeMessageHandler(logger.Named("stream"), a.store, pairs))
	}

	// Push channels
	var fcmClient *fcm.Client
	if cfg.Notifications.FCMEnabled {
		sa, err := LoadServiceAccount(ctx, cfg, params)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("fcm credentials: %w", err)
		}
		tokens, err := google.NewTokenSource(sa, cfg.Firebase.Timeout, google.ScopeMessaging)
		if err != nil {
			a.Close()
			return nil, err
		}
		fcmClient = fcm.NewClient(cfg.Firebase.FCMBaseURL, sa.ProjectID, tokens, cfg.Firebase.Timeout)
	}

	notifier, err := a.buildNotifier(fcmClient)
	if err != nil {
		a.Close()
		return nil, err
	}
	ids, err := notify.NewIDGenerator(cfg.Notifications.NodeID)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sender = NewSender(a.store, a.gate, a.throttle,
		notification.NewComposer(cfg.Notifications.Title), notifier, ids,
		SenderConfig{Interval: cfg.Notifications.Interval, SendTimeout: cfg.Notifications.SendTimeout},
		logger.Named("sender"))

	// HTTP surface
	opts := server.Options{
		Store:      a.store,
		Thresholds: a.book,
		Source:     source,
		Throttle:   a.throttle,
		Topic:      cfg.Notifications.Topic,
		Refresh:    a.ingestor.Step,
		Logger:     logger.Named("http"),
	}
	if fcmClient != nil {
		opts.Push = fcmClient
	}
	a.http = &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.New(opts).Handler(),
	}

	return a, nil
}

// pingBinance logs whether the Binance REST API answers. Startup continues
// either way.
func pingBinance(ctx context.Context, client *binance.RESTClient, logger *zap.Logger) {
	if err := client.Ping(ctx); err != nil {
		logger.Warn("binance rest unreachable", zap.Error(err))
		return
	}
	logger.Info("binance rest reachable")
}

func (a *App) buildNotifier(fcmClient *fcm.Client) (*notify.MultiNotifier, error) {
	var services []notify.Service
	if fcmClient != nil {
		services = append(services, notify.NewFCMNotifier(fcmClient, a.cfg.Notifications.Topic, a.logger.Named("fcm")))
	}

	pub := a.cfg.Publish
	if pub.NATS.Enabled {
		p, err := notify.NewNATSPublisher(pub.NATS.URL, pub.NATS.Subject)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { p.Close(); return nil })
		services = append(services, p)
	}
	if pub.Redis.Enabled {
		p := notify.NewRedisPublisher(pub.Redis.Addr, pub.Redis.Channel)
		a.closers = append(a.closers, p.Close)
		services = append(services, p)
	}
	if pub.Kafka.Enabled {
		p, err := notify.NewKafkaPublisher(pub.Kafka.Brokers, pub.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		services = append(services, p)
	}

	if len(services) == 0 {
		a.logger.Warn("no push channel enabled, alerts are only logged")
		services = append(services, notify.NewLogNotifier(a.logger.Named("notify")))
	}

	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name())
	}
	a.logger.Info("push channels ready", zap.String("channels", strings.Join(names, ",")))
	return notify.NewMultiNotifier(services...), nil
}

// Tasks returns the periodic activities with their configured cadence.
func (a *App) Tasks() []*Task {
	s := a.cfg.Schedule
	return []*Task{
		{Name: "ingest", Interval: s.IngestInterval, Retry: s.IngestRetry, Step: a.ingestor.Step},
		{Name: "monitor", Interval: s.MonitorInterval, Retry: s.MonitorRetry, Step: a.monitor.Step},
		{Name: "sender", Interval: a.cfg.Notifications.Interval, Retry: a.cfg.Notifications.Interval, Step: a.sender.Step},
	}
}

// Run starts every task, the realtime feed and the HTTP server, and blocks
// until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, t := range a.Tasks() {
		g.Go(func() error { return t.Run(ctx, a.logger) })
	}

	if a.ws != nil {
		g.Go(func() error { return a.ws.Run(ctx) })
	}

	g.Go(func() error {
		a.logger.Info("http server listening", zap.String("addr", a.http.Addr))
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.http.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("http shutdown", zap.Error(err))
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases connections held by the threshold backend and push channels.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
