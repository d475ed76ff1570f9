// Command tiled runs dashboard tiles headless: values arrive over MQTT or
// GPIO, and tile events are published back to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/tiled/internal/config"
	"github.com/sweeney/tiled/internal/mainloop"
	"github.com/sweeney/tiled/internal/metrics"
	"github.com/sweeney/tiled/internal/mqtt"
	"github.com/sweeney/tiled/internal/status"
	"github.com/sweeney/tiled/internal/web"
)

const defaultConfigPath = "/etc/tiled/tiled.toml"

// flags holds command line overrides. Empty values keep the config file's.
type flags struct {
	configPath  string
	broker      string
	httpAddr    string
	frame       time.Duration
	printConfig bool
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", defaultConfigPath, "Path to the TOML config file")
	flag.StringVar(&f.broker, "broker", "", `MQTT broker address ("off" disables MQTT)`)
	flag.StringVar(&f.httpAddr, "http", "", `HTTP status address ("off" disables)`)
	flag.DurationVar(&f.frame, "frame", 0, "Animation frame interval")
	flag.BoolVar(&f.printConfig, "print-config", false, "Print the effective config and exit")

	flag.Parse()

	if err := run(f); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.broker != "" {
		cfg.MQTT.Broker = f.broker
	}
	if f.httpAddr != "" {
		cfg.HTTP.Addr = f.httpAddr
	}
	if f.frame > 0 {
		cfg.General.FrameInterval.Duration = f.frame
	}
	if cfg.MQTT.Broker == "off" {
		cfg.MQTT.Broker = ""
	}
	if cfg.HTTP.Addr == "off" {
		cfg.HTTP.Addr = ""
	}
	return cfg, nil
}

func run(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if f.printConfig {
		return cfg.Encode(os.Stdout)
	}

	frame := cfg.General.FrameInterval.Duration
	loop := mainloop.New(frame, time.Now)
	m := metrics.New()

	tracker := status.NewTracker(time.Now(), status.Config{
		FrameMs:     frame.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		HTTPAddr:    cfg.HTTP.Addr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	d, err := newDaemon(cfg, loop, tracker, m, openRealReader, time.Now)
	if err != nil {
		return err
	}
	defer d.closeReaders()

	// Initialize MQTT
	if cfg.MQTT.Broker != "" {
		publisher, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:           cfg.MQTT.Broker,
			ClientID:         cfg.MQTT.ClientID,
			Topics:           mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix},
			OnConnect:        d.onConnect,
			OnConnectionLost: d.onConnectionLost,
			OnSet:            d.onSet,
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer publisher.Close()
		d.attach(publisher)
	} else {
		log.Printf("mqtt disabled, tiles visible")
		d.setVisible(true)
	}

	// Seed the tracker so STARTUP carries every tile.
	d.observe(time.Now())
	d.publishSystem("STARTUP", "")

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, m.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: tiles=%d frame=%v broker=%s", len(cfg.Tiles), frame, cfg.MQTT.Broker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(context.Background(), d, sigCh)
}

// runLoop drives the main loop and GPIO pollers until a signal arrives,
// then stops the clocks and publishes SHUTDOWN.
func runLoop(ctx context.Context, d *daemon, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.loop.Run(gctx)
	})
	for _, p := range d.pollers {
		g.Go(func() error {
			d.poll(gctx, p)
			return nil
		})
	}
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			d.shutdown(gctx, signalName(s))
			cancel()
			return nil
		}
	})
	return g.Wait()
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
