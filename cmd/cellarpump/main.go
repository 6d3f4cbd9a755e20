// Command cellarpump drives a cellar sump pump on a duty-cycle schedule,
// samples ambient temperature/humidity, renders a 16x2 status panel, and
// publishes transitions to MQTT.
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

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/WimObiwan/cellarpump/internal/button"
	"github.com/WimObiwan/cellarpump/internal/clock"
	"github.com/WimObiwan/cellarpump/internal/config"
	"github.com/WimObiwan/cellarpump/internal/controller"
	"github.com/WimObiwan/cellarpump/internal/display"
	"github.com/WimObiwan/cellarpump/internal/mqtt"
	"github.com/WimObiwan/cellarpump/internal/preset"
	"github.com/WimObiwan/cellarpump/internal/pump"
	"github.com/WimObiwan/cellarpump/internal/relay"
	"github.com/WimObiwan/cellarpump/internal/sensor"
	"github.com/WimObiwan/cellarpump/internal/status"
	"github.com/WimObiwan/cellarpump/internal/store"
	"github.com/WimObiwan/cellarpump/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/cellarpump/config.yaml", "Configuration file path")
	broker := flag.String("broker", "", "MQTT broker address (overrides config; \"off\" disables)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config; \"off\" disables)")
	printState := flag.Bool("print-state", false, "Print the persisted preset and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyOverride(&cfg.MQTT.Broker, *broker)
	applyOverride(&cfg.HTTP.Addr, *httpAddr)

	if *printState {
		if err := runPrintState(cfg); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyOverride replaces a config value with a flag value. "off" clears it.
func applyOverride(target *string, flagValue string) {
	switch flagValue {
	case "":
	case "off":
		*target = ""
	default:
		*target = flagValue
	}
}

// runPrintState reports which preset the controller would boot with.
func runPrintState(cfg *config.Config) error {
	sel, err := preset.NewSelector(presetsFromConfig(cfg), store.NewFileStore(cfg.Storage.Path), 0, 0)
	if err != nil {
		return err
	}
	p := sel.Active()
	fmt.Printf("Preset: %s (%d/%d), on %v every %v\n",
		p.Label, sel.ActiveIndex()+1, sel.Count(),
		time.Duration(p.OnDuration)*time.Millisecond,
		time.Duration(p.CycleInterval)*time.Millisecond)
	return nil
}

func run(cfg *config.Config) error {
	// Relay is the one piece of hardware the controller cannot do without.
	sw, err := relay.NewRealSwitch(cfg.Pins.Relay)
	if err != nil {
		return fmt.Errorf("init relay: %w", err)
	}
	defer sw.Close()

	// I2C peripherals degrade gracefully: a missing sensor or panel is
	// logged and the scheduler simply skips that sub-task.
	bus := openBus(cfg)
	if bus != nil {
		defer bus.Close()
	}

	reader := sensorReader(cfg, bus)
	if reader != nil {
		defer reader.Close()
	}
	sampler := sensor.NewSampler(reader, clock.Ticks(cfg.Timing.SensorIntervalMs))

	presenter, dev := displayPresenter(cfg, bus, reader != nil)
	if dev != nil {
		defer dev.Close()
	}

	presets := presetsFromConfig(cfg)
	selector, input := presetSelector(cfg, presets)
	if input != nil {
		defer input.Close()
	}

	active := presets[0]
	if selector != nil {
		active = selector.Active()
	}
	machine := pump.NewMachine(pump.Schedule{
		OnDuration:    active.OnDuration,
		CycleInterval: active.CycleInterval,
	}, sw)

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:           cfg.Timing.PollMs,
		SensorIntervalMs: cfg.Timing.SensorIntervalMs,
		DisplayMs:        cfg.Timing.DisplayMs,
		DebounceMs:       cfg.Timing.DebounceMs,
		OverlayMs:        cfg.Timing.OverlayMs,
		Broker:           cfg.MQTT.Broker,
		HTTPAddr:         cfg.HTTP.Addr,
	})

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.MQTT.Broker)
		if err != nil {
			log.Printf("mqtt unavailable, continuing without publishing: %v", err)
		} else {
			publisher = real
			mqttStatus = real
			defer real.Close()
		}
	}

	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	ctrl := controller.New(controller.Options{
		Clock:           clock.NewSystem(),
		Machine:         machine,
		Sampler:         sampler,
		Selector:        selector,
		Input:           input,
		Presenter:       presenter,
		DisplayInterval: clock.Ticks(cfg.Timing.DisplayMs),
		FallbackLabel:   presets[0].Label,
	})

	log.Printf("started: preset=%q on=%v cycle=%v poll=%dms broker=%s",
		active.Label,
		time.Duration(active.OnDuration)*time.Millisecond,
		time.Duration(active.CycleInterval)*time.Millisecond,
		cfg.Timing.PollMs, cfg.MQTT.Broker)

	if presenter != nil {
		presenter.Splash()
	}

	// The pump starts its first on-phase at power-up, not a full cycle later.
	publishAll(ctrl.Boot(), publisher)

	ticker := time.NewTicker(time.Duration(cfg.Timing.PollMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, publisher, mqttStatus, tracker, time.Now, ticker.C, sigCh)
}

func runLoop(ctrl *controller.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher == nil {
				return nil
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			events := ctrl.Step()
			publishAll(events, publisher)

			tracker.Update(ctrl.State())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}
}

// publishAll logs each event and hands it to the publisher, if any. Publish
// failures are logged and ignored: the scheduler must keep running.
func publishAll(events []controller.Event, publisher mqtt.Publisher) {
	for _, ev := range events {
		log.Printf("event: %s (preset=%s)", ev.Type, ev.Preset)
		if publisher == nil {
			continue
		}
		if err := publisher.Publish(mqtt.Event(ev)); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

func presetsFromConfig(cfg *config.Config) []preset.Preset {
	presets := make([]preset.Preset, len(cfg.Presets))
	for i, p := range cfg.Presets {
		presets[i] = preset.Preset{
			Label:         p.Label,
			OnDuration:    clock.Ticks(p.OnDurationMs),
			CycleInterval: clock.Ticks(p.CycleIntervalMs),
		}
	}
	return presets
}

// presetSelector builds the button-driven selector. Either piece failing to
// initialize disables preset cycling for this run, never the pump.
func presetSelector(cfg *config.Config, presets []preset.Preset) (*preset.Selector, button.Input) {
	if !cfg.Pins.ButtonEnabled {
		return nil, nil
	}
	input, err := button.NewRealInput(cfg.Pins.Button)
	if err != nil {
		log.Printf("button unavailable, preset cycling disabled: %v", err)
		return nil, nil
	}
	selector, err := preset.NewSelector(presets, store.NewFileStore(cfg.Storage.Path),
		clock.Ticks(cfg.Timing.DebounceMs), clock.Ticks(cfg.Timing.OverlayMs))
	if err != nil {
		log.Printf("preset selector unavailable: %v", err)
		input.Close()
		return nil, nil
	}
	return selector, input
}

func openBus(cfg *config.Config) i2c.BusCloser {
	if !cfg.I2C.SensorEnabled && !cfg.I2C.DisplayEnabled {
		return nil
	}
	if _, err := host.Init(); err != nil {
		log.Printf("periph init failed, continuing without i2c peripherals: %v", err)
		return nil
	}
	bus, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		log.Printf("i2c bus unavailable, continuing without i2c peripherals: %v", err)
		return nil
	}
	return bus
}

func sensorReader(cfg *config.Config, bus i2c.Bus) sensor.Reader {
	if !cfg.I2C.SensorEnabled || bus == nil {
		return nil
	}
	reader, err := sensor.NewDHT20(bus, cfg.I2C.SensorAddr)
	if err != nil {
		log.Printf("sensor unavailable, continuing without readings: %v", err)
		return nil
	}
	return reader
}

func displayPresenter(cfg *config.Config, bus i2c.Bus, sensorPresent bool) (*display.Presenter, display.Device) {
	if !cfg.I2C.DisplayEnabled || bus == nil {
		return nil, nil
	}
	dev, err := display.NewGroveLCD(bus, cfg.I2C.LCDAddr, cfg.I2C.RGBAddr)
	if err != nil {
		log.Printf("display unavailable, continuing without panel: %v", err)
		return nil, nil
	}
	return display.NewPresenter(dev, clock.Ticks(cfg.Timing.GreenThresholdMs), sensorPresent), dev
}
