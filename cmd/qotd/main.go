package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-qotd/internal/app"
	"github.com/coreman2200/funtimes-qotd/internal/audio"
	"github.com/coreman2200/funtimes-qotd/internal/config"
	"github.com/coreman2200/funtimes-qotd/internal/led"
	"github.com/coreman2200/funtimes-qotd/internal/render"
	"github.com/coreman2200/funtimes-qotd/internal/seats"
	"github.com/coreman2200/funtimes-qotd/internal/show"
)

func main() {
	var (
		configPath  = flag.String("config", "config.yaml", "path to config.yaml")
		driver      = flag.String("driver", "", "LED driver: spi | sim (overrides config)")
		simOnly     = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		addr        = flag.String("addr", "", "preview HTTP listen address (overrides config)")
		fps         = flag.Int("fps", 0, "target frames per second (overrides config)")
		logLevel    = flag.String("log-level", "info", "debug | info | warn | error")
		debug       = flag.Bool("debug", false, "prompt raw seat states")
		noAudio     = flag.Bool("no-audio", false, "use the silent sink")
		clearOnExit = flag.Bool("clear", false, "blank the strip on exit")
		writeCfg    = flag.Bool("write-config", false, "write the effective config to -config and exit")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", *logLevel).Msg("unknown log level; using info")
	}

	cfg, defaulted, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("invalid config")
	}
	if defaulted {
		log.Warn().Str("path", *configPath).Msg("no config file; using defaults")
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *simOnly {
		cfg.Driver = "sim"
	}
	if *addr != "" {
		cfg.PreviewAddr = *addr
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if *noAudio {
		cfg.Audio.Enabled = false
	}
	if *writeCfg {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Msg("write config")
		}
		log.Info().Str("path", *configPath).Msg("config written")
		return
	}

	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("periph host init failed; hardware unavailable")
	}

	strip, name := openStrip(cfg)
	sink := openSink(cfg)

	var st show.Seats
	if sensors, err := seats.Open(cfg.Seats.Pins, cfg.Seats.Groups, cfg.Strip.Lit); err != nil {
		log.Warn().Err(err).Msg("seat sensors unavailable; nobody will be seated")
		st = seats.NewVacant(cfg.Strip.Lit)
	} else {
		st = sensors
	}

	core, err := app.InitCore(cfg, app.Hardware{Strip: strip, Sink: sink, Seats: st, Debug: *debug}, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	core.State.Name = name

	var srv *http.Server
	if cfg.PreviewAddr != "" {
		srv = &http.Server{
			Addr:         cfg.PreviewAddr,
			Handler:      withCORS(core.State.Handler()),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.PreviewAddr).Str("driver", name).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("preview server stopped")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Int("fps", cfg.FPS).Int("pixels", cfg.Strip.Lit).Msg("running")
	runErr := core.Run(ctx, cfg.FPS)

	if srv != nil {
		_ = srv.Close()
	}
	if err := core.Close(*clearOnExit); err != nil {
		log.Warn().Err(err).Msg("close audio")
	}
	closeStrip(strip, *clearOnExit)
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("tick loop stopped")
	}
	log.Info().Msg("shut down")
}

func openStrip(cfg *config.Config) (render.Driver, string) {
	if cfg.Driver != "spi" {
		if cfg.Driver != "sim" {
			log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
		}
		return led.NewSim(), "sim"
	}
	freq := physic.Frequency(cfg.Strip.FreqKHz) * physic.KiloHertz
	s, hw, err := led.Open(cfg.Strip.Port, cfg.Strip.Pixels, freq)
	if err != nil {
		log.Warn().Err(err).Str("port", cfg.Strip.Port).Msg("SPI init failed; falling back to SIM")
		return led.NewSim(), "sim"
	}
	if !hw {
		return s, "console"
	}
	return s, "spi"
}

// closeStrip releases the LED output. Only a clearing close turns the
// pixels off; otherwise the last frame stays lit.
func closeStrip(drv render.Driver, blank bool) {
	var err error
	switch d := drv.(type) {
	case *led.Strip:
		if blank {
			err = d.Close()
		} else {
			err = d.Release()
		}
	case interface{ Close() error }:
		err = d.Close()
	}
	if err != nil {
		log.Warn().Err(err).Msg("close strip")
	}
}

func openSink(cfg *config.Config) audio.Sink {
	if !cfg.Audio.Enabled {
		return &audio.Silent{}
	}
	p, err := audio.NewPlayer(cfg.Audio.SampleRate, cfg.Audio.Dir)
	if err != nil {
		log.Warn().Err(err).Msg("audio output unavailable; using the silent sink")
		return &audio.Silent{}
	}
	return p
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
