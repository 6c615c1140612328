package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"lightcode-go/services/config"
	apds9960dev "lightcode-go/services/hal/devices/apds9960"
	"lightcode-go/services/hal/halcore"
	"lightcode-go/services/hal/platform"
	"lightcode-go/services/hal/registry"
	"lightcode-go/services/hal/worker"
	"lightcode-go/services/meter"
)

// Entry point for the light meter daemon. Runs on a Raspberry Pi with the
// APDS-9960 sensor on the I²C bus and its interrupt line on a GPIO.
func main() {
	log := meter.NewLogger()
	log.WithField("pid", os.Getpid()).Info("lightcode starting")

	cfgPath := os.Getenv("LIGHTMETER_CONFIG")
	if cfgPath == "" {
		cfgPath = "lightmeter.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	plat, err := platform.Init()
	if err != nil {
		log.WithError(err).Fatal("failed to initialise hardware platform")
	}

	builder, ok := registry.Lookup("apds9960")
	if !ok {
		log.Fatal("apds9960 builder not registered")
	}
	out, err := builder.Build(registry.BuildInput{
		Buses:    plat.I2C(),
		Pins:     plat.Pins(),
		DeviceID: "light0",
		Type:     "apds9960",
		Params: apds9960dev.Params{
			Bus:         cfg.Bus,
			Addr:        cfg.Addr,
			AlertPin:    cfg.AlertPin,
			DebounceMS:  cfg.DebounceMS,
			SampleEvery: cfg.PollInterval,
		},
	})
	if err != nil {
		log.WithError(err).Fatal("failed to bring up the light sensor")
	}
	defer out.Close()

	db, err := meter.ConnectSqlite(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open the results database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan halcore.Result, 16)
	w := worker.New(halcore.WorkerConfig{}, results)
	w.Start(ctx)

	m := &meter.Meter{
		Log:          log,
		DB:           db,
		DBPath:       cfg.DBPath,
		Adaptor:      out.Adaptor,
		Worker:       w,
		Results:      results,
		Alerts:       apds9960dev.AlertsOf(out.Adaptor),
		PollInterval: cfg.PollInterval,
	}
	go m.Run(ctx)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	defineRoutes(r, m)

	addr := ":" + cfg.HTTPPort
	log.WithFields(logrus.Fields{"addr": addr, "bus": cfg.Bus}).Info("serving")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.WithError(err).Fatal("http server exited")
	}
}

func defineRoutes(r *chi.Mux, m *meter.Meter) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/start", m.Start())
		r.Get("/stop", m.Stop())
		r.Get("/status", m.Status())
		r.Get("/current-conditions", m.CurrentConditions())
		r.Get("/snapshot", m.Snapshot())
		r.Post("/configure", m.Configure())
		r.Get("/export", m.Export())
	})

	r.Get("/id", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"service_name":"Light Meter"}`+"\n")
	})
}
