// Command radarcore-demo runs the radar core against real OS sockets and
// exposes its per-revolution collision warnings and guard-zone alerts over
// a websocket, the demo runtime spec.md §1 assumes sits above the core
// (SignalK or a chartplotter UI). Modeled on the teacher's cmd/lidar
// runtime: stdlib flag parsing, an embedded SQLite-backed store, and a
// ticker-driven poll loop (_examples/banshee-data-velocity.report/cmd/
// lidar/lidar.go).
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/radar-core/cmd/radarcore-demo/configstore"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/provider"
)

var (
	listen  = flag.String("listen", ":8082", "HTTP/websocket listen address")
	dbFile  = flag.String("db", "radarcore-demo.db", "path to the installation-config SQLite file")
	pollHz  = flag.Int("poll-hz", 20, "provider poll rate in Hz (spec.md §5 recommends 10-100Hz)")
	logName = flag.String("log-prefix", "radarcore-demo", "debug log line prefix")
)

func main() {
	flag.Parse()

	store, err := configstore.Open(*dbFile)
	if err != nil {
		log.Fatalf("configstore: %v", err)
	}
	defer store.Close()

	installCfg, err := store.Load()
	if err != nil {
		log.Fatalf("configstore: load: %v", err)
	}

	io := ioprovider.NewReal(*logName)
	prov := provider.New(io, nil)
	prov.SetInstallationConfig(installCfg)
	if err := prov.Open(); err != nil {
		log.Fatalf("provider: open: %v", err)
	}
	defer prov.Shutdown()

	h := newHub()
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	server := &http.Server{Addr: *listen, Handler: mux}
	go func() {
		log.Printf("radarcore-demo: listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Second / time.Duration(*pollHz))
	defer ticker.Stop()

	log.Printf("radarcore-demo: polling at %dHz", *pollHz)
	for {
		select {
		case <-ctx.Done():
			log.Printf("radarcore-demo: shutting down")
			if err := store.Save(prov.InstallationConfig()); err != nil {
				log.Printf("configstore: save on shutdown: %v", err)
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			server.Shutdown(shutdownCtx)
			cancel()
			return
		case <-ticker.C:
			prov.Poll()
			for _, warn := range prov.DrainCollisionWarnings() {
				h.broadcast(event{Kind: "collision_warning", Data: warn})
			}
			for _, id := range prov.Radars() {
				alerts, err := prov.DrainGuardZoneAlerts(id)
				if err != nil {
					continue
				}
				for _, a := range alerts {
					h.broadcast(event{Kind: "guard_zone_alert", Data: map[string]any{"radarId": id, "alert": a}})
				}
			}
		}
	}
}
