package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"hearthday.ai/internal/persistence/indexdb"
	persistlog "hearthday.ai/internal/persistence/log"
	"hearthday.ai/internal/sim/catalogs"
	"hearthday.ai/internal/sim/day"
	"hearthday.ai/internal/sim/tuning"
	"hearthday.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		homeID     = flag.String("home", "home_1", "home id (data directory key)")
		seed       = flag.Int64("seed", 0, "override tuning seed when non-zero")
		configDir  = flag.String("configs", "./configs", "config directory")
		schemaDir  = flag.String("schemas", "./schemas", "json schema directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	if err := tune.Validate(); err != nil {
		logger.Fatalf("tuning: %v", err)
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	cats, err := catalogs.LoadVerified(*configDir, *schemaDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	homeDir := filepath.Join(*dataDir, "homes", *homeID)
	_ = os.MkdirAll(homeDir, 0o755)

	core, err := day.New(day.Config{ID: *homeID, Seed: tune.Seed, Tune: tune}, cats)
	if err != nil {
		logger.Fatalf("core: %v", err)
	}

	tickLog := persistlog.NewTickLogger(homeDir)
	auditLog := persistlog.NewAuditLogger(homeDir)
	defer tickLog.Close()
	defer auditLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(homeDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats); err != nil {
			logger.Printf("index catalogs: %v", err)
		}
	}

	core.SetTickLogger(tickFanout{tickLog, idx})
	core.SetAuditLogger(auditFanout{auditLog, idx})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go core.Run(ctx)

	wsServer := ws.NewServer(core, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"home":   *homeID,
			"digest": core.StateDigest(),
		})
	})
	if idx != nil {
		mux.HandleFunc("/v1/summaries", func(w http.ResponseWriter, r *http.Request) {
			rows, err := idx.RecentSummaries(30)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(rows)
		})
	}
	mux.HandleFunc("/debug/pprof/", pprof.Index)

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s (home %s, %d hz)", *addr, *homeID, core.TickRateHz())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Printf("shutting down")

	cancel()
	core.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// tickFanout duplicates tick entries to the JSONL log and the sqlite index.
type tickFanout struct {
	jsonl *persistlog.TickLogger
	idx   *indexdb.SQLiteIndex
}

func (f tickFanout) WriteTick(e day.TickLogEntry) error {
	err := f.jsonl.WriteTick(e)
	if f.idx != nil {
		_ = f.idx.WriteTick(e)
	}
	return err
}

type auditFanout struct {
	jsonl *persistlog.AuditLogger
	idx   *indexdb.SQLiteIndex
}

func (f auditFanout) WriteSummary(s day.DaySummary) error {
	err := f.jsonl.WriteSummary(s)
	if f.idx != nil {
		_ = f.idx.WriteSummary(s)
	}
	return err
}
