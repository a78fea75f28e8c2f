package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	persistlog "kulturkampf/internal/persistence/log"
	"kulturkampf/internal/persistence/recovered"
	"kulturkampf/internal/sim/catalogs"
	"kulturkampf/internal/sim/session"
	"kulturkampf/internal/sim/tuning"
	"kulturkampf/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "campaign seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the recovered-artworks store")
		disableLog = flag.Bool("disable_ledger", false, "disable the campaign ledger")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	cfg, err := session.ConfigFromTuning(tune)
	if err != nil {
		logger.Fatalf("tuning: %v", err)
	}
	cfg.Seed = *seed

	_ = os.MkdirAll(*dataDir, 0o755)

	sess := session.New(cfg, cats, log.New(os.Stdout, "[session] ", log.LstdFlags|log.Lmicroseconds))

	if !*disableDB {
		store, err := recovered.Open(filepath.Join(*dataDir, "campaign.db"))
		if err != nil {
			logger.Fatalf("open recovered store: %v", err)
		}
		defer store.Close()
		sess.SetRecoveredStore(store)
	}
	if !*disableLog {
		ledger := persistlog.NewCampaignLedger(*dataDir)
		defer ledger.Close()
		sess.SetLedger(ledger)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("session stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := sess.Metrics()

		running := 0
		if m.Running {
			running = 1
		}
		fmt.Fprintf(rw, "# HELP kulturkampf_campaign_day Days since the campaign start.\n")
		fmt.Fprintf(rw, "# TYPE kulturkampf_campaign_day gauge\n")
		fmt.Fprintf(rw, "kulturkampf_campaign_day %d\n", m.Day)

		fmt.Fprintf(rw, "# HELP kulturkampf_clock_running Whether the campaign clock is ticking.\n")
		fmt.Fprintf(rw, "# TYPE kulturkampf_clock_running gauge\n")
		fmt.Fprintf(rw, "kulturkampf_clock_running %d\n", running)

		fmt.Fprintf(rw, "# HELP kulturkampf_clients Connected clients.\n")
		fmt.Fprintf(rw, "# TYPE kulturkampf_clients gauge\n")
		fmt.Fprintf(rw, "kulturkampf_clients %d\n", m.Clients)

		fmt.Fprintf(rw, "# HELP kulturkampf_leads Live leads on the map.\n")
		fmt.Fprintf(rw, "# TYPE kulturkampf_leads gauge\n")
		fmt.Fprintf(rw, "kulturkampf_leads %d\n", m.Leads)

		fmt.Fprintf(rw, "# HELP kulturkampf_missions Acknowledged missions awaiting recovery.\n")
		fmt.Fprintf(rw, "# TYPE kulturkampf_missions gauge\n")
		fmt.Fprintf(rw, "kulturkampf_missions %d\n", m.Missions)

		fmt.Fprintf(rw, "# HELP kulturkampf_tasks Retrieval tasks in flight.\n")
		fmt.Fprintf(rw, "# TYPE kulturkampf_tasks gauge\n")
		fmt.Fprintf(rw, "kulturkampf_tasks %d\n", m.Tasks)

		fmt.Fprintf(rw, "# HELP kulturkampf_recovered_artworks Artworks recovered so far.\n")
		fmt.Fprintf(rw, "# TYPE kulturkampf_recovered_artworks gauge\n")
		fmt.Fprintf(rw, "kulturkampf_recovered_artworks %d\n", m.Recovered)

		fmt.Fprintf(rw, "# HELP kulturkampf_intelligence_points Current intelligence point balance.\n")
		fmt.Fprintf(rw, "# TYPE kulturkampf_intelligence_points gauge\n")
		fmt.Fprintf(rw, "kulturkampf_intelligence_points %d\n", m.Points)
	})
	if envBool("KK_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(sess, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
