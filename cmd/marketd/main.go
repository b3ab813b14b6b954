// Command marketd starts a curvemarket daemon.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tolelom/curvemarket/config"
	"github.com/tolelom/curvemarket/crypto/certgen"
	"github.com/tolelom/curvemarket/engine"
	"github.com/tolelom/curvemarket/events"
	"github.com/tolelom/curvemarket/indexer"
	"github.com/tolelom/curvemarket/observability"
	"github.com/tolelom/curvemarket/rpc"
	"github.com/tolelom/curvemarket/storage"
	"github.com/tolelom/curvemarket/wallet"

	// Import operation modules to trigger their init() self-registration.
	_ "github.com/tolelom/curvemarket/engine/modules/bank"
	_ "github.com/tolelom/curvemarket/engine/modules/market"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to config file")
	keyPath := flag.String("key", "admin.key", "path to keystore file")
	genKey := flag.Bool("genkey", false, "generate a new key and exit")
	genCerts := flag.String("gencerts", "", "generate CA + node TLS certs into the given directory and exit (requires node ID from config)")
	flag.Parse()

	log := observability.NewLogger("marketd")

	// Read keystore password from environment, not CLI flags (those leak via ps).
	password := os.Getenv("MARKET_PASSWORD")
	if password == "" {
		log.Warn().Msg("MARKET_PASSWORD not set; keystore will use an empty password")
	}

	// ---- generate key mode ----
	if *genKey {
		w, err := wallet.Generate()
		if err != nil {
			log.Fatal().Err(err).Msg("generate key")
		}
		if err := wallet.SaveKey(*keyPath, password, w.PrivKey()); err != nil {
			log.Fatal().Err(err).Msg("save key")
		}
		fmt.Printf("Generated key. Public key (identity): %s\n", w.PubKey())
		fmt.Printf("Saved to: %s\n", *keyPath)
		return
	}

	// ---- load config ----
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// ---- generate certs mode ----
	if *genCerts != "" {
		if err := certgen.GenerateAll(*genCerts, cfg.NodeID, nil); err != nil {
			log.Fatal().Err(err).Msg("gencerts")
		}
		fmt.Printf("Certificates generated in %s for node %q\n", *genCerts, cfg.NodeID)
		return
	}

	// ---- open DB ----
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("mkdir data dir")
	}
	db, err := storage.NewLevelDB(cfg.DataDir + "/market")
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()

	// ---- initialise state ----
	state := storage.NewStateDB(db)

	// ---- genesis (if fresh database) ----
	initialized, err := config.Initialized(state)
	if err != nil {
		log.Fatal().Err(err).Msg("check genesis")
	}
	if !initialized {
		if err := config.ApplyGenesis(state, &cfg.Genesis); err != nil {
			log.Fatal().Err(err).Msg("genesis")
		}
		log.Info().
			Str("network", cfg.Genesis.NetworkID).
			Uint64("platform_fee_percent", cfg.Genesis.PlatformFeePercent).
			Uint64("initial_price", cfg.Genesis.InitialPrice).
			Msg("genesis state committed")
	}

	// ---- events ----
	emitter := events.NewEmitter(observability.NewLogger("events"))

	// ---- indexer ----
	idx := indexer.New(db, emitter)

	// ---- metrics ----
	metrics := observability.NewMetrics()
	metrics.WatchEvents(emitter)

	// ---- executor ----
	exec := engine.NewExecutor(state, emitter, metrics, observability.NewLogger("engine"))

	// ---- TLS ----
	tlsCfg, err := config.LoadTLSConfig(cfg.TLS)
	if err != nil {
		log.Fatal().Err(err).Msg("tls")
	}
	if tlsCfg != nil {
		log.Info().Msg("mTLS enabled for RPC")
	}

	// ---- RPC ----
	rpcAddr := fmt.Sprintf(":%d", cfg.RPCPort)
	rpcHandler := rpc.NewHandler(exec, state, idx, cfg.Genesis.NetworkID)
	rpcServer := rpc.NewServer(rpcAddr, rpcHandler, cfg.RPCAuthToken, tlsCfg, metrics, observability.NewLogger("rpc"))
	if err := rpcServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("rpc start")
	}
	defer rpcServer.Stop()
	log.Info().Str("addr", rpcAddr).Msg("RPC listening")
	if cfg.RPCAuthToken != "" {
		log.Info().Msg("RPC Bearer token authentication enabled")
	}

	// ---- graceful shutdown ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutting down")
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := config.Save(cfg, path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}
	return config.Load(path)
}
