// Command relayer runs the tBTC cross-chain relayer process: it loads
// process and per-chain configuration, migrates the operation store,
// constructs a Chain Handler per configured chain, and starts the
// reconciler/scheduler and HTTP server until told to shut down.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/chain"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/config"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/handler"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/redemption"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/registry"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/scheduler"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/server"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/statusmirror"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/wormhole"
)

var (
	chainConfigDir = pflag.String("chain-config-dir", "", "override CHAIN_CONFIG_DIR")
	apiOnly        = pflag.Bool("api-only", false, "override API_ONLY_MODE")
	l1RPC          = pflag.String("l1-rpc", "", "L1 settlement chain RPC endpoint")
	l1ChainID      = pflag.Int64("l1-chain-id", 1, "L1 settlement chain id")
)

func main() {
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *chainConfigDir != "" {
		cfg.ChainConfigDir = *chainConfigDir
	}
	if *apiOnly {
		cfg.APIOnlyMode = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if dump, err := cfg.Dump(); err == nil {
		log.Printf("effective config:\n%s", dump)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeClient, err := store.NewClient(store.Config{
		DatabaseURL:     cfg.DatabaseURL,
		MaxOpenConns:    cfg.DatabaseMaxConns,
		MaxIdleConns:    cfg.DatabaseMinConns,
		ConnMaxIdleTime: cfg.DatabaseMaxIdleTime,
		ConnMaxLifetime: cfg.DatabaseMaxLifetime,
	})
	if err != nil {
		log.Fatalf("connect to operation store: %v", err)
	}
	defer storeClient.Close()

	if err := storeClient.MigrateUp(ctx); err != nil {
		log.Fatalf("migrate operation store: %v", err)
	}

	deposits := store.NewDepositRepository(storeClient)
	redemptions := store.NewRedemptionRepository(storeClient)
	audit := store.NewAuditRepository(storeClient)

	mirror, err := statusmirror.NewClient(ctx, statusmirror.Config{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsFile: cfg.FirebaseCredentialsFile,
		Enabled:         cfg.FirestoreEnabled,
	})
	if err != nil {
		log.Fatalf("construct status mirror: %v", err)
	}
	defer mirror.Close()

	chainConfigs, err := config.LoadChainConfigs(cfg.ChainConfigDir, cfg.SupportedChains)
	if err != nil {
		log.Fatalf("load chain configs: %v", err)
	}

	coreContracts := map[uint16][32]byte{}
	for _, cc := range chainConfigs {
		if cc.Platform.SupportsWormholeBridging() && cc.WormholeCoreContract != "" {
			var addr [32]byte
			copy(addr[12:], common.HexToAddress(cc.WormholeCoreContract).Bytes())
			coreContracts[cc.WormholeEmitterChain] = addr
		}
	}
	wormholeSvc := wormhole.NewService(cfg.WormholeGuardianRPC, cfg.WormholeRPCTimeout, coreContracts)

	reg := registry.New()
	redemptionBindings := map[string]redemption.Binding{}

	if !cfg.APIOnlyMode {
		for name, cc := range chainConfigs {
			if !cc.Enabled {
				log.Printf("chain %s disabled, skipping", name)
				continue
			}

			chainCtx, err := chain.NewContext(ctx, name, cc, *l1RPC, *l1ChainID, chain.WithWormholeService(wormholeSvc))
			if err != nil {
				log.Fatalf("construct chain context for %s: %v", name, err)
			}

			base := handler.NewBase(chainCtx, cc, deposits, redemptions, audit, mirror)
			h, err := buildHandler(base, cc)
			if err != nil {
				log.Fatalf("construct handler for %s: %v", name, err)
			}
			reg.Register(name, h)
			if err := h.SetupListeners(ctx); err != nil {
				log.Printf("chain %s: setup listeners: %v", name, err)
			}
			redemptionBindings[name] = redemption.Binding{Ctx: chainCtx, Cfg: cc}
		}
	}
	reg.Seal()

	redemptionSvc := redemption.NewService(redemptions, audit, redemptionBindings, mirror)

	sched := scheduler.New(scheduler.Config{
		EnableCleanup:       cfg.EnableCleanupCron,
		CleanQueuedAfter:    cfg.CleanQueuedTime,
		CleanFinalizedAfter: cfg.CleanFinalizedTime,
	}, reg, deposits, redemptionSvc)

	if !cfg.APIOnlyMode {
		sched.Start(ctx)
	}

	httpServer := server.New(cfg.ListenAddr, deposits, redemptions, reg, storeClient)
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()
	log.Printf("relayer listening on %s (api_only=%v, chains=%v)", cfg.ListenAddr, cfg.APIOnlyMode, reg.List())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down relayer")
	cancel()
	if !cfg.APIOnlyMode {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown: %v", err)
	}

	log.Println("relayer stopped")
}

// buildHandler constructs the Chain Handler for cc's platform. The L1 bridge
// address is required for every Wormhole-bridging platform since their
// handler also implements WormholeBridger.
func buildHandler(base handler.Base, cc *config.ChainConfig) (handler.Handler, error) {
	switch cc.Platform {
	case config.PlatformEVM:
		return handler.NewEVM(base)
	case config.PlatformStarknet:
		return handler.NewStarknet(base), nil
	case config.PlatformSolana:
		return handler.NewSolana(base), nil
	case config.PlatformSui:
		return handler.NewSui(base, cc.L1BridgeAddress), nil
	case config.PlatformSei:
		return handler.NewSei(base, cc.L1BridgeAddress)
	default:
		return nil, fmt.Errorf("cmd/relayer: unsupported platform %q for chain %s", cc.Platform, cc.ChainName)
	}
}
