package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/tileworld/internal/auth"
	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/game/combat"
	"github.com/udisondev/tileworld/internal/gameserver"
	"github.com/udisondev/tileworld/internal/spawn"
	"github.com/udisondev/tileworld/internal/store/hotstore"
	"github.com/udisondev/tileworld/internal/store/postgres"
	"github.com/udisondev/tileworld/internal/visual"
	"github.com/udisondev/tileworld/internal/worldmap"
)

const GameConfigPath = "config/gameserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := GameConfigPath
	if p := os.Getenv("TILEWORLD_GAME_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGameServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading game config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("tileworld game server starting", "bind", cfg.BindAddress, "port", cfg.Port, "log_level", cfg.LogLevel)

	// Durable store: accounts, items/entity templates, inventory/equipment.
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()
	if err := postgres.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database connected and migrated")

	playerRepo := postgres.NewPlayerRepository(db.Pool())
	invRepo := postgres.NewInventoryRepository(db.Pool())
	templateRepo := postgres.NewTemplateRepository(db.Pool())

	// Hot store: runtime positions, HP, entity instances, ground items,
	// respawn queue, and the online-player set.
	hot, err := hotstore.New(ctx, cfg.HotStore.Addr, cfg.HotStore.Password, cfg.HotStore.DB, cfg.HotStore.EntityTTL)
	if err != nil {
		return fmt.Errorf("connecting to hot store: %w", err)
	}
	defer hot.Close()
	slog.Info("hot store connected", "addr", cfg.HotStore.Addr)

	maps, err := loadMaps(cfg.MapsDir)
	if err != nil {
		return fmt.Errorf("loading maps: %w", err)
	}
	mapIDs := maps.MapIDs()
	slog.Info("maps loaded", "count", len(mapIDs), "maps_dir", cfg.MapsDir)

	catalog, err := gameserver.LoadCatalog(ctx, templateRepo)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	visuals := visual.NewRegistry()
	clients := gameserver.NewClientManager()
	clock := gameserver.NewTickClock()
	broadcaster := gameserver.NewBroadcaster(clients, visuals, int32(cfg.Game.ChunkSize))

	combatMgr := combat.NewManager(catalog, catalog, hot, hot, cfg.Tick.HotHz,
		cfg.Game.LootProtectionWindow, cfg.Game.GroundItemLifetime)

	respawner := spawn.NewRespawner(hot, catalog, maps)
	for _, mapID := range mapIDs {
		if err := respawner.SeedMap(ctx, mapID); err != nil {
			return fmt.Errorf("seeding spawns for map %s: %w", mapID, err)
		}
	}
	slog.Info("spawns seeded", "maps", len(mapIDs))

	tokens := auth.NewTokenStore()
	stopSweeper := make(chan struct{})
	defer close(stopSweeper)
	go tokens.RunSweeper(auth.TokenTTL, stopSweeper)

	authSvc := auth.NewService(playerRepo, tokens, maps, cfg.SpawnMapID, cfg.StartHP)

	handler := gameserver.NewHandler(cfg, maps, catalog, hot, playerRepo, invRepo, combatMgr,
		visuals, clients, tokens, clock, broadcaster)

	scheduler := gameserver.NewTickScheduler(maps, hot, catalog, clients, combatMgr, broadcaster,
		respawner, clock, cfg.AI, cfg.Tick)

	server := gameserver.NewServer(cfg, authSvc, handler, clients, hot, playerRepo, invRepo, broadcaster)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return server.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server group: %w", err)
	}
	return nil
}

// loadMaps registers every .tmx file under dir, keyed by its filename
// without extension (e.g. "start.tmx" becomes map ID "start").
func loadMaps(dir string) (*worldmap.Registry, error) {
	reg := worldmap.NewRegistry()

	entries, err := filepath.Glob(filepath.Join(dir, "*.tmx"))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no .tmx files found under %s", dir)
	}

	for _, path := range entries {
		base := filepath.Base(path)
		mapID := strings.TrimSuffix(base, filepath.Ext(base))
		if err := reg.LoadTMX(mapID, path); err != nil {
			return nil, fmt.Errorf("loading map %s: %w", path, err)
		}
	}
	return reg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
