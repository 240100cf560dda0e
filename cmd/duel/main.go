// Package main provides the duel binary that runs one dice encounter against
// a group of enemy templates, driven by stdin, a command script, or autopilot.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicefight/internal/config"
	"github.com/cory-johannsen/dicefight/internal/game/combat"
	"github.com/cory-johannsen/dicefight/internal/game/command"
	"github.com/cory-johannsen/dicefight/internal/game/element"
	"github.com/cory-johannsen/dicefight/internal/game/npc"
	"github.com/cory-johannsen/dicefight/internal/observability"
	"github.com/cory-johannsen/dicefight/internal/scripting"
	"github.com/cory-johannsen/dicefight/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults")
	enemiesDir := flag.String("enemies", "content/enemies", "path to enemy YAML templates directory")
	group := flag.String("group", "slime,goblin", "comma-separated enemy template IDs")
	playerName := flag.String("name", "Hero", "player name")
	seed := flag.Uint64("seed", 0, "seed for reproducible dice; 0 uses crypto randomness")
	scriptPath := flag.String("script", "", "file of commands to run instead of stdin")
	auto := flag.Bool("auto", false, "play automatically")
	enemyDelay := flag.Duration("enemy-delay", 0, "pause before each enemy phase")
	history := flag.Int("history", 0, "print this many recent encounters after the fight (requires database)")
	flag.Parse()

	ctx := context.Background()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	table, err := element.TableFromConfig(cfg.ElementTable)
	if err != nil {
		logger.Fatal("building element table", zap.Error(err))
	}
	rng := newRig(*seed, table, cfg.Engine.OverflowWarnAfter, logger)

	templates, err := npc.LoadTemplates(*enemiesDir)
	if err != nil {
		logger.Fatal("loading enemy templates", zap.Error(err))
	}
	catalog, err := npc.NewCatalog(templates)
	if err != nil {
		logger.Fatal("building enemy catalog", zap.Error(err))
	}
	enemies, err := catalog.SpawnGroup(strings.Split(*group, ","))
	if err != nil {
		logger.Fatal("spawning enemies", zap.Error(err), zap.Strings("available", catalog.IDs()))
	}
	player := combat.NewCombatant("player", *playerName, combat.KindPlayer, cfg.Engine.PlayerMaxHP, cfg.Engine.PlayerDice)

	encCfg := combat.Config{
		MaxRetries: cfg.Engine.MaxRetries,
		Roller:     rng.roller,
		Assigner:   rng.assigner,
		Logger:     logger,
	}
	var scripts *scripting.Manager
	if cfg.Scripting.ScriptDir != "" {
		scripts = scripting.NewManager(rng.scriptRoller, logger)
		defer scripts.Close()
		if err := scripts.LoadGlobal(cfg.Scripting.ScriptDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading hook scripts", zap.Error(err))
		}
	}
	// The encounter ID is fixed up front so hooks can be bound to its scope.
	encCfg.ID = uuid.NewString()
	if scripts != nil {
		encCfg.Hooks = scripts.EncounterHooks(encCfg.ID)
	}

	enc, err := combat.NewEncounter(encCfg, player, enemies)
	if err != nil {
		logger.Fatal("creating encounter", zap.Error(err))
	}
	registry := combat.NewRegistry()
	if err := registry.Add(enc); err != nil {
		logger.Fatal("registering encounter", zap.Error(err))
	}
	logger.Info("duel ready",
		zap.String("encounter_id", enc.ID()),
		zap.Int("enemies", len(enemies)),
		zap.Duration("elapsed", time.Since(start)),
	)

	next, closeInput := inputFor(*auto, *scriptPath, logger)
	defer closeInput()

	d := &duel{
		enc:        enc,
		dispatcher: command.NewDispatcher(command.DefaultRegistry()),
		out:        os.Stdout,
		logger:     logger,
		enemyDelay: *enemyDelay,
	}
	if err := d.play(next); err != nil {
		logger.Error("duel aborted", zap.Error(err))
	}

	summary, _ := registry.End(enc.ID())
	logger.Info("duel finished",
		zap.String("outcome", summary.Outcome.String()),
		zap.Int("turns", summary.Turns),
		zap.String("best_hand", summary.BestHand),
		zap.Int("best_score", summary.BestScore),
	)

	if cfg.Database.Enabled {
		if err := persist(ctx, cfg.Database, summary, *history, os.Stdout, logger); err != nil {
			logger.Error("saving encounter history", zap.Error(err))
		}
	}
}

func inputFor(auto bool, scriptPath string, logger *zap.Logger) (func() (string, bool), func()) {
	switch {
	case auto:
		return autopilot(), func() {}
	case scriptPath != "":
		f, err := os.Open(scriptPath)
		if err != nil {
			logger.Fatal("opening command script", zap.String("path", scriptPath), zap.Error(err))
		}
		return lines(f), func() { _ = f.Close() }
	default:
		return lines(os.Stdin), func() {}
	}
}

// persist stores summary and optionally prints the most recent encounters.
func persist(ctx context.Context, dbCfg config.DatabaseConfig, summary combat.Summary, history int, out io.Writer, logger *zap.Logger) error {
	pool, err := postgres.NewPool(ctx, dbCfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.EnsureSchema(ctx, 5*time.Second); err != nil {
		return err
	}

	repo := pool.Encounters()
	if _, err := repo.Save(ctx, summary); err != nil {
		return err
	}
	if history <= 0 {
		return nil
	}
	recent, err := repo.Recent(ctx, history)
	if err != nil {
		return err
	}
	for _, rec := range recent {
		fmt.Fprintf(out, "%s  %-8s turns=%-3d best=%s (%d)  hp=%d  defeated=%d/%d\n",
			rec.CreatedAt.Format(time.DateTime), rec.Outcome, rec.Turns,
			rec.BestHand, rec.BestScore, rec.PlayerHP, rec.EnemiesDefeated, rec.Enemies)
	}
	return nil
}
