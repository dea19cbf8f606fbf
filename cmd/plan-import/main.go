// Command plan-import moves plan and player source data between the club's
// CSV sheets and the database. It replaces the copy-paste step that used to
// feed the roster tooling.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/plancsv"
	"github.com/tvgw-tennis/winterplan-api/internal/repository"
	"github.com/tvgw-tennis/winterplan-api/pkg/config"
	"github.com/tvgw-tennis/winterplan-api/pkg/database"
	"github.com/tvgw-tennis/winterplan-api/pkg/logger"
)

func main() {
	var (
		planPath        string
		preferencesPath string
		overridesPath   string
		ranksPath       string
		exportPath      string
		replacePlan     bool
	)
	flag.StringVar(&planPath, "plan", "", "plan CSV to import")
	flag.StringVar(&preferencesPath, "preferences", "", "preference source CSV to import")
	flag.StringVar(&overridesPath, "overrides", "", "override source CSV to import")
	flag.StringVar(&ranksPath, "ranks", "", "rank table CSV to import")
	flag.StringVar(&exportPath, "export", "", "write the stored plan to this CSV file and exit")
	flag.BoolVar(&replacePlan, "replace", false, "wipe the stored plan before importing plan rows")
	flag.Parse()

	if planPath == "" && preferencesPath == "" && overridesPath == "" && ranksPath == "" && exportPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	planRepo := repository.NewPlanRepository(db)
	playerRepo := repository.NewPlayerRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if exportPath != "" {
		if err := exportPlan(ctx, planRepo, exportPath); err != nil {
			logr.Fatal("export plan", zap.Error(err))
		}
		logr.Info("plan exported", zap.String("file", exportPath))
		return
	}

	if preferencesPath != "" {
		n, err := importPreferences(ctx, playerRepo, preferencesPath)
		if err != nil {
			logr.Fatal("import preferences", zap.Error(err))
		}
		logr.Info("preferences imported", zap.Int("rows", n))
	}
	if overridesPath != "" {
		n, err := importOverrides(ctx, playerRepo, overridesPath)
		if err != nil {
			logr.Fatal("import overrides", zap.Error(err))
		}
		logr.Info("overrides imported", zap.Int("rows", n))
	}
	if ranksPath != "" {
		n, err := importRanks(ctx, playerRepo, ranksPath)
		if err != nil {
			logr.Fatal("import ranks", zap.Error(err))
		}
		logr.Info("ranks imported", zap.Int("rows", n))
	}
	if planPath != "" {
		n, err := importPlan(ctx, planRepo, planPath, replacePlan)
		if err != nil {
			logr.Fatal("import plan", zap.Error(err))
		}
		logr.Info("plan imported", zap.Int("rows", n), zap.Bool("replaced", replacePlan))
	}
}

func importPlan(ctx context.Context, repo *repository.PlanRepository, path string, replace bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := plancsv.ReadPlan(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	if !replace {
		if err := repo.BulkInsert(ctx, rows); err != nil {
			return 0, err
		}
		return len(rows), nil
	}

	tx, err := repo.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	if err := repo.DeleteAllWithTx(ctx, tx); err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := repo.BulkInsertWithTx(ctx, tx, rows); err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func importPreferences(ctx context.Context, repo *repository.PlayerRepository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := plancsv.ReadPreferences(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return len(rows), repo.ReplacePreferences(ctx, rows)
}

func importOverrides(ctx context.Context, repo *repository.PlayerRepository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := plancsv.ReadOverrides(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return len(rows), repo.ReplaceOverrides(ctx, rows)
}

func importRanks(ctx context.Context, repo *repository.PlayerRepository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := plancsv.ReadRanks(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return len(rows), repo.ReplaceRanks(ctx, rows)
}

func exportPlan(ctx context.Context, repo *repository.PlanRepository, path string) error {
	rows, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return plancsv.WritePlan(f, rows)
}
