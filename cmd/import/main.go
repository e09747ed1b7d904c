// Package main provides a utility to import moderation history from an
// external system.
//
// Usage:
//
//	go run cmd/import/main.go -file history.json -guild 123456789
//
// Options:
//
//	-file <path>    JSON file with the record batch (required)
//	-guild <id>     Guild to import into (required)
//	-dry-run        Replay against an in-memory store without persisting
//	-failed <path>  Write records that could not be applied to this file
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/goccy/go-json"
)

func main() {
	filePath := flag.String("file", "", "JSON file with the record batch")
	guildID := flag.String("guild", "", "Guild to import into")
	dryRun := flag.Bool("dry-run", false, "Replay against an in-memory store without persisting")
	failedPath := flag.String("failed", "", "Write records that could not be applied to this file")
	flag.Parse()

	if *filePath == "" || *guildID == "" {
		fmt.Println("Uso: import -file <path> -guild <id> [-dry-run] [-failed <path>]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando importación de historial de moderación...", "Import")

	data, err := os.ReadFile(*filePath)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error leyendo %s: %v", *filePath, err), "Import")
		os.Exit(1)
	}

	var records []moderation.Record
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Critical(fmt.Sprintf("Error parseando %s: %v", *filePath, err), "Import")
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Registros leídos: %d", len(records)), "Import")

	svc, cleanup, err := buildService(cfg, *dryRun)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error inicializando el servicio: %v", err), "Import")
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := moderation.NewReconciler(svc).Run(ctx, *guildID, records)
	if err != nil {
		logger.Error(fmt.Sprintf("La importación terminó con error: %v", err), "Import")
	}
	if result == nil {
		os.Exit(1)
	}

	logger.Info(fmt.Sprintf("Importados: %d | Omitidos: %d | Fallidos: %d",
		result.Imported, result.Skipped, len(result.Failed)), "Import")

	if *failedPath != "" && len(result.Failed) > 0 {
		out, mErr := json.MarshalIndent(result.Failed, "", "  ")
		if mErr == nil {
			mErr = os.WriteFile(*failedPath, out, 0644)
		}
		if mErr != nil {
			logger.Error(fmt.Sprintf("Error escribiendo registros fallidos: %v", mErr), "Import")
		} else {
			logger.Info(fmt.Sprintf("Registros fallidos escritos en %s", *failedPath), "Import")
		}
	}

	if err != nil {
		os.Exit(1)
	}
	logger.Success("Importación completada", "Import")
}

// buildService wires a moderation service for the run. Imports never
// touch the platform, so there is no enforcer or notifier either way.
func buildService(cfg *config.Config, dryRun bool) (*moderation.Service, func(), error) {
	opts := moderation.Options{
		SystemActorID: cfg.SystemActorID,
		CountHidden:   cfg.CountHidden,
	}

	if dryRun {
		logger.Info("Modo dry-run: los cambios no se persistirán", "Import")
		return moderation.NewService(moderation.NewMemoryStore(), nil, nil, opts), func() {}, nil
	}

	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	database.InitGlobalDataManagers(db)

	store := database.NewModerationStore(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error creando índices: %v", err), "Import")
	}

	cleanup := func() {
		if err := db.Disconnect(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando la base de datos: %v", err), "Import")
		}
	}
	return moderation.NewService(store, nil, nil, opts), cleanup, nil
}
