package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-pos/internal/config"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/seed"
	"go-inventory-pos/internal/server"
	"go-inventory-pos/pkg/database"
)

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg, os.Stderr)

	// 2. Database
	db, err := database.Connect(cfg.DatabaseOptions(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// 3. Default privileges, roles and admin user
	if err := seed.Run(context.Background(), db, log); err != nil {
		log.Fatal().Err(err).Msg("seed database")
	}

	// 4. Wiring
	srv, err := server.New(cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build server")
	}
	srv.Start()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Str("db", cfg.DBDriver).Msg("listening")
		if err := srv.App.Listen(addr); err != nil {
			log.Panic().Err(err).Msg("listen")
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := srv.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
