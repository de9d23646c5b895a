package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/wa-autoreply/internal/api"
	"github.com/anthropics/wa-autoreply/internal/biz/usecase"
	"github.com/anthropics/wa-autoreply/internal/conf"
	"github.com/anthropics/wa-autoreply/internal/data"
	"github.com/anthropics/wa-autoreply/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := conf.LoadFromEnv()

	repos, err := data.NewRepositories(config.Data.Dir)
	if err != nil {
		log.Fatalf("Failed to open data stores: %v", err)
	}
	defer repos.Close()

	replyUC := usecase.NewReplyUsecase(repos.Rule, config.Cooldown.NewCooldownGate())

	ctx := context.Background()
	loaded, err := replyUC.LoadPersisted(ctx)
	if err != nil {
		log.Fatalf("Failed to load persisted rules: %v", err)
	}
	fmt.Printf("[Main] Loaded %d persisted rules\n", loaded)

	// Seed rules never clobber persisted ones
	rulesConfig, err := conf.LoadRulesConfig(config.RulesPath)
	if err != nil {
		log.Fatalf("Failed to load seed rules: %v", err)
	}
	seeded := replyUC.SeedRules(ctx, rulesConfig.ToRules())
	fmt.Printf("[Main] Seeded %d default rules\n", seeded)

	responder := service.NewResponder(replyUC, repos.Outbox, repos.ReplyLog, config.Cooldown.SweepInterval())
	responder.Start()

	server := api.NewServer(replyUC, responder, repos.ReplyLog, repos.Outbox, config.API.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		server.Stop()
		responder.Stop()
		repos.Close()
		os.Exit(0)
	}()

	fmt.Println("Starting wa-autoreply engine...")
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
