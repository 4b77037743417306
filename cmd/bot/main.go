package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"newton-gpt/internal/bot"
	"newton-gpt/internal/config"
	"newton-gpt/internal/discord"
	"newton-gpt/internal/llm"
	"newton-gpt/internal/logbuf"
	"newton-gpt/internal/scheduler"
	"newton-gpt/internal/store"
	"newton-gpt/internal/tui"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	buf := logbuf.New(cfg.LogFilePath)

	st := store.New(cfg.DataDir)
	if err := st.EnsureFile(); err != nil {
		log.Fatalf("failed to init preference store: %v", err)
	}

	factory := llm.NewFactory(cfg.APIKey, cfg.APIBase)
	if cfg.YandexOAuthToken != "" && cfg.YandexFolderID != "" {
		if err := factory.EnableYandex(cfg.YandexOAuthToken, cfg.YandexFolderID); err != nil {
			buf.Warnf("yandex provider unavailable: %v", err)
		}
	}

	dbot, err := discord.New(cfg.DiscordToken, cfg.GuildID, buf)
	if err != nil {
		log.Fatalf("failed to create discord session: %v", err)
	}

	orch := bot.NewOrchestrator(dbot.Gateway(), st, factory, buf, cfg.BotID, cfg.DefaultModel, cfg.HistoryLimit)
	if cfg.ImageGeneration {
		orch.EnableImages(
			llm.NewImageChecker(factory.ClientFor(cfg.DefaultModel), cfg.DefaultModel, buf),
			llm.NewImageClient(cfg.APIKey, cfg.APIBase, buf),
		)
	}
	disp := bot.NewDispatcher(dbot.Gateway(), st, buf, cfg.DefaultModel)

	sched := scheduler.New(buf, cfg.LogKeepLines)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := func() {
		buf.Infof("Starting bot...")
		if err := dbot.Start(ctx, orch, disp, factory.Models()); err != nil {
			buf.Errorf("bot stopped: %v", err)
		}
	}

	if err := tui.Run(buf, start); err != nil {
		log.Fatalf("terminal ui failed: %v", err)
	}
}
