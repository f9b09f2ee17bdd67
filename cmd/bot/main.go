package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/adilbekov/gre-vocab-bot/internal/config"
	"github.com/adilbekov/gre-vocab-bot/internal/delivery/telegram"
	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
	"github.com/adilbekov/gre-vocab-bot/internal/infra/postgres"
	"github.com/adilbekov/gre-vocab-bot/internal/logger"
	"github.com/adilbekov/gre-vocab-bot/internal/repository"
	"github.com/adilbekov/gre-vocab-bot/internal/service"
	"github.com/adilbekov/gre-vocab-bot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zl.Fatal("failed to create bot api", zap.Error(err))
	}
	zl.Info("authorized", zap.String("account", bot.Self.UserName))

	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the trainer"},
		{Command: "study", Description: "Flashcard session"},
		{Command: "quiz", Description: "Multiple-choice quiz"},
		{Command: "context", Description: "Fill in the blank"},
		{Command: "quit", Description: "Finish the current session"},
		{Command: "progress", Description: "Statistics and day streak"},
		{Command: "search", Description: "Search the vocabulary"},
		{Command: "export", Description: "Export difficult words as CSV"},
		{Command: "settings", Description: "Show active configuration"},
		{Command: "help", Description: "All commands"},
	}
	if _, err = bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		zl.Warn("failed to set bot commands", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing or invalid vocabulary file is not fatal: the learner can
	// upload a CSV in chat.
	wordRepo, err := repository.NewWordRepository(cfg.WordsCSVPath)
	if err != nil {
		zl.Warn("vocabulary not loaded, starting empty",
			zap.String("path", cfg.WordsCSVPath),
			zap.Error(err),
		)
		wordRepo = repository.NewEmptyWordRepository()
	} else {
		zl.Info("vocabulary loaded",
			zap.String("path", cfg.WordsCSVPath),
			zap.Int("words", wordRepo.Count()),
		)
	}

	policy := entities.ReviewPolicy{
		DifficultyIncrement: cfg.Difficulty.Increment,
		DifficultyDecay:     cfg.Difficulty.Decay,
		DifficultyMax:       cfg.Difficulty.Max,
		DifficultyThreshold: cfg.Difficulty.Threshold,
		MasteryStreak:       cfg.Session.MasteryStreak,
	}

	var (
		progressRepo service.ProgressRepository
		historyRepo  service.HistoryRepository
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			zl.Fatal("database url is not configured", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        cfg.DB.MaxConnections,
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			zl.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		pgProgress := postgres.NewProgressRepository(pool)
		pgHistory := postgres.NewHistoryRepository(pool)
		if err := pgProgress.Migrate(ctx); err != nil {
			zl.Fatal("failed to migrate progress table", zap.Error(err))
		}
		if err := pgHistory.Migrate(ctx); err != nil {
			zl.Fatal("failed to migrate history table", zap.Error(err))
		}
		progressRepo, historyRepo = pgProgress, pgHistory

	default:
		fileProgress, err := repository.NewFileProgressRepository(cfg.ProgressPath)
		if errors.Is(err, repository.ErrCorruptState) {
			zl.Warn("progress file unreadable, starting with an empty store",
				zap.String("path", cfg.ProgressPath),
				zap.Error(err),
			)
		} else if err != nil {
			zl.Fatal("failed to open progress store",
				zap.String("path", cfg.ProgressPath),
				zap.Error(err),
			)
		}
		fileHistory, err := repository.NewFileHistoryRepository(cfg.HistoryPath)
		if errors.Is(err, repository.ErrCorruptState) {
			zl.Warn("session archive unreadable, starting a fresh one",
				zap.String("path", cfg.HistoryPath),
				zap.Error(err),
			)
		} else if err != nil {
			zl.Fatal("failed to open session archive",
				zap.String("path", cfg.HistoryPath),
				zap.Error(err),
			)
		}
		progressRepo, historyRepo = fileProgress, fileHistory
	}

	wordService := service.NewWordService(wordRepo)
	progressService := service.NewProgressService(progressRepo, historyRepo, wordRepo, policy)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	builder := service.NewSessionBuilder(wordRepo, progressRepo, policy, cfg.Session.FreezeMastered, rng)
	options := service.NewOptionGenerator(wordRepo, rng)
	validator := service.NewAnswerValidator()

	studyService := service.NewStudyService(
		wordRepo,
		progressService,
		builder,
		options,
		validator,
		cfg.Session.Size,
		cfg.Session.NewWordsRatio,
	)

	sessions := storage.NewSessionStorage()
	questions := storage.NewQuestionStorage()
	chats := storage.NewChatStorage()

	handler := telegram.NewHandler(
		bot,
		zl,
		wordService,
		progressService,
		studyService,
		sessions,
		questions,
		chats,
		telegram.Settings{
			SessionSize:         cfg.Session.Size,
			NewWordsRatio:       cfg.Session.NewWordsRatio,
			FreezeMastered:      cfg.Session.FreezeMastered,
			MasteryStreak:       cfg.Session.MasteryStreak,
			DifficultyThreshold: cfg.Difficulty.Threshold,
			ReminderEnabled:     cfg.Reminder.Enabled,
			ReminderInterval:    cfg.Reminder.Interval,
			Storage:             cfg.Storage,
		},
	)

	if cfg.Reminder.Enabled {
		reminder := service.NewReminderService(progressRepo, handler, chats, zl, cfg.Reminder.Interval)
		go reminder.Run(ctx)
	}

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Fatal("telegram handler failed", zap.Error(err))
	}

	zl.Info("shutdown signal received")
}
