package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VitaminP8/threadly/internal/aggregate"
	"github.com/VitaminP8/threadly/internal/comment"
	"github.com/VitaminP8/threadly/internal/config"
	"github.com/VitaminP8/threadly/internal/httpapi"
	"github.com/VitaminP8/threadly/internal/post"
	"github.com/VitaminP8/threadly/internal/reaction"
	"github.com/VitaminP8/threadly/internal/storage/memory"
	"github.com/VitaminP8/threadly/internal/storage/postgres"
	"github.com/VitaminP8/threadly/internal/subscription"
	"github.com/VitaminP8/threadly/internal/user"
)

func main() {
	// загружаем .env из нашего config.go
	config.LoadEnv()
	cfg := config.Load()

	storageType := flag.String("storage", cfg.Storage, "Тип хранилища: memory, postgres или sqlite")
	flag.Parse()

	var postStore post.PostStorage
	var commentStore comment.CommentStorage
	var reactionStore reaction.ReactionStorage
	var userStore user.UserStorage

	switch *storageType {
	case "postgres", "sqlite":
		var err error
		if *storageType == "postgres" {
			err = postgres.InitDB()
		} else {
			err = postgres.InitSQLite(cfg.SQLitePath)
		}
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		if err := postgres.Migrate(postgres.DB); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}

		log.Printf("Используется реляционное хранилище (%s)", *storageType)
		postStore = postgres.NewPostPostgresStorage(postgres.DB)
		commentStore = postgres.NewCommentPostgresStorage(postgres.DB)
		reactionStore = postgres.NewReactionPostgresStorage(postgres.DB)
		userStore = postgres.NewUserPostgresStorage(postgres.DB)

	case "memory":
		log.Println("Используется in-memory хранилище")
		store := memory.NewStore()
		postStore = store
		commentStore = store
		reactionStore = store
		userStore = memory.NewUserMemoryStorage()

	default:
		log.Fatalf("неизвестный тип хранилища: %s", *storageType)
	}

	manager := subscription.NewSubscriptionManager()
	ledger := reaction.NewLedger(reactionStore, reaction.WithManager(manager))
	threads := comment.NewBuilder(postStore, commentStore,
		comment.WithManager(manager),
		comment.WithMaxDepth(cfg.ThreadMaxDepth),
	)
	summary, err := aggregate.NewService(postStore, commentStore, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("failed to create aggregate service: %v", err)
	}

	router := httpapi.NewRouter(&httpapi.Handler{
		Users:   userStore,
		Posts:   postStore,
		Threads: threads,
		Ledger:  ledger,
		Summary: summary,
		Events:  manager,
	})

	// сверка счётчиков с журналом реакций в фоне
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go ledger.RunReconciler(ctx, cfg.ReconcileInterval)

	// HTTP сервер
	server := httpapi.NewServer(ctx, cfg.Addr, router)

	// запуск HTTP сервер
	go func() {
		log.Printf("Сервер запущен на %s", cfg.Addr)
		// блокирует поток, пока не выполнится server.Shutdown() или не произойдет фатальная ошибка
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Завершение...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка при завершении сервера: %v", err)
	}

	if *storageType != "memory" {
		if err := postgres.CloseDB(); err != nil {
			log.Println(err)
		}
	}

	log.Println("Сервер остановлен корректно")
}
