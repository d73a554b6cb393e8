package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classtrack/internal/account"
	"classtrack/internal/config"
	"classtrack/internal/queue"
	"classtrack/internal/store"
)

// Worker keeps the student-code snapshot warm and drains check-in
// notifications. The snapshot is what the api falls back to when the
// primary store is down, so it is refreshed on every roster change and
// on a timer.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	repo := account.NewRepository(db.Client)
	snapshot := account.NewSnapshot(redisClient.Client, cfg.SnapshotKey)

	refresh := func() {
		students, err := repo.ListStudents(ctx)
		if err != nil {
			log.Printf("snapshot refresh: list students failed: %v", err)
			return
		}
		if err := snapshot.Replace(ctx, students); err != nil {
			log.Printf("snapshot refresh: store failed: %v", err)
			return
		}
		log.Printf("snapshot refreshed, %d students", len(students))
	}
	refresh()

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	ticker := time.NewTicker(cfg.SnapshotRefresh)
	defer ticker.Stop()

	log.Println("worker started, waiting for messages...")
	for {
		select {
		case <-ctx.Done():
			log.Println("worker stopped")
			return
		case <-ticker.C:
			refresh()
		case msg, ok := <-messages:
			if !ok {
				log.Println("worker stopped")
				return
			}
			switch msg.Type {
			case queue.TypeRosterChanged:
				refresh()
			case queue.TypeCheckin:
				log.Printf("check-in recorded: %s", string(msg.Body))
			}
		}
	}
}
