package main

import (
	"context"
	"log"

	"anoa.com/communityforum/internal/bootstrap"
	"anoa.com/communityforum/internal/config"
	"anoa.com/communityforum/internal/server"
	"anoa.com/communityforum/pkg/database"
	"anoa.com/communityforum/pkg/mailer"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	}

	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail = mailer.NewClient(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		log.Println("SMTP not configured, password reset emails are logged only")
		mail = mailer.LogSender{}
	}

	srv := server.New(cfg, db, redisClient, mail)
	if err := srv.Run(context.Background()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
