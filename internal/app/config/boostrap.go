package config

import (
	"context"
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Bootstrap struct {
	Router         *chi.Mux
	Mongo          *mongo.Client
	Redis          *redis.Client
	Logger         *zap.Logger
	RabbitMQ       *amqp091.Connection
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
	// Worker stop hooks, called during Shutdown to drain background workers
	SearchWorkerStop   func()
	BookingWorkerStop  func()
	CallbackWorkerStop func()
	SnapshotWorkerStop func()
}

func (b *Bootstrap) Shutdown(ctx context.Context) error {
	for _, stop := range []struct {
		name string
		fn   func()
	}{
		{"search worker", b.SearchWorkerStop},
		{"booking worker", b.BookingWorkerStop},
		{"callback worker", b.CallbackWorkerStop},
		{"snapshot worker", b.SnapshotWorkerStop},
	} {
		if stop.fn != nil {
			stop.fn()
			log.Printf("Successfully stopped %s", stop.name)
		}
	}

	if err := b.Redis.Close(); err != nil {
		return err
	}
	log.Println("Successfully closing Redis")

	if err := b.RabbitMQ.Close(); err != nil {
		return err
	}
	log.Println("Successfully closing RabbitMQ")

	if err := b.Mongo.Disconnect(ctx); err != nil {
		return err
	}
	log.Println("Successfully closing MongoDB")

	if err := b.Logger.Sync(); err != nil {
		return err
	}
	log.Println("Successfully closing Logger")

	return nil
}
