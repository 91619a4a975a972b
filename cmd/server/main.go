package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/rl1809/inventory-api/internal/adapter/handler"
	"github.com/rl1809/inventory-api/internal/adapter/storage"
	"github.com/rl1809/inventory-api/internal/config"
	"github.com/rl1809/inventory-api/internal/core/service"
	"github.com/rl1809/inventory-api/internal/port"
)

// store is what the bootstrap needs from a storage adapter.
type store interface {
	port.ItemRepository
	EnsureSchema(ctx context.Context) error
}

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "inventory-api",
		Short:        "inventory item CRUD service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "run the HTTP and gRPC servers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(envFile)
			},
		},
		&cobra.Command{
			Use:   "init-db",
			Short: "create the inventory_items table if it does not exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return initDB(envFile)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initDB(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, closer, err := openStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	log.Printf("schema ready on %s", cfg.DB.Driver)
	return nil
}

func serve(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, closer, err := openStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.DB.InitSchema {
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Println("schema ready")
	}

	// Optional item cache
	var cache port.ItemCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer rdb.Close()
		cache = storage.NewRedisAdapter(rdb, cfg.CacheTTL)
		log.Printf("connected to redis, cache ttl %s", cfg.CacheTTL)
	}

	inventoryService := service.NewInventoryService(db, cache)

	// gRPC health server
	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		grpcServer = grpc.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, handler.NewGRPCHealthHandler(inventoryService))
		reflection.Register(grpcServer)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}

		go func() {
			log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				log.Printf("gRPC server error: %v", err)
			}
		}()
	}

	// HTTP server
	httpHandler := handler.NewHTTPHandler(inventoryService, cfg.MaxBodyBytes)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Routes(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	log.Println("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		log.Println("gRPC server stopped")
	}

	return nil
}

func openStore(ctx context.Context, cfg config.DBConfig) (store, io.Closer, error) {
	opts := storage.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	switch cfg.Driver {
	case storage.DriverPostgres:
		pool, err := storage.OpenPostgres(ctx, cfg.PostgresURL, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect postgres: %w", err)
		}
		log.Println("connected to postgres")
		return storage.NewPostgresAdapter(pool), closerFunc(pool.Close), nil
	default:
		db, err := storage.OpenMySQL(ctx, cfg.MySQLDSN, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect mysql: %w", err)
		}
		log.Println("connected to mysql")
		return storage.NewMySQLAdapter(db), db, nil
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
