package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/cache"
	"bookshelf/config"
	"bookshelf/db"
	"bookshelf/models"
	"bookshelf/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := config.NewLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("bookshelf stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
	}()

	var activity *service.ActivityHandler
	if cfg.RedisURL != "" {
		redisClient, err := config.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient)

		activity = service.NewActivityHandler(cache.CreateRedisCache(redisClient, service.MAX_NUMBER_CACHED), logger)
	}

	library, libraryClosers, err := setupLibrary(ctx, cfg, logger)
	closers = append(closers, libraryClosers...)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: service.SetupRoutes(service.NewBookHandler(library, logger), activity, logger),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("bookshelf listening", "addr", cfg.Addr, "driver", cfg.Driver)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// setupLibrary opens the store selected by cfg.Driver and makes sure its schema exists.
// The returned closers must be closed even when an error is returned.
func setupLibrary(ctx context.Context, cfg config.Config, logger *slog.Logger) (models.Library, []io.Closer, error) {
	options := []db.Option{db.WithTableName(cfg.TableName), db.WithLogger(logger)}

	var (
		library *db.SQLLibraryManager
		closers []io.Closer
		err     error
	)

	switch cfg.Driver {
	case config.DriverMemory:
		return db.NewMemoryLibrary(), nil, nil

	case config.DriverElastic:
		return setupElasticLibrary(ctx, cfg, logger)

	case config.DriverPGX:
		pool, poolErr := config.NewPGXPool(ctx, cfg.DatabaseURL)
		if poolErr != nil {
			return nil, nil, poolErr
		}
		closers = append(closers, closerFunc(pool.Close))
		library, err = db.NewPostgresLibraryFromPGXPool(pool, options...)

	case config.DriverPostgres:
		sqlDB, openErr := config.NewPostgresSQLDB(ctx, cfg.DatabaseURL)
		if openErr != nil {
			return nil, nil, openErr
		}
		closers = append(closers, sqlDB)
		library, err = db.NewPostgresLibraryFromSQLDB(sqlDB, options...)

	case config.DriverSQLX:
		sqlxDB, openErr := config.NewPostgresSQLX(ctx, cfg.DatabaseURL)
		if openErr != nil {
			return nil, nil, openErr
		}
		closers = append(closers, sqlxDB)
		library, err = db.NewPostgresLibraryFromSQLX(sqlxDB, options...)

	case config.DriverSQLite:
		sqliteDB, openErr := config.NewSQLiteDB(ctx, cfg.SQLiteFile)
		if openErr != nil {
			return nil, nil, openErr
		}
		closers = append(closers, sqliteDB)
		library, err = db.NewSQLiteLibrary(sqliteDB, options...)

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, cfg.Driver)
	}

	if err != nil {
		return nil, closers, err
	}

	if err := library.EnsureSchema(ctx); err != nil {
		return nil, closers, err
	}

	return library, closers, nil
}

func setupElasticLibrary(ctx context.Context, cfg config.Config, logger *slog.Logger) (models.Library, []io.Closer, error) {
	elasticClient, err := config.NewElasticClient(cfg.ElasticURL)
	if err != nil {
		return nil, nil, err
	}
	closers := []io.Closer{closerFunc(elasticClient.Stop)}

	redisClient, err := config.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, closers, err
	}
	closers = append(closers, redisClient)

	ids, err := db.NewRedisIdSequence(redisClient, cfg.TableName+":id")
	if err != nil {
		return nil, closers, err
	}

	library, err := db.NewElasticLibrary(elasticClient, ids, cfg.TableName, logger)
	if err != nil {
		return nil, closers, err
	}

	if err := library.EnsureIndex(ctx); err != nil {
		return nil, closers, err
	}

	return library, closers, nil
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
