package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"equipcare-hub.com/equipcare-hub/internal/broadcast"
	config "equipcare-hub.com/equipcare-hub/internal/configs"
	"equipcare-hub.com/equipcare-hub/internal/records"
	repository "equipcare-hub.com/equipcare-hub/internal/repositories"
	"equipcare-hub.com/equipcare-hub/internal/services"
)

// environment is one context's handle on the shared store together with
// everything that must be released when the command exits.
type environment struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *records.Store
	retention services.LogRetention
	closers   []func() error
}

func setup(name string) (*environment, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	retention, ok := services.ParseLogRetention(cfg.LogRetention)
	if !ok {
		return nil, fmt.Errorf("unknown log retention %q", cfg.LogRetention)
	}

	env := &environment{cfg: cfg, logger: logger, retention: retention}
	origin := name + "-" + uuid.NewString()

	repo, err := env.openRepository(origin)
	if err != nil {
		env.Close()
		return nil, err
	}

	bus, err := env.openBus(origin)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.store = records.NewStore(repo, bus, logger)
	logger.Info("store opened",
		zap.String("origin", origin),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("bus_driver", cfg.BusDriver),
	)
	return env, nil
}

func (env *environment) openRepository(origin string) (repository.Repository, error) {
	switch env.cfg.StoreDriver {
	case config.StoreFile:
		return repository.NewFileRepository(afero.NewOsFs(), env.cfg.DataDir, origin)
	case config.StoreMemory:
		return repository.NewMemoryRepository(), nil
	default:
		db, err := config.NewDatabaseClient(env.cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, sqlDB.Close)
		return repository.NewRecordRepository(db), nil
	}
}

// openBus picks Redis when configured. Otherwise a file store is watched on
// disk, and the other stores only reach contexts inside this process.
func (env *environment) openBus(origin string) (broadcast.Bus, error) {
	var bus broadcast.Bus

	switch {
	case env.cfg.BusDriver == config.BusRedis:
		client, err := config.NewRedisClient(env.cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, func() error {
			client.Close()
			return nil
		})

		redisBus := broadcast.NewRedisBus(client, env.cfg.RedisChannelPrefix, origin, env.logger)
		redisBus.Start()
		bus = redisBus
	case env.cfg.StoreDriver == config.StoreFile:
		watcher, err := broadcast.NewFileWatcher(env.cfg.DataDir, origin, env.logger)
		if err != nil {
			return nil, err
		}
		bus = watcher
	default:
		bus = broadcast.NewHub(env.logger).Connect(origin)
	}

	env.closers = append(env.closers, bus.Close)
	return bus, nil
}

// Close releases resources in reverse order of acquisition.
func (env *environment) Close() {
	for i := len(env.closers) - 1; i >= 0; i-- {
		if err := env.closers[i](); err != nil {
			env.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = env.logger.Sync()
}
