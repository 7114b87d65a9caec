// Command lunad runs the luna IRC bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/bot"
	"github.com/lunairc/luna/config"
	"github.com/lunairc/luna/data"
	"github.com/lunairc/luna/ext"
	"github.com/lunairc/luna/remote"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "luna.toml", "path to the configuration file")
	flag.Parse()

	if err := run(configPath); err != nil {
		fmt.Fprintln(os.Stderr, "lunad:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	conf := config.FromFile(configPath)

	logger, err := newLogger(conf)
	if err != nil {
		return err
	}

	b, err := bot.New(conf, logger)
	if err != nil {
		return err
	}
	s := b.Session()

	store, err := openStore(conf, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	s.Access = store

	manager := ext.NewManager(s, logger.New("component", "ext"))
	manager.AddBundled()
	s.Scripts = manager
	manager.LoadAll(conf.Scripts)
	defer manager.UnloadAll()

	if len(conf.Remote.Listen) > 0 {
		lis, err := remote.Listen(conf.Remote.Listen)
		if err != nil {
			return err
		}

		server := remote.NewServer(logger.New("component", "remote"))
		b.Dispatcher().Register("", server)
		go func() {
			if err := server.Serve(lis); err != nil {
				logger.Error("Remote server died", "err", err)
			}
		}()
		defer server.Stop()
	}

	if len(conf.Redis.Addr) > 0 {
		client := remote.NewRedisClient(conf.Redis.Addr, conf.Redis.Password,
			conf.Redis.DB)
		defer client.Close()

		publisher := remote.NewPublisher(client, conf.Redis.Channel,
			logger.New("component", "redis"))
		b.Dispatcher().Register("", publisher)
		defer publisher.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 2)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-quit
		logger.Info("Caught signal, shutting down", "signal", sig.String())
		cancel()
	}()

	return b.Run(ctx)
}

// newLogger builds the root logger from the [log] table: logfmt records to
// stderr or to a file, filtered by level.
func newLogger(conf *config.Config) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(conf.Log.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", conf.Log.Level)
	}

	handler := log15.StreamHandler(os.Stderr, log15.LogfmtFormat())
	if len(conf.Log.File) > 0 {
		if handler, err = log15.FileHandler(conf.Log.File,
			log15.LogfmtFormat()); err != nil {

			return nil, errors.Wrapf(err, "opening log file %s", conf.Log.File)
		}
	}

	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(lvl, handler))
	return logger, nil
}

// openStore opens the access database and imports the users file into it.
// Without an accessdb the accounts live in memory.
func openStore(conf *config.Config, logger log15.Logger) (*data.Store, error) {
	provider := data.MemStoreProvider
	if len(conf.AccessDB) > 0 {
		provider = data.FileStoreProvider(conf.AccessDB)
	}

	store, err := data.NewStore(provider)
	if err != nil {
		return nil, err
	}

	n, err := store.ImportFile(conf.UsersFile)
	if err != nil {
		logger.Warn("Users not imported", "file", conf.UsersFile, "err", err)
		return store, nil
	}

	logger.Info("Imported users", "file", conf.UsersFile, "n", n)
	return store, nil
}
