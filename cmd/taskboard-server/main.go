package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sourcegraph/conc/pool"

	server "github.com/kazz187/taskboard/internal"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/panicerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

var (
	app = kingpin.New("taskboard-server", "Task board API server")

	serveCmd = app.Command("serve", "Run the HTTP server").Default()

	tokenCmd     = app.Command("token", "Print a bearer token signed with TASKBOARD_AUTH_SECRET")
	tokenSubject = tokenCmd.Flag("subject", "Caller the token identifies").Required().String()
	tokenTTL     = tokenCmd.Flag("ttl", "Token lifetime, 0 for no expiry").Default("0s").Duration()
)

func main() {
	var err error
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case serveCmd.FullCommand():
		err = serve()
	case tokenCmd.FullCommand():
		err = printToken()
	}
	if err != nil {
		slog.Error("taskboard-server failed", "error", err)
		os.Exit(1)
	}
}

func printToken() error {
	env, err := config.LoadAuthEnv()
	if err != nil {
		return err
	}
	a, err := auth.New(env.Secret)
	if err != nil {
		return err
	}
	token, err := a.Issue(*tokenSubject, *tokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func serve() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	setupLogger(env)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, closeStore, err := openStorage(ctx, &env.StorageEnv)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}()

	authenticator, err := auth.New(env.Secret)
	if err != nil {
		return err
	}

	userRepo := userrepo.NewYAMLRepository(store)
	taskRepo := taskrepo.NewYAMLRepository(store)

	taskService := task.NewService(taskRepo, userRepo)
	srv := server.NewServer(
		env,
		authenticator,
		task.NewServer(taskService),
		user.NewServer(userRepo),
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(panicerr.Guard("http server", func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}))
	p.Go(panicerr.Guard("shutdown", func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}))
	return p.Wait()
}

func setupLogger(env *config.Env) {
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))
}

func openStorage(ctx context.Context, env *config.StorageEnv) (storage.Storage, func() error, error) {
	noop := func() error { return nil }
	switch env.Type {
	case "s3":
		s, err := storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return s, noop, nil
	case "redis":
		s, err := storage.NewRedisStorage(ctx, env.RedisAddr, env.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis storage: %w", err)
		}
		return s, s.Close, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(env.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		s, err := storage.NewSQLiteStorage(env.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite storage: %w", err)
		}
		return s, s.Close, nil
	case "local", "":
		s, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return s, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", env.Type)
	}
}
