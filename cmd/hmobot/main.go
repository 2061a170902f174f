package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/hmobot/internal/ai"
	"github.com/xxxsen/hmobot/internal/config"
	"github.com/xxxsen/hmobot/internal/embedcache"
	"github.com/xxxsen/hmobot/internal/filestore"
	"github.com/xxxsen/hmobot/internal/handler"
	"github.com/xxxsen/hmobot/internal/index"
	"github.com/xxxsen/hmobot/internal/kb"
	"github.com/xxxsen/hmobot/internal/middleware"
	"github.com/xxxsen/hmobot/internal/model"
	"github.com/xxxsen/hmobot/internal/profile"
	"github.com/xxxsen/hmobot/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hmobot",
		Short: "HMO benefits chatbot backend",
	}
	rootCmd.AddCommand(newRunCmd(), newChunksCmd())

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run hmobot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	return cmd
}

func newChunksCmd() *cobra.Command {
	var dir string
	var only string
	cmd := &cobra.Command{
		Use:   "chunks",
		Short: "print the chunks parsed from a knowledge base directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return fmt.Errorf("--dir is required")
			}
			filter := model.HMOUnknown
			if only != "" {
				h, ok := model.ParseHMO(only)
				if !ok {
					return fmt.Errorf("unknown hmo %q", only)
				}
				filter = h
			}
			chunks, err := kb.LoadDir(cmd.Context(), dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ch := range chunks {
				if filter != model.HMOUnknown && ch.HMO != filter {
					continue
				}
				fmt.Fprintf(out, "=== %s | %s ===\n%s\n\n", ch.Topic, ch.HMO, ch.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "knowledge base directory")
	cmd.Flags().StringVar(&only, "hmo", "", "only print chunks of this hmo")
	return cmd
}

func newChatter(mc *config.ModelConfig) (ai.IChatter, error) {
	provider, err := ai.NewProvider(mc.Provider, mc.ProviderArgs())
	if err != nil {
		return nil, err
	}
	opts := ai.ChatOptions{MaxTokens: mc.MaxTokens}
	if mc.Temperature != nil {
		opts.Temperature = *mc.Temperature
	}
	return ai.NewChatter(provider, mc.Model, opts), nil
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("knowledge_base", cfg.KnowledgeBase.Store.Type),
		zap.String("chat_provider", cfg.AI.Chat.Provider),
		zap.String("embed_provider", cfg.AI.Embed.Provider),
	)

	chatter, err := newChatter(&cfg.AI.Chat)
	if err != nil {
		return fmt.Errorf("init chat provider: %w", err)
	}
	extractorChatter, err := newChatter(cfg.AI.Extractor)
	if err != nil {
		return fmt.Errorf("init extractor provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Embed.Provider, cfg.AI.Embed.ProviderArgs())
	if err != nil {
		return fmt.Errorf("init embedding provider: %w", err)
	}
	embedder := embedcache.WrapLruCacheToEmbedder(
		ai.NewEmbedder(embedProvider, cfg.AI.Embed.Model),
		cfg.AI.EmbedCache.Size,
		time.Duration(cfg.AI.EmbedCache.TTLSeconds)*time.Second,
	)

	store, err := filestore.New(cfg.KnowledgeBase.Store.Type, cfg.KnowledgeBase.Store.Data)
	if err != nil {
		return fmt.Errorf("init knowledge base store: %w", err)
	}
	chunks, err := kb.LoadStore(ctx, store)
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}
	ix, err := index.Build(ctx, chunks, embedder)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	chatService := service.NewChatService(chatter, profile.NewExtractor(extractorChatter), ix, cfg.Retrieval.TopK)
	deps := handler.RouterDeps{
		Chat: handler.NewChatHandler(chatService),
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			middleware.RateLimit(time.Duration(cfg.RateLimitMS)*time.Millisecond),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
