package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/candidhq/candid"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interview HTTP server",
	Long:  `Starts the interview engine and exposes its JSON API over HTTP. Requires GEMINI_API_KEY; TAVILY_API_KEY optionally enables the consultant's web search fallback.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")
		sessionTTL, _ := cmd.Flags().GetDuration("session-ttl")
		sqlitePath, _ := cmd.Flags().GetString("sqlite")
		kbDir, _ := cmd.Flags().GetString("kb")
		kbThreshold, _ := cmd.Flags().GetFloat64("kb-threshold")
		agentTimeout, _ := cmd.Flags().GetDuration("agent-timeout")

		app, err := candid.New(cmd.Context(), candid.Config{
			GenAIAPIKey:        os.Getenv("GEMINI_API_KEY"),
			TavilyAPIKey:       os.Getenv("TAVILY_API_KEY"),
			RedisAddr:          redisAddr,
			RedisPassword:      redisPassword,
			RedisDB:            redisDB,
			SessionTTL:         sessionTTL,
			SQLitePath:         sqlitePath,
			KnowledgeDir:       kbDir,
			KnowledgeThreshold: kbThreshold,
			AgentTimeout:       agentTimeout,
			Logger:             logger,
		})
		if err != nil {
			fmt.Printf("Error initializing candid: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: app.Handler(),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting candid server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("candid server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for durable sessions (empty: in-memory)")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database number")
	serveCmd.Flags().Duration("session-ttl", 0, "Expire idle sessions after this duration (0: never)")
	serveCmd.Flags().String("sqlite", "", "SQLite path for interview records (empty: in-memory)")
	serveCmd.Flags().String("kb", "", "Directory of markdown/text files to seed the knowledge base")
	serveCmd.Flags().Float64("kb-threshold", 0, "Knowledge gate distance threshold (0: default)")
	serveCmd.Flags().Duration("agent-timeout", 0, "Per-attempt timeout for agent calls (0: default)")
}
