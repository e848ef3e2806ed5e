// FRANK Daemon - local voice assistant core
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/franklab/frank/internal/agenda"
	"github.com/franklab/frank/internal/api"
	"github.com/franklab/frank/internal/assistant"
	"github.com/franklab/frank/internal/config"
	"github.com/franklab/frank/internal/embeddings"
	"github.com/franklab/frank/internal/llm"
	"github.com/franklab/frank/internal/memory"
	"github.com/franklab/frank/internal/planner"
	"github.com/franklab/frank/internal/profile"
	"github.com/franklab/frank/internal/project"
	"github.com/franklab/frank/internal/router"
	"github.com/franklab/frank/internal/storage"
	"github.com/franklab/frank/internal/tools"
	"github.com/franklab/frank/internal/vectors"
)

var (
	configPath string
	port       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "frank",
		Short: "FRANK - assistant personnel local",
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// .env first so config.Load sees the overrides
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// Open database
	db, err := storage.Open(storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Document ledgers
	prof, err := profile.NewStore(db)
	if err != nil {
		return fmt.Errorf("profile store: %w", err)
	}
	agendaStore, err := agenda.NewStore(db)
	if err != nil {
		return fmt.Errorf("agenda store: %w", err)
	}
	projects, err := project.NewStore(db)
	if err != nil {
		return fmt.Errorf("project store: %w", err)
	}

	// Prune facts that decayed below relevance since the last run
	if err := prof.Cleanup(); err != nil {
		fmt.Printf("⚠️  Profile cleanup: %v\n", err)
	}

	if name := prof.Name(); name != "" {
		fmt.Printf("👤 Utilisateur : %s\n", name)
	}

	// Generation backend (LM Studio)
	llmClient := llm.NewClient(llm.Config{
		BaseURL: cfg.LMStudio.BaseURL,
		Model:   cfg.LMStudio.Model,
	})

	// Long-term memory: Ollama embeddings + Qdrant, both optional
	var recall assistant.Recall
	var gate assistant.Gate
	if cfg.Assistant.EnableMemory {
		vectorStore, err := vectors.NewStore(vectors.Config{
			Host: cfg.Qdrant.Host,
			Port: cfg.Qdrant.Port,
		})
		if err != nil {
			fmt.Printf("⚠️  Qdrant not available: %v\n", err)
			fmt.Println("   Long-term memory disabled")
		} else {
			defer vectorStore.Close()

			embedder := embeddings.NewService(embeddings.Config{
				BaseURL: cfg.Ollama.URL,
				Model:   cfg.Ollama.Model,
			})
			if err := embedder.Health(context.Background()); err != nil {
				fmt.Printf("⚠️  Ollama not available: %v\n", err)
				fmt.Println("   Long-term memory disabled")
			} else {
				if err := vectorStore.EnsureCollection(context.Background(), embedder.Dimension()); err != nil {
					fmt.Printf("⚠️  Qdrant collection: %v\n", err)
				}
				recall = memory.NewLongTerm(embedder, vectorStore)
				gate = memory.NewWriter(llmClient)
				fmt.Println("✅ Long-term memory ready")
			}
		}
	}

	// Tools
	registry := tools.NewRegistry()
	web := tools.NewWebTools()
	registry.Register("weather", web.Weather)
	registry.Register("web_search", web.WebSearch)
	registry.Register("screenshot", tools.Screenshot(cfg.DataDir))
	registry.Register("agenda", tools.Agenda(agendaStore))
	registry.Register("memory_dashboard", tools.MemoryDashboard(
		fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)))

	// Router and assistant
	rt := router.New(llmClient, planner.NewAgent(llmClient), prof, projects, registry)
	asst := assistant.New(assistant.Config{},
		rt, prof, memory.NewShortTerm(cfg.Assistant.ShortTermTurns), recall, gate)

	// API server
	server := api.New(api.Config{
		Port:      cfg.Server.Port,
		Token:     cfg.Server.Token,
		Assistant: asst,
		Profile:   prof,
		Agenda:    agendaStore,
		Projects:  projects,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reminder loop pushes due events to the HUD
	var reminder *agenda.Reminder
	if cfg.Assistant.EnableReminders {
		reminder = agenda.NewReminder(agendaStore, func(message string) {
			fmt.Printf("🔔 %s\n", message)
			server.BroadcastState("rappel", 1.0)
		}, cfg.Assistant.ReminderInterval)
		reminder.Start(ctx)
		fmt.Println("⏰ Reminder loop started")
	}

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\n🛑 Shutting down...")
		if reminder != nil {
			reminder.Stop()
		}
		server.Stop(context.Background())
		cancel()
	}()

	// Start server (blocks)
	fmt.Printf("🌐 FRANK écoute sur http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	return server.Start()
}
