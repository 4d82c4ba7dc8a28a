package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screening-datagen/internal/background"
	"screening-datagen/internal/core"
	"screening-datagen/internal/store"
	"screening-datagen/pkg"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate screening sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		f := cmd.Flags()
		n, _ := f.GetInt("num-sessions")
		if n <= 0 {
			return fmt.Errorf("num-sessions must be positive, got %d", n)
		}
		seed, _ := f.GetInt64("seed")
		if !f.Changed("seed") {
			seed = time.Now().UnixNano()
		}
		personaID, _ := f.GetString("persona")
		skipBackground, _ := f.GetBool("skip-background")
		if f.Changed("sink") {
			cfg.Sinks, _ = f.GetStringSlice("sink")
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		client, err := cfg.NewLLMClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to create llm client: %w", err)
		}
		sinks, err := openSinks(ctx, cfg.Sinks)
		if err != nil {
			return err
		}
		defer sinks.Close()

		engine := core.NewEngine(client, cfg.EngineParams(), log)
		var gen *background.Generator
		if !skipBackground {
			gen = background.NewGenerator(client, cfg.BackgroundParams(), log)
		}

		var sink core.Sink
		if len(sinks) > 0 {
			sink = sinks
		}

		log.WithField("seed", seed).Infof("generating %d sessions with %s/%s", n, cfg.Provider, cfg.Model)
		res, err := core.NewBatch(engine, gen, sink, log).Run(ctx, core.BatchConfig{
			Sessions:       n,
			Seed:           seed,
			Overrides:      overridesFromFlags(cmd),
			PersonaID:      personaID,
			SkipBackground: skipBackground,
		})
		if res != nil {
			printSummary(res, seed)
		}
		if err != nil {
			return err
		}
		if len(res.Records) == 0 {
			return fmt.Errorf("all %d sessions failed", n)
		}
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.Int("num-sessions", 10, "Number of sessions to generate")
	f.Int64("seed", 0, "Random seed (defaults to the current time)")
	f.String("persona", "", "Force the doctor persona id")
	f.Bool("skip-background", false, "Do not generate life backgrounds")
	f.StringSlice("sink", nil, "Record sinks: file, postgres, sqlite, mongo, redis, kafka (repeatable)")
	addOverrideFlags(generateCmd)
}

// openSinks opens every named sink. Sinks opened before a failure are
// closed again.
func openSinks(ctx context.Context, names []string) (store.Multi, error) {
	var sinks store.Multi
	for _, name := range names {
		s, err := openSink(ctx, name)
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("failed to open %s sink: %w", name, err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func openSink(ctx context.Context, name string) (store.Sink, error) {
	switch name {
	case "file":
		return store.NewFileSink(cfg.OutputDir), nil
	case "postgres", "sqlite":
		repo, notifier, err := openRepository(ctx, name)
		if err != nil {
			return nil, err
		}
		return store.NewSQLSink(repo, notifier, log), nil
	case "mongo":
		return store.NewMongoSink(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "redis":
		return store.NewRedisSink(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
	case "kafka":
		return store.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}

func printSummary(res *core.BatchResult, seed int64) {
	total := pkg.TokenUsage{}
	for _, rec := range res.Records {
		for _, u := range rec.TokenUsage {
			total = total.Add(u)
		}
	}
	fmt.Printf("Generated %d sessions (%d failed), seed %d\n", len(res.Records), res.Failed, seed)
	fmt.Printf("Tokens: %d input, %d output, %d total\n", total.InputTokens, total.OutputTokens, total.TotalTokens)
	for _, loc := range res.Locations {
		fmt.Printf("  %s\n", loc)
	}
	for _, err := range res.Errors {
		fmt.Printf("  error: %v\n", err)
	}
}
