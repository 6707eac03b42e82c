// Package main is the vektor CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/vektor/internal/config"
	"github.com/hyperjump/vektor/internal/embedding"
	"github.com/hyperjump/vektor/internal/metrics"
	"github.com/hyperjump/vektor/internal/models"
	"github.com/hyperjump/vektor/internal/server"
	"github.com/hyperjump/vektor/internal/service"
	"github.com/hyperjump/vektor/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/vektor/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "embed":
		runEmbed()
	case "health":
		runHealth()
	case "version", "--version", "-v":
		fmt.Printf("vektor version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (per-request logs, batch accounting)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("model_id", cfg.Model.ID),
		zap.Bool("debug", debugMode),
	)

	svc := service.New(logger, cfg.Runtime.MaxBatchSize)
	srv := server.NewServer(svc, &cfg.Server, logger, metrics.New())

	// The listener comes up before the model finishes loading; embed routes
	// answer 503 and /health reports the loading state until Attach.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	embedder, err := loadEmbedder(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load model", zap.Error(err))
	}
	defer embedder.Close()
	svc.Attach(embedder)
	logger.Info("model loaded",
		zap.String("model", embedder.ModelName()),
		zap.Int("dims", embedder.Dimensions()),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// loadEmbedder resolves the model artifacts (local cache first, hub download
// fallback with the configured credential) and constructs the ONNX embedder.
// Any failure here is fatal to the caller: the process never serves embed
// traffic with a half-loaded model.
func loadEmbedder(cfg *config.Config, logger *zap.Logger) (embedding.Embedder, error) {
	modelPath := cfg.Model.ModelPath
	vocabPath := cfg.Model.VocabPath
	if modelPath == "" {
		fetcher := embedding.NewFetcher(cfg.Model.AuthToken())
		files, err := fetcher.Resolve(cfg.Model.CacheDir, cfg.Model.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve model %s: %w", cfg.Model.ID, err)
		}
		modelPath = files.ModelPath
		if vocabPath == "" {
			vocabPath = files.VocabPath
		}
	}

	var tokenizer embedding.Tokenizer
	if wp, err := embedding.NewWordPieceTokenizer(vocabPath); err != nil {
		logger.Warn("vocab unavailable, using fallback tokenizer",
			zap.String("vocab_path", vocabPath), zap.Error(err))
		tokenizer = &embedding.SimpleTokenizer{}
	} else {
		logger.Info("vocab loaded",
			zap.String("vocab_path", vocabPath), zap.Int("size", wp.VocabSize()))
		tokenizer = wp
	}

	emb, err := embedding.NewONNXEmbedder(
		modelPath,
		tokenizer,
		cfg.Model.ID,
		cfg.Model.Dimensions,
		cfg.Model.MaxTokens,
		cfg.Runtime.CacheSize,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("onnx session ready", zap.String("device", emb.Device()))
	return emb, nil
}

// buildEmbedText joins all positional args with spaces so multi-word text
// works the same with or without shell quoting.
func buildEmbedText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// formatVectorPreview renders the first few components of a vector for
// human-readable output.
func formatVectorPreview(vec []float32, n int) string {
	if n > len(vec) {
		n = len(vec)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("%.4f", vec[i])
	}
	suffix := ""
	if len(vec) > n {
		suffix = ", ..."
	}
	return "[" + strings.Join(parts, ", ") + suffix + "]"
}

func runEmbed() {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	batch := fs.Bool("batch", false, "treat each argument as a separate text")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: vektor embed [flags] <text...>")
		os.Exit(1)
	}

	if *batch {
		resp, err := embedBatchViaHTTP(*serverURL, fs.Args())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Embed failed: %v\n", err)
			os.Exit(1)
		}
		switch *outputFormat {
		case "json":
			writeJSON(resp)
		default:
			fmt.Printf("model: %s  dims: %d  took_ms: %.2f\n", resp.Model, resp.Dims, resp.TookMs)
			for i, vec := range resp.Embeddings {
				fmt.Printf("%d: %s\n", i, formatVectorPreview(vec, 8))
			}
		}
		return
	}

	text := buildEmbedText(fs.Args())
	resp, err := embedViaHTTP(*serverURL, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embed failed: %v\n", err)
		os.Exit(1)
	}
	switch *outputFormat {
	case "json":
		writeJSON(resp)
	default:
		fmt.Printf("model: %s  dims: %d  took_ms: %.2f\n", resp.Model, resp.Dims, resp.TookMs)
		fmt.Println(formatVectorPreview(resp.Embedding, 8))
	}
}

func runHealth() {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	model := "(not loaded)"
	if health.Model != nil {
		model = *health.Model
	}
	fmt.Printf("status: %s\nmodel:  %s\ndims:   %d\n", health.Status, model, health.Dims)
}

func embedViaHTTP(serverURL, text string) (*models.EmbedResponse, error) {
	body, err := json.Marshal(models.EmbedRequest{Text: text})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/embed", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.EmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func embedBatchViaHTTP(serverURL string, texts []string) (*models.BatchEmbedResponse, error) {
	body, err := json.Marshal(models.BatchEmbedRequest{Texts: texts})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/embed_batch", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.BatchEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func writeJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vektor - text embedding service

Usage:
  vektor server [flags]           Start the HTTP server
  vektor embed [flags] <text...>  Embed text via a running server
  vektor health [flags]           Check server readiness
  vektor version                  Show version
  vektor help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/vektor/config.yaml)
  --debug            Enable debug logging (per-request logs, batch accounting)

Embed Flags:
  --server string    Server URL (default: http://localhost:8080)
  --batch            Treat each argument as a separate text (one request, one vector each)
  --output string    Output format: text or json (default: text)

Health Flags:
  --server string    Server URL (default: http://localhost:8080)

Examples:
  vektor server
  vektor embed "machine learning"
  vektor embed --batch "first text" "second text"
  vektor embed --output json "query"
  vektor health`)
}
