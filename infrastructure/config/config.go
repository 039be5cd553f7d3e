package config

import (
	"TUI_channel_research/infrastructure/provider"
	"TUI_channel_research/infrastructure/token_manager"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogDir         = "logs"
	DefaultVectorDBPath   = "data/knowledge.db"
	DefaultMaxVideos      = 5
	DefaultModel          = "gemini-1.5-flash-latest"
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 100
	DefaultSearchResults  = 5
)

type YoutubeConfig struct {
	APIKey    string `yaml:"api_key"`
	TokenFile string `yaml:"token_file"`
	Endpoint  string `yaml:"endpoint"`
}

type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

type FirecrawlConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

type KnowledgeConfig struct {
	Path          string `yaml:"path"`
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	SearchResults int    `yaml:"search_results"`
}

// InspectionConfig drives the home inspection crew. An empty PDFPath
// hides the inspection view.
type InspectionConfig struct {
	PDFPath       string `yaml:"pdf_path"`
	SenderName    string `yaml:"sender_name"`
	SenderCompany string `yaml:"sender_company"`
}

type Config struct {
	LogDir     string           `yaml:"log_dir"`
	MaxVideos  int              `yaml:"max_videos"`
	Youtube    YoutubeConfig    `yaml:"youtube"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Inspection InspectionConfig `yaml:"inspection"`
}

func Default() Config {
	return Config{
		LogDir:    DefaultLogDir,
		MaxVideos: DefaultMaxVideos,
		Gemini: GeminiConfig{
			Model:          DefaultModel,
			EmbeddingModel: DefaultEmbeddingModel,
		},
		Knowledge: KnowledgeConfig{
			Path:          DefaultVectorDBPath,
			ChunkSize:     DefaultChunkSize,
			ChunkOverlap:  DefaultChunkOverlap,
			SearchResults: DefaultSearchResults,
		},
	}
}

// Load reads the optional YAML file at path and applies the environment on
// top of it. An empty path or a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Youtube.APIKey = getEnv("YOUTUBE_API_KEY", c.Youtube.APIKey)
	c.Youtube.TokenFile = getEnv("YOUTUBE_TOKEN_FILE", c.Youtube.TokenFile)
	c.Youtube.Endpoint = getEnv("YOUTUBE_ENDPOINT", c.Youtube.Endpoint)
	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)
	c.Gemini.EmbeddingModel = getEnv("GEMINI_EMBEDDING_MODEL", c.Gemini.EmbeddingModel)
	c.Firecrawl.APIKey = getEnv("FIRECRAWL_API_KEY", c.Firecrawl.APIKey)
	c.Firecrawl.Endpoint = getEnv("FIRECRAWL_ENDPOINT", c.Firecrawl.Endpoint)
	c.Knowledge.Path = getEnv("VECTOR_DB_PATH", c.Knowledge.Path)
	c.Inspection.PDFPath = getEnv("INSPECTION_PDF_PATH", c.Inspection.PDFPath)
	c.Inspection.SenderName = getEnv("INSPECTION_SENDER_NAME", c.Inspection.SenderName)
	c.Inspection.SenderCompany = getEnv("INSPECTION_SENDER_COMPANY", c.Inspection.SenderCompany)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)

	maxVideos, err := getEnvInt("MAX_VIDEOS", c.MaxVideos)
	if err != nil {
		return err
	}
	c.MaxVideos = maxVideos

	return nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Youtube.APIKey == "" && c.Youtube.TokenFile == "" {
		problems = append(problems, "YOUTUBE_API_KEY or YOUTUBE_TOKEN_FILE is required")
	}
	if c.Gemini.APIKey == "" {
		problems = append(problems, "GEMINI_API_KEY is required")
	}
	if c.MaxVideos <= 0 {
		problems = append(problems, "max_videos must be positive")
	}
	if c.Knowledge.ChunkSize <= 0 {
		problems = append(problems, "knowledge.chunk_size must be positive")
	}
	if c.Knowledge.ChunkOverlap < 0 || c.Knowledge.ChunkOverlap >= c.Knowledge.ChunkSize {
		problems = append(problems, "knowledge.chunk_overlap must be between 0 and chunk_size")
	}
	if c.Inspection.PDFPath != "" {
		if info, err := os.Stat(c.Inspection.PDFPath); err != nil || info.IsDir() {
			problems = append(problems, fmt.Sprintf("inspection.pdf_path %s is not a readable file", c.Inspection.PDFPath))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// YoutubeCredentials builds the explicit credential set for the provider.
func (c Config) YoutubeCredentials(tokens token_manager.TokenService) (provider.Credentials, error) {
	creds := provider.Credentials{APIKey: c.Youtube.APIKey}

	if c.Youtube.TokenFile != "" {
		token, err := tokens.LoadToken()
		if err != nil {
			return provider.Credentials{}, fmt.Errorf("failed to load youtube token: %w", err)
		}
		creds.Token = token
	}

	if creds.Empty() {
		return provider.Credentials{}, errors.New("no youtube credentials configured")
	}
	return creds, nil
}

func (c Config) InspectionEnabled() bool {
	return c.Inspection.PDFPath != ""
}

// WebSearchEnabled reports whether the fallback agent gets a web search tool.
func (c Config) WebSearchEnabled() bool {
	return c.Firecrawl.APIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return i, nil
}
