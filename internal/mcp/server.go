package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ddoksuni/bokji/internal/embedder"
	"github.com/ddoksuni/bokji/internal/ingest"
	"github.com/ddoksuni/bokji/internal/recommend"
	"github.com/ddoksuni/bokji/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "bokji-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the benefit database
	DefaultDBPath = "~/.bokji"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	store    store.Store
	embedder embedder.Embedder
	engine   *recommend.Engine
	pipeline *ingest.Pipeline
}

// NewServer creates a new MCP server instance backed by the benefit
// database at dbPath. The embedder and engine configuration come from
// the environment.
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".bokji")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "bokji.db")

	st, err := store.NewSQLiteStore(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	cfg, err := recommend.ConfigFromEnv()
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to load engine configuration: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		store:    st,
		embedder: emb,
		engine:   recommend.New(st, emb, cfg),
		pipeline: ingest.New(st, emb),
	}

	if err := s.registerTools(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(recommendBenefitsTool(), s.handleRecommendBenefits)
	s.mcp.AddTool(getBenefitTool(), s.handleGetBenefit)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	return nil
}
