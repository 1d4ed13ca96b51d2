package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ddoksuni/bokji/internal/recommend"
	"github.com/ddoksuni/bokji/internal/store"
	"github.com/ddoksuni/bokji/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams       = -32602 // Invalid method parameters
	ErrorCodeInternalError       = -32603 // Internal JSON-RPC error
	ErrorCodeResolverUnavailable = -32001 // Eligibility resolution failed; result is not a real empty answer
	ErrorCodeDetailResolution    = -32002 // Ranked identifiers could not be expanded into full records
	ErrorCodeBenefitNotFound     = -32003 // No benefit record with the given identifier
)

// handleRecommendBenefits handles the recommend_benefits tool invocation
func (s *Server) handleRecommendBenefits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	profile := types.UserProfile{
		Province:     getStringDefault(args, "province", ""),
		District:     getStringDefault(args, "district", ""),
		LifeStages:   getStringSlice(args, "life_stages"),
		TargetGroups: getStringSlice(args, "target_groups"),
	}

	query := getStringDefault(args, "query", "")

	topK := getIntDefault(args, "top_k", s.engine.Config().TopK)
	if topK < 1 || topK > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	recommendations, err := s.engine.Recommend(ctx, profile, query, topK)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrResolverUnavailable):
			return nil, newMCPError(ErrorCodeResolverUnavailable, "eligibility resolution unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		case errors.Is(err, recommend.ErrDetailResolution):
			return nil, newMCPError(ErrorCodeDetailResolution, "benefit detail resolution failed", map[string]interface{}{
				"error": err.Error(),
			})
		default:
			return nil, newMCPError(ErrorCodeInternalError, "recommendation failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	results := make([]map[string]interface{}, 0, len(recommendations))
	for i, rec := range recommendations {
		entry := map[string]interface{}{
			"rank":           i + 1,
			"id":             rec.Benefit.ID,
			"name":           rec.Benefit.Name,
			"summary":        rec.Benefit.Summary,
			"province":       rec.Benefit.Province,
			"district":       rec.Benefit.District,
			"provision_type": rec.Benefit.ProvisionType,
			"source":         string(rec.Source),
		}
		if rec.Source == types.SourceVector {
			entry["similarity"] = fmt.Sprintf("%.4f", rec.Similarity)
		}
		if rec.Benefit.SourceURL != "" {
			entry["source_url"] = rec.Benefit.SourceURL
		}
		results = append(results, entry)
	}

	response := map[string]interface{}{
		"count":   len(results),
		"results": results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetBenefit handles the get_benefit tool invocation
func (s *Server) handleGetBenefit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}

	benefit, err := s.store.GetBenefit(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newMCPError(ErrorCodeBenefitNotFound, "benefit not found", map[string]interface{}{
			"id": id,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to fetch benefit", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"id":             benefit.ID,
		"name":           benefit.Name,
		"summary":        benefit.Summary,
		"description":    benefit.Description,
		"province":       benefit.Province,
		"district":       benefit.District,
		"provision_type": benefit.ProvisionType,
		"life_stages":    benefit.LifeStages,
		"target_groups":  benefit.TargetGroups,
		"source_url":     benefit.SourceURL,
		"active":         benefit.Active,
		"updated_at":     benefit.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.store.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	cfg := s.engine.Config()

	response := map[string]interface{}{
		"catalog": map[string]interface{}{
			"active_benefits": status.ActiveBenefits,
			"total_benefits":  status.TotalBenefits,
			"embeddings":      status.Embeddings,
		},
		"engine": map[string]interface{}{
			"top_k":           cfg.TopK,
			"min_score":       cfg.MinScore,
			"candidate_limit": cfg.CandidateLimit,
			"prefilter_tags":  cfg.PrefilterTags,
		},
		"embedder": map[string]interface{}{
			"provider":  s.embedder.Provider(),
			"dimension": s.embedder.Dimension(),
		},
		"health": map[string]interface{}{
			"database_accessible":  status.Health.DatabaseAccessible,
			"embeddings_available": status.Health.EmbeddingsAvailable,
			"vector_extension":     store.VectorExtensionAvailable,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter, ignoring non-string
// elements a loose client may send
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
