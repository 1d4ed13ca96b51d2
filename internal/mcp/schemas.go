package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// recommendBenefitsTool returns the tool definition for recommend_benefits
func recommendBenefitsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "recommend_benefits",
		Description: "Recommend welfare benefits for a user profile, optionally ranked by semantic similarity to a free-text query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text description of what the user is looking for (e.g. '임신 지원금'). Empty means rule-based ranking only",
				},
				"province": map[string]interface{}{
					"type":        "string",
					"description": "User's province or metropolitan city (e.g. '서울특별시'). Empty means no regional constraint: benefits of every region match",
				},
				"district": map[string]interface{}{
					"type":        "string",
					"description": "User's district within the province (e.g. '강남구')",
				},
				"life_stages": map[string]interface{}{
					"type":        "array",
					"description": "Life-stage buckets the user belongs to",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"영유아", "아동", "청소년", "청년", "중장년", "노년"},
					},
				},
				"target_groups": map[string]interface{}{
					"type":        "array",
					"description": "Target-group attributes (e.g. '임산부', '장애인', '한부모')",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of recommendations to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// getBenefitTool returns the tool definition for get_benefit
func getBenefitTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_benefit",
		Description: "Fetch the full record of a single welfare benefit by identifier",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Benefit identifier as returned by recommend_benefits",
				},
			},
			Required: []string{"id"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query benefit catalog statistics and server health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
