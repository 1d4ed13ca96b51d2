// Package mcp implements the Model Context Protocol (MCP) server that
// exposes the benefit recommendation engine to chat agents.
//
// Three tools are registered:
//   - recommend_benefits: hybrid eligibility + semantic recommendation
//     for a user profile and optional free-text query
//   - get_benefit: full record lookup by identifier
//   - get_status: catalog statistics and server health
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport; the server reads
// requests from stdin and writes responses to stdout, so all logging in
// this process goes to stderr.
//
// # Tool: recommend_benefits
//
//	Request:
//	{
//	  "name": "recommend_benefits",
//	  "arguments": {
//	    "query": "임신 지원금",
//	    "province": "서울특별시",
//	    "district": "강남구",
//	    "life_stages": ["청년"],
//	    "target_groups": ["임산부"],
//	    "top_k": 10
//	  }
//	}
//
//	Response:
//	{
//	  "count": 2,
//	  "results": [
//	    {
//	      "rank": 1,
//	      "id": "WLF00001234",
//	      "name": "임산부 교통비 지원",
//	      "source": "VECTOR",
//	      "similarity": "0.8213",
//	      ...
//	    }
//	  ]
//	}
//
// Each result carries its source: VECTOR for semantic hits, RULES for
// eligibility-ranked fills. similarity is present only on VECTOR rows.
//
// # Error Handling
//
// The server returns standard JSON-RPC error responses:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error
//   - -32001: Eligibility resolver unavailable (distinct from an empty
//     answer, which is a successful response with count 0)
//   - -32002: Detail resolution failed after ranking
//   - -32003: Benefit not found (get_benefit)
//
// # MCP Client Configuration
//
// Configure in an MCP client's settings:
//
//	{
//	  "mcpServers": {
//	    "bokji": {
//	      "command": "/usr/local/bin/bokji",
//	      "args": ["serve"],
//	      "env": {
//	        "OPENAI_API_KEY": "your-api-key"
//	      }
//	    }
//	  }
//	}
package mcp
