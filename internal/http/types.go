package http

import (
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/definition"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/orchestrator"
)

// ConvertRequest is the request body for POST /api/convert.
type ConvertRequest struct {
	Text string `json:"text"`
	// Context is reserved supplementary input. It is accepted but
	// does not influence the conversion yet.
	Context map[string]interface{} `json:"context"`
}

// ConvertResponse is the response body for POST /api/convert.
type ConvertResponse struct {
	Definition definition.BusinessDefinition `json:"definition"`
	AgentLogs  []orchestrator.AgentLog       `json:"agent_logs"`
	Meta       orchestrator.Meta             `json:"meta"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
