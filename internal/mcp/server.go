// internal/mcp/server.go
package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mgr01/openhab-js/internal/engine"
	"github.com/mgr01/openhab-js/internal/state"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with rule registry tools
type Server struct {
	db     *state.DB
	server *mcp.Server
}

// ListRulesInput is the input schema for the list_rules tool
type ListRulesInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"Optional tag filter"`
}

// ListRulesOutput is the output schema for the list_rules tool
type ListRulesOutput struct {
	Rules []RuleSummary `json:"rules"`
	Count int           `json:"count"`
}

// RuleSummary is a single rule in list results
type RuleSummary struct {
	UID      string   `json:"uid"`
	Name     string   `json:"name"`
	Tags     []string `json:"tags,omitempty"`
	Triggers []string `json:"triggers"`
}

// DescribeRuleInput is the input schema for the describe_rule tool
type DescribeRuleInput struct {
	Rule string `json:"rule" jsonschema:"Rule UID or name"`
}

// DescribeRuleOutput is the output schema for the describe_rule tool
type DescribeRuleOutput struct {
	UID         string           `json:"uid"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Tags        []string         `json:"tags,omitempty"`
	Triggers    []engine.Trigger `json:"triggers"`
	Hold        *engine.Hold     `json:"hold,omitempty"`
	SourcePath  string           `json:"source_path,omitempty"`
	CompiledAt  string           `json:"compiled_at"`
}

// ForgetRuleInput is the input schema for the forget_rule tool
type ForgetRuleInput struct {
	UID string `json:"uid" jsonschema:"Rule UID to remove from the registry"`
}

// ForgetRuleOutput is the output schema for the forget_rule tool
type ForgetRuleOutput struct {
	Message string `json:"message"`
}

// NewServer creates a new MCP server over the rule registry at dbPath
func NewServer(dbPath string) (*Server, error) {
	db, err := state.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening rule registry: %w", err)
	}

	s := &Server{db: db}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rulectl-registry",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List compiled rules with their compact trigger descriptions. Use to find which rules react to an item, thing, channel or schedule.",
	}, s.handleListRules)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_rule",
		Description: "Show a compiled rule by UID or name, including its engine triggers and hold condition.",
	}, s.handleDescribeRule)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "forget_rule",
		Description: "Remove a rule from the registry. The rule is stored again on the next compile of its source file.",
	}, s.handleForgetRule)

	s.server = server
	return s, nil
}

func (s *Server) handleListRules(ctx context.Context, req *mcp.CallToolRequest, input ListRulesInput) (*mcp.CallToolResult, ListRulesOutput, error) {
	records, err := s.db.ListRules()
	if err != nil {
		return nil, ListRulesOutput{}, fmt.Errorf("failed to list rules: %w", err)
	}

	results := make([]RuleSummary, 0, len(records))
	for _, r := range records {
		if input.Tag != "" && !slices.Contains(r.Tags, input.Tag) {
			continue
		}
		results = append(results, RuleSummary{
			UID:      r.UID,
			Name:     r.Name,
			Tags:     r.Tags,
			Triggers: r.Labels,
		})
	}

	return nil, ListRulesOutput{
		Rules: results,
		Count: len(results),
	}, nil
}

func (s *Server) handleDescribeRule(ctx context.Context, req *mcp.CallToolRequest, input DescribeRuleInput) (*mcp.CallToolResult, DescribeRuleOutput, error) {
	r, err := s.db.GetRule(input.Rule)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, DescribeRuleOutput{}, fmt.Errorf("rule %q not found", input.Rule)
		}
		return nil, DescribeRuleOutput{}, fmt.Errorf("failed to load rule: %w", err)
	}

	return nil, DescribeRuleOutput{
		UID:         r.UID,
		Name:        r.Name,
		Description: r.Description,
		Tags:        r.Tags,
		Triggers:    r.Triggers,
		Hold:        r.Hold,
		SourcePath:  r.SourcePath,
		CompiledAt:  r.CompiledAt.UTC().Format("2006-01-02T15:04:05Z"),
	}, nil
}

func (s *Server) handleForgetRule(ctx context.Context, req *mcp.CallToolRequest, input ForgetRuleInput) (*mcp.CallToolResult, ForgetRuleOutput, error) {
	err := s.db.DeleteRule(input.UID)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, ForgetRuleOutput{}, fmt.Errorf("rule %q not found", input.UID)
		}
		return nil, ForgetRuleOutput{}, fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil, ForgetRuleOutput{
		Message: fmt.Sprintf("Deleted rule %s", input.UID),
	}, nil
}

// Run starts the MCP server on stdio
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}
