// internal/mcp/server_test.go
package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgr01/openhab-js/internal/engine"
	"github.com/mgr01/openhab-js/internal/state"
)

func TestNewServer(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	server, err := NewServer(dbPath)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer server.Close()

	if server == nil {
		t.Error("NewServer() returned nil")
	}
}

func seed(t *testing.T, server *Server) {
	t.Helper()
	rules := []*engine.Rule{
		{
			UID:         "light-uid",
			Name:        "light",
			Description: "item Light changed to ON",
			Tags:        []string{"lighting"},
			Triggers:    []engine.Trigger{engine.ItemStateChangeTrigger("Light", "", "ON")},
			Labels:      []string{"Light =>ON/Δ"},
		},
		{
			UID:         "nightly-uid",
			Name:        "nightly",
			Description: `matches cron "0 0 2 * * ?"`,
			Triggers:    []engine.Trigger{engine.GenericCronTrigger("0 0 2 * * ?")},
			Labels:      []string{"0 0 2 * * ?"},
		},
	}
	for _, r := range rules {
		if err := server.db.SaveRule(state.NewRecord(r, "/rules/"+r.Name+".yaml")); err != nil {
			t.Fatalf("SaveRule() error = %v", err)
		}
	}
}

func TestToolHandlers(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	server, err := NewServer(dbPath)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer server.Close()
	seed(t, server)

	ctx := context.Background()

	t.Run("list_rules", func(t *testing.T) {
		_, output, err := server.handleListRules(ctx, nil, ListRulesInput{})
		if err != nil {
			t.Fatalf("handleListRules() error = %v", err)
		}
		if output.Count != 2 {
			t.Fatalf("handleListRules() count = %d, want 2", output.Count)
		}
		if output.Rules[0].Name != "light" || output.Rules[0].Triggers[0] != "Light =>ON/Δ" {
			t.Errorf("handleListRules() first rule = %+v", output.Rules[0])
		}
	})

	t.Run("list_rules by tag", func(t *testing.T) {
		_, output, err := server.handleListRules(ctx, nil, ListRulesInput{Tag: "lighting"})
		if err != nil {
			t.Fatalf("handleListRules() error = %v", err)
		}
		if output.Count != 1 || output.Rules[0].UID != "light-uid" {
			t.Errorf("handleListRules() = %+v, want only light-uid", output.Rules)
		}
	})

	t.Run("describe_rule by name", func(t *testing.T) {
		_, output, err := server.handleDescribeRule(ctx, nil, DescribeRuleInput{Rule: "nightly"})
		if err != nil {
			t.Fatalf("handleDescribeRule() error = %v", err)
		}
		if output.UID != "nightly-uid" {
			t.Errorf("handleDescribeRule() uid = %q, want nightly-uid", output.UID)
		}
		if len(output.Triggers) != 1 || output.Triggers[0].TypeUID != engine.TypeGenericCron {
			t.Errorf("handleDescribeRule() triggers = %+v", output.Triggers)
		}
		if output.SourcePath != "/rules/nightly.yaml" {
			t.Errorf("handleDescribeRule() source = %q", output.SourcePath)
		}
	})

	t.Run("describe_rule not found", func(t *testing.T) {
		_, _, err := server.handleDescribeRule(ctx, nil, DescribeRuleInput{Rule: "missing"})
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("handleDescribeRule() error = %v, want not found", err)
		}
	})

	t.Run("forget_rule", func(t *testing.T) {
		_, output, err := server.handleForgetRule(ctx, nil, ForgetRuleInput{UID: "light-uid"})
		if err != nil {
			t.Fatalf("handleForgetRule() error = %v", err)
		}
		if output.Message == "" {
			t.Error("handleForgetRule() returned empty message")
		}

		_, list, err := server.handleListRules(ctx, nil, ListRulesInput{})
		if err != nil {
			t.Fatalf("handleListRules() error = %v", err)
		}
		if list.Count != 1 {
			t.Errorf("after forget count = %d, want 1", list.Count)
		}
	})

	t.Run("forget_rule not found", func(t *testing.T) {
		_, _, err := server.handleForgetRule(ctx, nil, ForgetRuleInput{UID: "light-uid"})
		if err == nil {
			t.Error("handleForgetRule() expected error for missing rule")
		}
	})
}
