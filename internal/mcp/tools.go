package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/adamavenir/whorl/internal/bridge"
	"github.com/adamavenir/whorl/internal/core"
	"github.com/adamavenir/whorl/internal/db"
	"github.com/adamavenir/whorl/internal/types"
	"github.com/dustin/go-humanize"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type ToolContext struct {
	DB      *sql.DB
	Service *bridge.Service
}

type contactsArgs struct {
	SurfaceID string `json:"surface_id" jsonschema:"Draft surface ID (see whorl_drafts)"`
	Query     string `json:"query,omitempty" jsonschema:"Text typed after the trigger character; empty lists everything"`
}

type ensureArgs struct {
	SurfaceID string `json:"surface_id" jsonschema:"Draft surface ID"`
	Email     string `json:"email" jsonschema:"Address to place in To"`
	Name      string `json:"name,omitempty" jsonschema:"Display name used for the To entry"`
}

type emptyArgs struct{}

// RegisterTools registers MCP tools for whorl.
func RegisterTools(server *mcp.Server, ctx *ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "whorl_contacts",
		Description: "List mention candidates for a draft: its recipients first, then address book entries, then custom contacts.",
	}, func(reqCtx context.Context, _ *mcp.CallToolRequest, args contactsArgs) (*mcp.CallToolResult, any, error) {
		return handleContacts(reqCtx, *ctx, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "whorl_ensure_recipient",
		Description: "Make an address a To recipient of a draft, moving it out of Cc/Bcc if needed.",
	}, func(reqCtx context.Context, _ *mcp.CallToolRequest, args ensureArgs) (*mcp.CallToolResult, any, error) {
		return handleEnsureRecipient(reqCtx, *ctx, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "whorl_settings",
		Description: "Show the current mention settings.",
	}, func(reqCtx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return handleSettings(reqCtx, *ctx), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "whorl_drafts",
		Description: "List stored drafts with their surface IDs.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return handleDrafts(*ctx), nil, nil
	})
}

func handleContacts(reqCtx context.Context, ctx ToolContext, args contactsArgs) *mcp.CallToolResult {
	surfaceID := strings.TrimSpace(args.SurfaceID)
	if surfaceID == "" {
		return toolError("Error: surface_id is required")
	}
	candidates, err := ctx.Service.Client(surfaceID).GetContacts(reqCtx, args.Query)
	if err != nil {
		return toolError(err.Error())
	}
	if len(candidates) == 0 {
		return toolResult(fmt.Sprintf("No contacts match %q", args.Query), false)
	}
	return toolResult(fmt.Sprintf("Contacts (%d):\n\n%s", len(candidates), formatCandidates(candidates)), false)
}

func handleEnsureRecipient(reqCtx context.Context, ctx ToolContext, args ensureArgs) *mcp.CallToolResult {
	surfaceID := strings.TrimSpace(args.SurfaceID)
	email := strings.TrimSpace(args.Email)
	if surfaceID == "" {
		return toolError("Error: surface_id is required")
	}
	if !core.IsValidEmail(email) {
		return toolError(fmt.Sprintf("Error: invalid email %q", email))
	}

	client := ctx.Service.Client(surfaceID)
	if !client.Settings().AutoAddRecipient {
		return toolResult("Auto-add is off; recipients unchanged", false)
	}
	if err := client.EnsureRecipientInTo(reqCtx, email, strings.TrimSpace(args.Name)); err != nil {
		return toolError(err.Error())
	}

	draft, err := db.GetDraft(ctx.DB, surfaceID)
	if err != nil {
		return toolError(err.Error())
	}
	if draft == nil {
		return toolError(fmt.Sprintf("Error: draft %s not found", surfaceID))
	}
	return toolResult(fmt.Sprintf("To: %s", formatRecipients(draft.Recipients.To)), false)
}

func handleSettings(reqCtx context.Context, ctx ToolContext) *mcp.CallToolResult {
	resp, err := ctx.Service.Send(reqCtx, bridge.Envelope{Kind: bridge.KindGetSettings})
	if err != nil {
		return toolError(err.Error())
	}
	s := resp.Settings
	lines := []string{
		fmt.Sprintf("trigger_character: %s", s.TriggerCharacter),
		fmt.Sprintf("max_results: %d", s.Limit()),
		fmt.Sprintf("auto_add_recipient: %t", s.AutoAddRecipient),
		fmt.Sprintf("search_recipients: %t", s.SearchRecipients),
		fmt.Sprintf("search_address_books: %t", s.SearchAddressBooks),
		fmt.Sprintf("search_custom_contacts: %t", s.SearchCustomContacts),
		fmt.Sprintf("custom_contacts: %d", len(s.CustomContacts)),
		fmt.Sprintf("blocklist: %d", len(s.Blocklist)),
	}
	return toolResult(strings.Join(lines, "\n"), false)
}

func handleDrafts(ctx ToolContext) *mcp.CallToolResult {
	drafts, err := db.GetDrafts(ctx.DB)
	if err != nil {
		return toolError(err.Error())
	}
	if len(drafts) == 0 {
		return toolResult("No drafts", false)
	}
	lines := make([]string, 0, len(drafts))
	for _, d := range drafts {
		subject := d.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s · updated %s", d.SurfaceID, subject, humanize.Time(time.Unix(d.UpdatedAt, 0))))
	}
	return toolResult(strings.Join(lines, "\n"), false)
}

func formatCandidates(candidates []types.Candidate) string {
	lines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		line := core.FormatRecipient(c.Name, c.Email)
		if c.IsRecipient {
			line += " (recipient)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatRecipients(list []types.Recipient) string {
	if len(list) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(list))
	for _, r := range list {
		if r.IsStructured() {
			parts = append(parts, core.FormatRecipient(r.Name, r.Email))
			continue
		}
		parts = append(parts, r.Raw)
	}
	return strings.Join(parts, ", ")
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func toolError(text string) *mcp.CallToolResult {
	return toolResult(text, true)
}
