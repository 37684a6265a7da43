package mcp

import (
	"context"
	"time"

	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/attendance"
	"github.com/mewoai/mewoai/internal/domain/member"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultCandidateLimit matches the dashboard's candidate list.
const DefaultCandidateLimit = 10

// MemberOutput is the tool view of a member record.
type MemberOutput struct {
	UserID        string     `json:"user_id"`
	DisplayName   string     `json:"display_name"`
	XP            int        `json:"xp"`
	WarnCount     int        `json:"warn_count"`
	TotalAbsences int        `json:"total_absences"`
	OnLeave       bool       `json:"on_leave"`
	WarningExpiry *time.Time `json:"warning_expiry,omitempty"`
}

func toMemberOutput(m member.Member) MemberOutput {
	return MemberOutput{
		UserID:        m.UserID,
		DisplayName:   m.DisplayName,
		XP:            m.XP,
		WarnCount:     m.WarnCount,
		TotalAbsences: m.TotalAbsences,
		OnLeave:       m.OnLeave(),
		WarningExpiry: m.WarningExpiry,
	}
}

type StatsInput struct{}

type StatsOutput struct {
	Total  int           `json:"total"`
	Warned int           `json:"warned"`
	Top    *MemberOutput `json:"top,omitempty"`
}

type CandidatesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of candidates, default 10"`
}

type CandidatesOutput struct {
	Candidates []MemberOutput `json:"candidates"`
}

type AttendanceInput struct{}

type PromoteInput struct {
	UserID string `json:"user_id" jsonschema:"Discord user id of the member to promote"`
}

type PromoteOutput struct {
	UserID   string `json:"user_id"`
	Promoted bool   `json:"promoted"`
}

type ChannelsInput struct{}

type ChannelsOutput struct {
	Channels []announce.Channel `json:"channels"`
}

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Get the number of registered members, how many carry a warning, and the top member by xp",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ StatsInput) (*sdkmcp.CallToolResult, StatsOutput, error) {
		stats, err := svc.Members.Stats(ctx)
		if err != nil {
			return nil, StatsOutput{}, toolError(err)
		}
		out := StatsOutput{Total: stats.Total, Warned: stats.Warned}
		if stats.Top != nil {
			top := toMemberOutput(*stats.Top)
			out.Top = &top
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_candidates",
		Description: "List members with the most xp, best first. These are the promotion candidates.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CandidatesInput) (*sdkmcp.CallToolResult, CandidatesOutput, error) {
		limit := in.Limit
		if limit <= 0 {
			limit = DefaultCandidateLimit
		}
		members, err := svc.Members.Candidates(ctx, limit)
		if err != nil {
			return nil, CandidatesOutput{}, toolError(err)
		}
		out := CandidatesOutput{Candidates: make([]MemberOutput, 0, len(members))}
		for _, m := range members {
			out.Candidates = append(out.Candidates, toMemberOutput(m))
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "process_attendance",
		Description: "Take attendance in the venue channel now. Absent members lose xp and may be warned. Mutates records.",
		Annotations: &sdkmcp.ToolAnnotations{DestructiveHint: ptr(true)},
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ AttendanceInput) (*sdkmcp.CallToolResult, attendance.Report, error) {
		report, err := svc.Attendance.Process(ctx)
		if err != nil {
			return nil, attendance.Report{}, toolError(err)
		}
		return nil, *report, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "promote_member",
		Description: "Grant the expert role to a member and reset their xp to 0",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in PromoteInput) (*sdkmcp.CallToolResult, PromoteOutput, error) {
		if err := svc.Members.Promote(ctx, in.UserID); err != nil {
			return nil, PromoteOutput{}, toolError(err)
		}
		return nil, PromoteOutput{UserID: in.UserID, Promoted: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_channels",
		Description: "List the text and announcement channels an announcement can be posted to",
		Annotations: &sdkmcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ChannelsInput) (*sdkmcp.CallToolResult, ChannelsOutput, error) {
		channels, err := svc.Announce.Channels(ctx)
		if err != nil {
			return nil, ChannelsOutput{}, toolError(err)
		}
		return nil, ChannelsOutput{Channels: channels}, nil
	})
}

func ptr[T any](v T) *T {
	return &v
}
