package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `mewoai manages a Discord community: registration, xp, attendance, and warnings.

Workflow:
1) Orient with get_stats.
2) Before promoting, call list_candidates and pick a user_id from it.
3) process_attendance takes attendance in the venue channel right now. It
   changes records, so run it once per session and only when asked.
4) list_channels returns the channels announcements can target.`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "mewoai://docs/rules",
		Name:        "rules",
		Title:       "Attendance and xp rules",
		Description: "How attendance, warnings, and xp are computed",
		Content: `# Attendance and xp rules

## Attendance

Each member is classified once per pass, in this order:

- Present: connected to the venue channel. A pending leave note is consumed.
- Excused: not present but filed a leave note with /izin. The note is consumed.
- Absent: everything else. Total absences go up by one and xp drops by 10, never below 0.

## Warnings

Every fifth absence raises the warning tier by one. The member loses the
member role and gets the role for the new tier:

| Tier | Punishment |
|------|------------|
| 1    | 2 days     |
| 2    | 5 days     |
| 3+   | 5 days     |

When the punishment ends the warning roles are removed and the member role
comes back. The tier itself never goes down.

## Xp

- Text message: +5
- Message with an attachment: +15, at most once every 2 minutes. Faster
  attachments are deleted and earn nothing.
- Promotion grants the expert role and resets xp to 0.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
