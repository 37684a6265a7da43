package announce

import "time"

// Embed colors, matching the platform's named palette.
const (
	ColorBlue  = 0x3498DB
	ColorRed   = 0xED4245
	ColorGreen = 0x57F287
	ColorGold  = 0xF1C40F
)

// Mention tokens accepted on an announcement.
const (
	MentionNone     = ""
	MentionEveryone = "@everyone"
	MentionHere     = "@here"
)

// Categories offered by the dashboard form.
var Categories = []string{"Info", "Warning", "Event", "Showcase"}

// Announcement is a dashboard post request.
type Announcement struct {
	ChannelID  string
	Title      string
	Body       string
	Category   string
	Mention    string
	Attachment *Attachment
}

// Attachment is an uploaded file sent along with the announcement.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Channel is a postable chat channel.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Embed is the rich card rendered by the chat platform.
type Embed struct {
	Title       string
	Description string
	Color       int
	Footer      string
	Timestamp   time.Time
}

// Message is the outbound payload handed to a Messenger.
type Message struct {
	Content string
	Embed   Embed
	Files   []Attachment
}

// ColorFor maps a category to its embed color.
func ColorFor(category string) int {
	switch category {
	case "Warning":
		return ColorRed
	case "Event":
		return ColorGreen
	case "Showcase":
		return ColorGold
	default:
		return ColorBlue
	}
}
