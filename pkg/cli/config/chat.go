package config

import (
	"log/slog"

	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/service/chat"
	"github.com/urfave/cli/v3"
)

// Chat holds CLI flags for the chat platform integration
type Chat struct {
	botToken string
}

func (x *Chat) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "chat-bot-token",
			Usage:       "Chat platform bot token (for listing workspace members)",
			Category:    "Chat",
			Sources:     cli.EnvVars("ARGUS_CHAT_BOT_TOKEN"),
			Destination: &x.botToken,
		},
	}
}

func (x Chat) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
	)
}

// IsConfigured reports whether the chat directory can be served
func (x *Chat) IsConfigured() bool {
	return x.botToken != ""
}

// Configure builds the chat service from the flags
func (x *Chat) Configure() (interfaces.ChatService, error) {
	return chat.New(x.botToken)
}
