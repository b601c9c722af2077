package main

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// NotifyRunComplete posts the run summary to the configured Slack channel.
// Notification is best-effort: a Slack failure never fails the run.
func NotifyRunComplete(cfg Config, summary RunSummary, outputPath string) {
	if cfg.SlackBotToken == "" || cfg.SlackChannelID == "" {
		return
	}

	api := slack.New(cfg.SlackBotToken)
	text := fmt.Sprintf("Risk classification finished. %s\nResults: %s", FormatRunSummary(summary), outputPath)
	_, _, err := api.PostMessage(cfg.SlackChannelID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("slack notify error: %v", err)
		return
	}
	log.Printf("slack notify sent channel=%s", cfg.SlackChannelID)
}
