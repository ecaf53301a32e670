package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sponsorboard/jobsync/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts sync pass summaries to a Slack channel via Incoming
// Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each sync report to Slack.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends one Block Kit message summarizing the pass. A 429 from Slack
// is retried once after the advertised Retry-After.
func (s *SlackNotifier) Notify(report model.SyncReport) error {
	body, err := json.Marshal(buildPayload(report))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack report sent", "status", report.Status, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack report sent", "status", report.Status)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func statusEmoji(status model.SyncStatus) string {
	switch status {
	case model.StatusCompleted:
		return "✅"
	case model.StatusCompletedWithErrors:
		return "⚠️"
	default:
		return "⏭️"
	}
}

func buildPayload(report model.SyncReport) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{
				Type: "plain_text",
				Text: statusEmoji(report.Status) + " Job sync " + string(report.Status),
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Unique postings:*\n%d", report.Unique)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Inserted / Updated:*\n%d / %d", report.Inserted, report.Updated)},
			},
		},
	}

	for _, sr := range report.Sources {
		line := fmt.Sprintf("*%s:* %d postings", sr.Source, sr.Count)
		if sr.Skipped {
			line = fmt.Sprintf("*%s:* skipped (no credential)", sr.Source)
		} else if sr.Err != nil {
			line += fmt.Sprintf(" (error: %v)", sr.Err)
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: line},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}

// SendTestMessage posts a fabricated report to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	return n.Notify(model.SyncReport{
		Status:     model.StatusCompleted,
		StartedAt:  now,
		FinishedAt: now,
		Sources: []model.SourceReport{
			{Source: "test", Count: 1},
		},
		Unique:   1,
		Inserted: 1,
	})
}
