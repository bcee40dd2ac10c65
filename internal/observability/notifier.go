package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"strings"

	"github.com/agenthub/hubctl/pkg/models"
)

// Notifier pushes alert notifications to an external channel. Only alerts of
// severity critical or high are routed here; the durable alert log receives
// everything.
type Notifier interface {
	Notify(alerts []models.Alert) error
}

// MailTransport delivers a composed message to recipients. Transport
// mechanics (SMTP sessions, authentication) live outside the hub core; the
// hub only produces the structured message.
type MailTransport interface {
	Send(recipients []string, subject, body string) error
}

// mailNotifier adapts a MailTransport into a Notifier by composing one
// message per alert.
type mailNotifier struct {
	transport  MailTransport
	recipients []string
}

// NewMailNotifier creates a Notifier that composes alert mail and hands it
// to the given transport.
func NewMailNotifier(transport MailTransport, recipients []string) Notifier {
	return &mailNotifier{transport: transport, recipients: recipients}
}

func (m *mailNotifier) Notify(alerts []models.Alert) error {
	if len(m.recipients) == 0 {
		return nil
	}
	for _, alert := range alerts {
		subject := fmt.Sprintf("[%s] Agent hub alert", strings.ToUpper(string(alert.Severity)))
		body := composeAlertBody(alert)
		if err := m.transport.Send(m.recipients, subject, body); err != nil {
			return fmt.Errorf("sending alert mail: %w", err)
		}
	}
	return nil
}

func composeAlertBody(alert models.Alert) string {
	subject := alert.Agent
	if subject == "" {
		subject = "System"
	}
	var sb strings.Builder
	sb.WriteString("Alert Details:\n")
	sb.WriteString(fmt.Sprintf("- Type: %s\n", alert.Type))
	sb.WriteString(fmt.Sprintf("- Severity: %s\n", alert.Severity))
	sb.WriteString(fmt.Sprintf("- Message: %s\n", alert.Message))
	sb.WriteString(fmt.Sprintf("- Timestamp: %s\n", alert.Timestamp.Format("2006-01-02 15:04:05 UTC")))
	sb.WriteString(fmt.Sprintf("- Agent: %s\n", subject))
	sb.WriteString("\nCheck the agent communication hub for more details.\n")
	return sb.String()
}

// commandMailTransport delivers mail by piping the body to the local mail
// command, one invocation per message.
type commandMailTransport struct{}

// NewCommandMailTransport creates a MailTransport backed by the system mail
// command.
func NewCommandMailTransport() MailTransport {
	return &commandMailTransport{}
}

func (t *commandMailTransport) Send(recipients []string, subject, body string) error {
	args := append([]string{"-s", subject}, recipients...)
	cmd := exec.Command("mail", args...)
	cmd.Stdin = strings.NewReader(body)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("invoking mail command: %w", err)
	}
	return nil
}

// multiNotifier fans alerts out to several channels. A failing channel does
// not stop delivery to the others; the first error is reported.
type multiNotifier struct {
	channels []Notifier
}

// NewMultiNotifier combines notifiers into one. Nil channels are skipped.
func NewMultiNotifier(channels ...Notifier) Notifier {
	kept := make([]Notifier, 0, len(channels))
	for _, c := range channels {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &multiNotifier{channels: kept}
}

func (m *multiNotifier) Notify(alerts []models.Alert) error {
	var firstErr error
	for _, c := range m.channels {
		if err := c.Notify(alerts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// slackNotifier sends alert notifications to a Slack webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that posts alerts to the given Slack
// webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify sends the given alerts to the configured webhook. It returns nil
// without making a request if the alerts slice is empty.
func (s *slackNotifier) Notify(alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	msg := s.buildMessage(alerts)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *slackNotifier) buildMessage(alerts []models.Alert) slackMessage {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "Agent Hub Alerts"},
		},
	}

	for i, alert := range alerts {
		if i > 0 {
			blocks = append(blocks, slackBlock{Type: "divider"})
		}
		subject := alert.Agent
		if subject == "" {
			subject = "system"
		}
		text := fmt.Sprintf("*[%s]* %s (%s)\n_%s_",
			strings.ToUpper(string(alert.Severity)),
			alert.Message,
			subject,
			alert.Timestamp.Format("2006-01-02 15:04 UTC"),
		)
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		})
	}

	return slackMessage{Blocks: blocks}
}
