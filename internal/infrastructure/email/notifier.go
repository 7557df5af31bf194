package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"SeapMonitor/internal/config"
	"SeapMonitor/internal/domain"
	"SeapMonitor/internal/ports"
)

// Notifier delivers the daily report through the Resend HTTP API.
type Notifier struct {
	enabled   bool
	endpoint  string
	apiKey    string
	recipient string
	from      string
	client    *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier builds a notifier from configuration.
func NewNotifier(cfg config.EmailConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		enabled:   cfg.Enabled,
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		recipient: cfg.Recipient,
		from:      cfg.From,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
		now:       time.Now,
	}
}

// SendDailyReport emails the day's matches. Disabled or incomplete
// configuration is a silent no-op reported as "not sent".
func (n *Notifier) SendDailyReport(ctx context.Context, tenders []domain.Tender, totalScanned int) (bool, error) {
	if !n.enabled {
		n.debug("email notifications disabled")
		return false, nil
	}
	if n.apiKey == "" || n.recipient == "" {
		n.warn("email configuration incomplete, skipping notification")
		return false, nil
	}

	subject := fmt.Sprintf("SEAP Alert: %d achiziții noi găsite!", len(tenders))
	if len(tenders) == 0 {
		subject = fmt.Sprintf("SEAP Raport Zilnic: 0 achiziții găsite pentru %s", n.now().Format("2006-01-02"))
	}

	payload, err := json.Marshal(map[string]string{
		"from":    n.from,
		"to":      n.recipient,
		"subject": subject,
		"html":    n.buildHTML(tenders, totalScanned),
	})
	if err != nil {
		return false, fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("resend error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	n.debug("notification email sent", "recipient", n.recipient, "tenders", len(tenders))
	return true, nil
}

func (n *Notifier) buildHTML(tenders []domain.Tender, totalScanned int) string {
	var b strings.Builder

	if len(tenders) == 0 {
		fmt.Fprintf(&b, `<h1>SEAP Monitor - Raport Zilnic</h1>
<p>Scanare completă pentru %s</p>
<p><strong>Total achiziții scanate:</strong> %d</p>
<p><strong>Potriviri găsite:</strong> 0</p>
<p>Nu s-au găsit achiziții noi care să corespundă criteriilor de căutare.</p>`,
			n.now().Format("2006-01-02"), totalScanned)
		return b.String()
	}

	fmt.Fprintf(&b, `<h1>SEAP Monitor - Achiziții Noi Găsite!</h1>
<p>%d achiziții directe corespunzătoare criteriilor</p>
<p>Data raport: %s</p>
<p>Total scanate: %d achiziții</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Denumire</th><th>Autoritate Contractantă</th><th>Valoare</th><th>Cuvânt Cheie</th><th>Link</th></tr>`,
		len(tenders), n.now().Format("2006-01-02 15:04"), totalScanned)

	for _, t := range tenders {
		title := t.Title
		if runes := []rune(title); len(runes) > 80 {
			title = string(runes[:80]) + "..."
		}
		fmt.Fprintf(&b, `
<tr><td>%s</td><td>%s</td><td>%s %s</td><td>%s</td><td><a href="%s">Vezi detalii</a></td></tr>`,
			html.EscapeString(title),
			html.EscapeString(t.Authority),
			html.EscapeString(t.Value),
			html.EscapeString(t.Currency),
			html.EscapeString(t.MatchedKeyword),
			t.Link)
	}
	b.WriteString("\n</table>\n<p>Acest email a fost trimis automat de SEAP Monitor.</p>")

	return b.String()
}

func (n *Notifier) debug(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}

func (n *Notifier) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
