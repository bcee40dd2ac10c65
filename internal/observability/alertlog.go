package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/agenthub/hubctl/pkg/models"
)

// AlertLog appends alerts to a durable plain-text log, one line per alert:
// <timestamp> [<SEVERITY>] <type>: <message>
type AlertLog struct {
	path string
	mu   sync.Mutex
}

// NewAlertLog creates an AlertLog writing to the given path.
func NewAlertLog(path string) *AlertLog {
	return &AlertLog{path: path}
}

// Append writes one alert line. All alerts are logged regardless of
// severity.
func (l *AlertLog) Append(alert models.Alert) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening alert log: %w", err)
	}
	defer func() { _ = f.Close() }()

	line := fmt.Sprintf("%s [%s] %s: %s\n",
		alert.Timestamp.Format(time.RFC3339),
		strings.ToUpper(string(alert.Severity)),
		alert.Type,
		alert.Message,
	)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("appending to alert log: %w", err)
	}
	return nil
}
