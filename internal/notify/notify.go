package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/restokit/restos/internal/domain"
)

// Settings supplies notification configuration from system settings.
type Settings interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// Notifier delivers low stock alerts over webhook and SMTP. Both channels
// are optional; an unset destination is silently skipped.
type Notifier struct {
	settings Settings
}

func NewNotifier(settings Settings) *Notifier {
	return &Notifier{settings: settings}
}

// LowStockAlert describes one restaurant's items at or below reorder level.
type LowStockAlert struct {
	RestaurantId   int64                  `json:"restaurant_id,string"`
	RestaurantName string                 `json:"restaurant_name"`
	Items          []domain.InventoryItem `json:"items"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// SendLowStockAlert pushes the alert to every configured channel. Channel
// failures are logged, not returned; one broken webhook must not stop the
// low stock scan.
func (n *Notifier) SendLowStockAlert(alert *LowStockAlert) {
	if len(alert.Items) == 0 {
		return
	}
	n.sendWebhook(alert)
	n.sendMail(alert)
}

func (n *Notifier) sendWebhook(alert *LowStockAlert) {
	url := n.settings.GetSettingsStringValue("notify", "WebhookUrl")
	if url == "" {
		return
	}
	var code int
	err := gout.POST(url).
		SetJSON(alert).
		SetTimeout(10 * time.Second).
		Code(&code).
		Do()
	if err != nil {
		zap.L().Error("low stock webhook failed", zap.String("url", url), zap.Error(err))
		return
	}
	if code >= 300 {
		zap.L().Warn("low stock webhook rejected", zap.String("url", url), zap.Int("status", code))
		return
	}
	zap.L().Info("low stock webhook delivered",
		zap.Int64("restaurant_id", alert.RestaurantId),
		zap.Int("items", len(alert.Items)))
}

func (n *Notifier) sendMail(alert *LowStockAlert) {
	host := n.settings.GetSettingsStringValue("notify", "SmtpHost")
	to := n.settings.GetSettingsStringValue("notify", "AlertEmail")
	if host == "" || to == "" {
		return
	}
	port := int(n.settings.GetSettingsInt64Value("notify", "SmtpPort"))
	if port == 0 {
		port = 587
	}
	username := n.settings.GetSettingsStringValue("notify", "SmtpUsername")
	password := n.settings.GetSettingsStringValue("notify", "SmtpPassword")
	from := n.settings.GetSettingsStringValue("notify", "SmtpFrom")
	if from == "" {
		from = username
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Low stock report for %s (%s)\n\n",
		alert.RestaurantName, alert.GeneratedAt.Format("2006-01-02 15:04"))
	for _, item := range alert.Items {
		fmt.Fprintf(&body, "- %s: %s %s in stock, reorder level %s %s\n",
			item.Name, item.QuantityInStock.String(), item.Unit,
			item.ReorderLevel.String(), item.Unit)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", from)
	message.SetHeader("To", strings.Split(to, ",")...)
	message.SetHeader("Subject", fmt.Sprintf("Low stock alert: %s", alert.RestaurantName))
	message.SetBody("text/plain", body.String())

	dialer := gomail.NewDialer(host, port, username, password)
	if err := dialer.DialAndSend(message); err != nil {
		zap.L().Error("low stock mail failed", zap.String("to", to), zap.Error(err))
		return
	}
	zap.L().Info("low stock mail delivered",
		zap.Int64("restaurant_id", alert.RestaurantId),
		zap.String("to", to))
}
