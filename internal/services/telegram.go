package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/models"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
	apiBase     string
	client      *http.Client
	logger      *zap.Logger
}

// NewTelegramService creates a new TelegramService. With an empty token or
// chat id every notification is skipped.
func NewTelegramService(botToken, adminChatID string, logger *zap.Logger) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		apiBase:     telegramAPIBase,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		s.logger.Debug("telegram bot token not configured")
		return nil
	}

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// FormatPrice renders an amount with thousand separators and two decimals.
func FormatPrice(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var result strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}
	return sign + result.String() + "." + frac
}

// NotifyNewOrder sends notification about new order to admin chat.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, order models.Order, owner models.OwnerSummary) error {
	var itemsList strings.Builder
	for i, item := range order.Items {
		fmt.Fprintf(&itemsList, "%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.Name),
			item.Quantity,
			FormatPrice(item.UnitPrice),
			FormatPrice(item.LineTotal().InexactFloat64()),
		)
	}

	addr := order.Address
	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>Order:</b> %s
<b>Customer:</b> %s (%s)
<b>Items:</b>
%s
<b>Total:</b> %s
<b>Payment:</b> %s
<b>Ship to:</b> %s
<b>Status:</b> %s`,
		order.ID,
		html.EscapeString(owner.Name),
		html.EscapeString(owner.Email),
		itemsList.String(),
		FormatPrice(order.Total),
		strings.ToUpper(string(order.PaymentMethod)),
		html.EscapeString(joinNonEmpty(addr.House, addr.Street, addr.City, addr.State, addr.Pincode)),
		order.Status,
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}

// NotifyContact mirrors a contact-form message to the admin chat.
func (s *TelegramService) NotifyContact(ctx context.Context, msg models.ContactMessage) error {
	phone := msg.Phone
	if phone == "" {
		phone = "Not provided"
	}

	message := fmt.Sprintf(`<b>📩 CONTACT MESSAGE</b>
<b>Name:</b> %s
<b>Email:</b> %s
<b>Phone:</b> %s
%s`,
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		html.EscapeString(phone),
		html.EscapeString(msg.Message),
	)

	return s.SendToAdmin(ctx, message)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "-"
	}
	return strings.Join(kept, ", ")
}
