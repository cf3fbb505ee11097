package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bot-mercado/internal/money"
	"bot-mercado/internal/monitor"
)

// Notifier envia as notificações de alerta pelo Telegram. O usuário do
// alerta é o ID do chat.
type Notifier struct {
	api Sender
	log *zap.Logger
}

// NewNotifier cria o notificador
func NewNotifier(api Sender, log *zap.Logger) *Notifier {
	return &Notifier{api: api, log: log}
}

// Notify implementa monitor.Notifier
func (n *Notifier) Notify(_ context.Context, notif monitor.Notification) error {
	chatID, err := strconv.ParseInt(notif.Alert.UserID, 10, 64)
	if err != nil {
		return fmt.Errorf("alerta %s: usuário %q não é um chat do Telegram: %w", notif.Alert.ID, notif.Alert.UserID, err)
	}

	msg := tgbotapi.NewMessage(chatID, alertMessage(notif))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("erro ao enviar alerta %s: %w", notif.Alert.ID, err)
	}
	n.log.Info("Notificação enviada", zap.String("alert", notif.Alert.ID), zap.Int64("chat", chatID))
	return nil
}

func alertMessage(n monitor.Notification) string {
	var b strings.Builder
	b.WriteString("🎉 <b>PREÇO NO ALVO!</b>\n\n")
	fmt.Fprintf(&b, "Produto: %s\n", escapeHTML(n.Product.DisplayName))
	fmt.Fprintf(&b, "Preço atual: <b>%s</b>\n", money.FormatBRL(n.Offer.Price))
	fmt.Fprintf(&b, "Preço alvo: %s\n", money.FormatBRL(n.Alert.TargetPrice))
	if n.Supermarket != nil {
		fmt.Fprintf(&b, "Onde: %s\n", escapeHTML(n.Supermarket.Name))
	}
	if n.Offer.IsPromotion {
		b.WriteString("🏷 Em promoção\n")
	}
	b.WriteString("\nVocê não receberá outro aviso até o preço subir acima do alvo. Use /rearmar para reativar agora.")
	return b.String()
}
