package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bot-mercado/internal/metrics"
)

// Init inicializa o bot do Telegram
func Init(token string, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado. Verifique o arquivo .env")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("token do Telegram inválido ou expirado. Para obter um token, fale com @BotFather no Telegram")
		}
		return nil, fmt.Errorf("erro ao conectar com Telegram: %w", err)
	}

	api.Debug = false
	log.Info("Bot autorizado", zap.String("username", api.Self.UserName))
	return api, nil
}

// Sender envia mensagens ao Telegram. *tgbotapi.BotAPI implementa.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Options configura o bot
type Options struct {
	DefaultCityID string
	// AuthorizedChatID restringe o uso a um chat quando diferente de zero
	AuthorizedChatID int64
	Metrics          *metrics.Metrics
}

// Bot atende os comandos dos usuários
type Bot struct {
	api  Sender
	svc  Service
	log  *zap.Logger
	opts Options

	mu       sync.Mutex
	sessions map[int64]*session
}

// session guarda o estado de uma conversa. Some com o processo.
type session struct {
	cityID   string
	products []string
	alerts   []string
}

// New cria o bot
func New(api Sender, svc Service, log *zap.Logger, opts Options) *Bot {
	return &Bot{
		api:      api,
		svc:      svc,
		log:      log,
		opts:     opts,
		sessions: make(map[int64]*session),
	}
}

// Run processa as atualizações até o contexto ser cancelado ou o canal fechar
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.HandleMessage(ctx, update.Message.Chat.ID, update.Message.Text)
		}
	}
}

// HandleMessage responde a uma mensagem de texto
func (b *Bot) HandleMessage(ctx context.Context, chatID int64, text string) {
	b.send(chatID, b.Reply(ctx, chatID, text))
}

// send envia em HTML e, se o Telegram recusar a formatação, em texto puro
func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("Erro ao enviar mensagem com HTML", zap.Int64("chat", chatID), zap.Error(err))
		msg.ParseMode = ""
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("Erro ao enviar mensagem sem formatação", zap.Int64("chat", chatID), zap.Error(err))
		}
	}
}

func (b *Bot) session(chatID int64) *session {
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{cityID: b.opts.DefaultCityID}
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) city(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session(chatID).cityID
}

func (b *Bot) setCity(chatID int64, cityID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session(chatID).cityID = cityID
}

func (b *Bot) rememberProducts(chatID int64, ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session(chatID).products = ids
}

func (b *Bot) rememberAlerts(chatID int64, ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session(chatID).alerts = ids
}

// productRef aceita o número de um item da última busca ou um ID de produto
func (b *Bot) productRef(chatID int64, arg string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return pick(b.session(chatID).products, arg)
}

// alertRef aceita o número de um item da última listagem ou um ID de alerta
func (b *Bot) alertRef(chatID int64, arg string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return pick(b.session(chatID).alerts, arg)
}

func pick(list []string, arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(list) {
		return list[n-1]
	}
	return arg
}

func userID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// parseCommand separa o comando (sem @nomedobot) dos argumentos
func parseCommand(text string) (string, []string) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil
	}
	command := strings.ToLower(parts[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}
	return command, parts[1:]
}
