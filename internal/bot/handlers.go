package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/models"
	"bot-mercado/internal/money"
	"bot-mercado/internal/offers"
	"bot-mercado/internal/service"
)

const maxHistoryLines = 20

// Service são as operações usadas pelos comandos do bot
type Service interface {
	SearchProducts(ctx context.Context, query, cityID string) ([]service.SearchResult, error)
	SuggestProduct(ctx context.Context, query string) (*models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	GetOfferList(ctx context.Context, productID, cityID string) ([]offers.View, error)
	GetHistory(ctx context.Context, productID, cityID string, days int) (*service.HistoryResult, error)
	HistoryDays() int
	CreateOffer(ctx context.Context, in service.OfferInput) (offers.View, error)
	CreateAlert(ctx context.Context, userID, productID, cityID string, target decimal.Decimal) (models.Alert, error)
	ListAlerts(ctx context.Context, userID string) ([]models.Alert, error)
	DeactivateAlert(ctx context.Context, userID, alertID string) (models.Alert, error)
	ResetAlert(ctx context.Context, userID, alertID string) (models.Alert, error)
	ListCities(ctx context.Context) ([]models.City, error)
	GetCity(ctx context.Context, cityID string) (*models.City, error)
	ListSupermarkets(ctx context.Context, cityID string) ([]models.Supermarket, error)
}

const helpText = `🛒 <b>Bot de Preços do Mercado</b>

<b>Comandos disponíveis:</b>

<b>/cidade</b> &lt;cidade&gt; - Definir a cidade das buscas
Exemplo: /cidade recife
Sem argumento, lista as cidades disponíveis

<b>/mercados</b> - Supermercados da sua cidade e seus códigos

<b>/buscar</b> &lt;termo&gt; - Buscar produtos e o melhor preço
Exemplo: /buscar leite integral

<b>/ofertas</b> &lt;nº&gt; - Ofertas recentes de um produto da última busca

<b>/historico</b> &lt;nº&gt; [dias] - Histórico de preços
Exemplo: /historico 1 15

<b>/preco</b> &lt;nº&gt; &lt;supermercado&gt; &lt;preço&gt; [promo] - Informar um preço visto na loja
Exemplo: /preco 1 atacadao-boa-viagem 4,99
Os códigos dos supermercados estão em /mercados

<b>/alerta</b> &lt;nº&gt; &lt;preço_alvo&gt; - Avisar quando o preço ficar abaixo do alvo
Exemplo: /alerta 1 5,00

<b>/alertas</b> - Listar seus alertas

<b>/remover</b> &lt;nº&gt; - Desativar um alerta

<b>/rearmar</b> &lt;nº&gt; - Rearmar um alerta que já disparou

<b>/help</b> - Mostrar esta mensagem de ajuda
`

// escapeHTML escapa caracteres especiais do HTML
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// Reply calcula a resposta para uma mensagem
func (b *Bot) Reply(ctx context.Context, chatID int64, text string) string {
	command, args := parseCommand(text)
	if command == "" {
		return "Comando não reconhecido. Use /help para ver os comandos disponíveis."
	}

	// /start e /help não precisam de autorização
	isPublicCommand := command == "/start" || command == "/help"
	if !isPublicCommand && b.opts.AuthorizedChatID != 0 && chatID != b.opts.AuthorizedChatID {
		return "Você não está autorizado a usar este bot."
	}

	switch command {
	case "/start", "/help":
		return helpText
	case "/cidade":
		return b.handleCity(ctx, chatID, args)
	case "/mercados":
		return b.handleSupermarkets(ctx, chatID)
	case "/buscar":
		return b.handleSearch(ctx, chatID, args)
	case "/ofertas":
		return b.handleOffers(ctx, chatID, args)
	case "/historico":
		return b.handleHistory(ctx, chatID, args)
	case "/preco":
		return b.handleReportPrice(ctx, chatID, args)
	case "/alerta":
		return b.handleCreateAlert(ctx, chatID, args)
	case "/alertas":
		return b.handleListAlerts(ctx, chatID)
	case "/remover":
		return b.handleRemoveAlert(ctx, chatID, args)
	case "/rearmar":
		return b.handleResetAlert(ctx, chatID, args)
	default:
		return "Comando não reconhecido. Use /help para ver os comandos disponíveis."
	}
}

func (b *Bot) handleCity(ctx context.Context, chatID int64, args []string) string {
	if len(args) == 0 {
		return b.listCities(ctx, chatID)
	}
	cityID := strings.ToLower(strings.Join(args, "-"))
	city, err := b.svc.GetCity(ctx, cityID)
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Sprintf("❌ Cidade não encontrada: <b>%s</b>\n\nUse /cidade para ver as cidades disponíveis.", escapeHTML(cityID))
	}
	if err != nil {
		return b.failure(err, "definir a cidade")
	}
	b.setCity(chatID, city.ID)
	return fmt.Sprintf("✅ Cidade definida: <b>%s</b> (%s)", escapeHTML(city.Name), escapeHTML(city.ID))
}

func (b *Bot) listCities(ctx context.Context, chatID int64) string {
	cities, err := b.svc.ListCities(ctx)
	if err != nil {
		return b.failure(err, "listar cidades")
	}
	if len(cities) == 0 {
		return "📍 Nenhuma cidade cadastrada ainda."
	}

	current := b.city(chatID)
	var response strings.Builder
	if current != "" {
		fmt.Fprintf(&response, "📍 Cidade atual: <b>%s</b>\n\n", escapeHTML(current))
	} else {
		response.WriteString("📍 Nenhuma cidade definida.\n\n")
	}
	response.WriteString("<b>Cidades disponíveis:</b>\n")
	for _, c := range cities {
		unit := "supermercados"
		if c.Supermarkets == 1 {
			unit = "supermercado"
		}
		fmt.Fprintf(&response, "• %s: <code>%s</code> (%d %s)\n", escapeHTML(c.Name), escapeHTML(c.ID), c.Supermarkets, unit)
	}
	response.WriteString("\nUso: /cidade &lt;código&gt;")
	return response.String()
}

func (b *Bot) handleSupermarkets(ctx context.Context, chatID int64) string {
	city := b.city(chatID)
	if city == "" {
		return noCityText
	}
	list, err := b.svc.ListSupermarkets(ctx, city)
	if err != nil {
		return b.failure(err, "listar supermercados")
	}
	if len(list) == 0 {
		return "🏪 Nenhum supermercado cadastrado nesta cidade."
	}

	var response strings.Builder
	response.WriteString("🏪 <b>Supermercados:</b>\n\n")
	for _, sm := range list {
		fmt.Fprintf(&response, "• <b>%s</b>: <code>%s</code>\n", escapeHTML(sm.Name), escapeHTML(sm.ID))
		if sm.Address.Street != "" {
			fmt.Fprintf(&response, "  %s\n", escapeHTML(sm.Address.Street))
		}
	}
	response.WriteString("\nUse o código em /preco.")
	return response.String()
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args []string) string {
	if len(args) == 0 {
		return "❌ Formato incorreto.\n\nUso: /buscar &lt;termo&gt;\n\nExemplo: /buscar arroz 5kg"
	}
	city := b.city(chatID)
	if city == "" {
		return noCityText
	}

	query := strings.Join(args, " ")
	results, err := b.svc.SearchProducts(ctx, query, city)
	if err != nil {
		b.searchOutcome("error")
		return b.failure(err, "buscar produtos")
	}
	if len(results) == 0 {
		b.searchOutcome("empty")
		b.rememberProducts(chatID, nil)
		reply := "🔍 Nenhuma oferta recente encontrada para essa busca."
		if p, err := b.svc.SuggestProduct(ctx, query); err == nil && p != nil {
			reply += fmt.Sprintf("\n\nVocê quis dizer <b>%s</b>?", escapeHTML(p.DisplayName))
		}
		return reply
	}
	b.searchOutcome("hit")

	ids := make([]string, 0, len(results))
	var response strings.Builder
	response.WriteString("🔍 <b>Resultados:</b>\n\n")
	for i, r := range results {
		ids = append(ids, r.Product.ID)
		fmt.Fprintf(&response, "<b>%d.</b> %s\n", i+1, escapeHTML(r.Product.DisplayName))
		if r.BestOffer != nil {
			fmt.Fprintf(&response, "💰 <b>%s</b> em %s (%s)\n", money.FormatBRL(r.BestOffer.Price),
				escapeHTML(vendorName(r.BestOffer)), formatAge(r.BestOffer.HoursAgo))
		}
		response.WriteString("\n")
	}
	response.WriteString("Use /ofertas &lt;nº&gt; para ver todas as ofertas.")
	b.rememberProducts(chatID, ids)
	return response.String()
}

func (b *Bot) searchOutcome(outcome string) {
	if b.opts.Metrics != nil {
		b.opts.Metrics.Search(outcome)
	}
}

func (b *Bot) handleOffers(ctx context.Context, chatID int64, args []string) string {
	if len(args) == 0 {
		return "❌ Formato incorreto.\n\nUso: /ofertas &lt;nº&gt;\n\nExemplo: /ofertas 1"
	}
	city := b.city(chatID)
	if city == "" {
		return noCityText
	}
	productID := b.productRef(chatID, args[0])

	product, err := b.svc.GetProduct(ctx, productID)
	if err != nil {
		return b.failure(err, "buscar produto")
	}
	list, err := b.svc.GetOfferList(ctx, productID, city)
	if err != nil {
		return b.failure(err, "listar ofertas")
	}
	if len(list) == 0 {
		return fmt.Sprintf("📋 Nenhuma oferta recente de %s em %s.", escapeHTML(product.DisplayName), escapeHTML(city))
	}

	var response strings.Builder
	fmt.Fprintf(&response, "📋 <b>Ofertas de %s:</b>\n\n", escapeHTML(product.DisplayName))
	for _, v := range list {
		fmt.Fprintf(&response, "💰 <b>%s</b> - %s (%s)", money.FormatBRL(v.Price), escapeHTML(vendorName(&v)), formatAge(v.HoursAgo))
		if v.IsPromotion {
			response.WriteString(" 🎉")
		}
		response.WriteString("\n")
	}
	return response.String()
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64, args []string) string {
	if len(args) == 0 {
		return "❌ Formato incorreto.\n\nUso: /historico &lt;nº&gt; [dias]\n\nExemplo: /historico 1 15"
	}
	city := b.city(chatID)
	if city == "" {
		return noCityText
	}
	days := b.svc.HistoryDays()
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return "❌ Número de dias inválido."
		}
		days = n
	}

	h, err := b.svc.GetHistory(ctx, b.productRef(chatID, args[0]), city, days)
	if err != nil {
		return b.failure(err, "buscar histórico")
	}
	if len(h.Points) == 0 {
		return fmt.Sprintf("📈 Sem preços de %s nos últimos %d dias.", escapeHTML(h.Product.DisplayName), days)
	}

	low, high := h.Points[0].Price, h.Points[0].Price
	for _, p := range h.Points[1:] {
		low = decimal.Min(low, p.Price)
		high = decimal.Max(high, p.Price)
	}

	var response strings.Builder
	fmt.Fprintf(&response, "📈 <b>Histórico de %s</b> (%d dias)\n\n", escapeHTML(h.Product.DisplayName), days)
	fmt.Fprintf(&response, "⬇️ Menor: <b>%s</b>\n⬆️ Maior: <b>%s</b>\n\n", money.FormatBRL(low), money.FormatBRL(high))

	points := h.Points
	if len(points) > maxHistoryLines {
		points = points[len(points)-maxHistoryLines:]
	}
	for _, p := range points {
		fmt.Fprintf(&response, "🕐 %s  %s  %s\n", p.Date.Format("02/01 15:04"), money.FormatBRL(p.Price), escapeHTML(p.SupermarketName))
	}
	return response.String()
}

func (b *Bot) handleReportPrice(ctx context.Context, chatID int64, args []string) string {
	if len(args) < 3 {
		return "❌ Formato incorreto.\n\nUso: /preco &lt;nº&gt; &lt;supermercado&gt; &lt;preço&gt; [promo]\n\nExemplo: /preco 1 atacadao-boa-viagem 4,99"
	}
	price, ok := parsePrice(args[2])
	if !ok {
		return "❌ Preço inválido. Use um valor numérico positivo."
	}

	view, err := b.svc.CreateOffer(ctx, service.OfferInput{
		ProductID:     b.productRef(chatID, args[0]),
		SupermarketID: args[1],
		Price:         price,
		IsPromotion:   len(args) > 3 && strings.EqualFold(args[3], "promo"),
		UserID:        userID(chatID),
	})
	if err != nil {
		return b.failure(err, "registrar preço")
	}
	if b.opts.Metrics != nil {
		b.opts.Metrics.OfferCollected(string(view.Source))
	}
	return fmt.Sprintf("✅ Obrigado! Preço de %s registrado em %s.", money.FormatBRL(view.Price), escapeHTML(vendorName(&view)))
}

func (b *Bot) handleCreateAlert(ctx context.Context, chatID int64, args []string) string {
	if len(args) < 2 {
		return "❌ Formato incorreto.\n\nUso: /alerta &lt;nº&gt; &lt;preço_alvo&gt;\n\nExemplo: /alerta 1 5,00"
	}
	target, ok := parsePrice(args[1])
	if !ok {
		return "❌ Preço inválido. Use um valor numérico positivo."
	}
	productID := b.productRef(chatID, args[0])

	product, err := b.svc.GetProduct(ctx, productID)
	if err != nil {
		return b.failure(err, "buscar produto")
	}
	city := b.city(chatID)
	if _, err := b.svc.CreateAlert(ctx, userID(chatID), productID, city, target); err != nil {
		return b.failure(err, "criar alerta")
	}

	where := "em todas as cidades"
	if city != "" {
		where = "em " + escapeHTML(city)
	}
	return fmt.Sprintf("🔔 Alerta criado!\n\nProduto: %s\nPreço alvo: %s\nAviso quando o melhor preço %s ficar igual ou abaixo do alvo.",
		escapeHTML(product.DisplayName), money.FormatBRL(target), where)
}

func (b *Bot) handleListAlerts(ctx context.Context, chatID int64) string {
	list, err := b.svc.ListAlerts(ctx, userID(chatID))
	if err != nil {
		return b.failure(err, "listar alertas")
	}
	if len(list) == 0 {
		b.rememberAlerts(chatID, nil)
		return "🔔 Você não tem alertas."
	}

	ids := make([]string, 0, len(list))
	var response strings.Builder
	response.WriteString("🔔 <b>Seus alertas:</b>\n\n")
	for i, a := range list {
		ids = append(ids, a.ID)
		name := a.ProductID
		if p, err := b.svc.GetProduct(ctx, a.ProductID); err == nil {
			name = p.DisplayName
		}
		fmt.Fprintf(&response, "<b>%d.</b> %s\n🎯 Alvo: %s | %s\n\n", i+1, escapeHTML(name), money.FormatBRL(a.TargetPrice), alertStatus(a))
	}
	b.rememberAlerts(chatID, ids)
	return response.String()
}

func (b *Bot) handleRemoveAlert(ctx context.Context, chatID int64, args []string) string {
	if len(args) == 0 {
		return "❌ Formato incorreto.\n\nUso: /remover &lt;nº&gt;\n\nExemplo: /remover 1"
	}
	if _, err := b.svc.DeactivateAlert(ctx, userID(chatID), b.alertRef(chatID, args[0])); err != nil {
		return b.failure(err, "remover alerta")
	}
	return "✅ Alerta desativado."
}

func (b *Bot) handleResetAlert(ctx context.Context, chatID int64, args []string) string {
	if len(args) == 0 {
		return "❌ Formato incorreto.\n\nUso: /rearmar &lt;nº&gt;\n\nExemplo: /rearmar 1"
	}
	if _, err := b.svc.ResetAlert(ctx, userID(chatID), b.alertRef(chatID, args[0])); err != nil {
		return b.failure(err, "rearmar alerta")
	}
	return "✅ Alerta rearmado. Você será avisado na próxima vez que o preço atingir o alvo."
}

const noCityText = "📍 Defina sua cidade primeiro.\n\nUso: /cidade &lt;cidade&gt;"

// failure traduz o erro para o usuário. Erros inesperados vão para o log.
func (b *Bot) failure(err error, action string) string {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return "❌ Não encontrado. Confira o número ou faça uma nova busca."
	case errors.Is(err, apperr.ErrInvalidInput):
		return "❌ Dados inválidos. Use /help para ver o formato."
	case errors.Is(err, apperr.ErrConflict):
		return "⚠️ O alerta foi alterado ao mesmo tempo por outra operação. Tente de novo."
	}
	b.log.Error("Erro ao executar comando", zap.String("action", action), zap.Error(err))
	return fmt.Sprintf("❌ Erro ao %s. Tente novamente mais tarde.", action)
}

func alertStatus(a models.Alert) string {
	switch {
	case !a.Active:
		return "⏸ inativo"
	case a.Disarmed && a.LastTriggeredAt != nil:
		return "✅ disparou em " + a.LastTriggeredAt.Format("02/01/2006 15:04")
	default:
		return "👀 monitorando"
	}
}

// parsePrice aceita "4,99", "4.99" e "R$4,99"
func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := money.ParseBRL(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func formatAge(hours int) string {
	switch {
	case hours <= 0:
		return "agora há pouco"
	case hours == 1:
		return "há 1 hora"
	case hours < 48:
		return fmt.Sprintf("há %d horas", hours)
	default:
		return fmt.Sprintf("há %d dias", hours/24)
	}
}

func vendorName(v *offers.View) string {
	if v.Supermarket != nil && v.Supermarket.Name != "" {
		return v.Supermarket.Name
	}
	return offers.UnknownVendorName
}
