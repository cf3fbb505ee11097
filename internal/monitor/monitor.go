// Package monitor executa o ciclo periódico de coleta de preços e avaliação
// de alertas.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bot-mercado/internal/alerts"
	"bot-mercado/internal/apperr"
	"bot-mercado/internal/metrics"
	"bot-mercado/internal/models"
	"bot-mercado/internal/offers"
	"bot-mercado/internal/scraper"
	"bot-mercado/internal/service"
)

const scrapedConfidence = 0.8

// Notification é o aviso de que um alerta atingiu o preço alvo
type Notification struct {
	Alert       models.Alert
	Product     models.Product
	Offer       models.Offer
	Supermarket *models.Supermarket
}

// Notifier entrega notificações de alerta ao usuário
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Engine são as operações do serviço usadas pelo monitor
type Engine interface {
	ActiveAlerts(ctx context.Context) ([]models.Alert, error)
	CheckAlert(ctx context.Context, alert models.Alert) (alerts.Result, *models.Offer, error)
	RevertTrigger(ctx context.Context, before, saved models.Alert) (models.Alert, error)
	CreateOffer(ctx context.Context, in service.OfferInput) (offers.View, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	GetSupermarket(ctx context.Context, id string) (*models.Supermarket, error)
}

// TargetSource fornece as páginas a coletar
type TargetSource interface {
	ActiveScrapeTargets(ctx context.Context) ([]models.ScrapeTarget, error)
}

// Monitor gerencia o monitoramento periódico de preços
type Monitor struct {
	engine   Engine
	targets  TargetSource
	registry *scraper.Registry
	notifier Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
	interval time.Duration
	// Delay é a pausa entre requisições às lojas
	Delay time.Duration
}

// New cria uma nova instância do monitor. Com notifier nil as notificações
// apenas vão para o log.
func New(engine Engine, targets TargetSource, registry *scraper.Registry, notifier Notifier,
	m *metrics.Metrics, log *zap.Logger, interval time.Duration) *Monitor {
	mon := &Monitor{
		engine:   engine,
		targets:  targets,
		registry: registry,
		notifier: notifier,
		metrics:  m,
		log:      log,
		interval: interval,
		Delay:    2 * time.Second,
	}
	if mon.notifier == nil {
		mon.notifier = LogNotifier{Log: log}
	}
	return mon
}

// Start executa um ciclo imediatamente e depois a cada intervalo, até o
// contexto ser cancelado
func (m *Monitor) Start(ctx context.Context) {
	m.log.Info("Monitor iniciado", zap.Duration("interval", m.interval))

	m.RunOnce(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("Monitor encerrado")
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

// CycleStats resume um ciclo do monitor
type CycleStats struct {
	Collected int
	Checked   int
	Notified  int
	Conflicts int
	Failures  int
}

// RunOnce coleta as páginas cadastradas e avalia todos os alertas ativos
func (m *Monitor) RunOnce(ctx context.Context) CycleStats {
	start := time.Now()
	var stats CycleStats

	m.collect(ctx, &stats)
	m.checkAlerts(ctx, &stats)

	m.metrics.ObserveCycle(time.Since(start))
	m.log.Info("Ciclo de verificação concluído",
		zap.Int("collected", stats.Collected),
		zap.Int("checked", stats.Checked),
		zap.Int("notified", stats.Notified),
		zap.Int("conflicts", stats.Conflicts),
		zap.Int("failures", stats.Failures),
		zap.Duration("took", time.Since(start)),
	)
	return stats
}

func (m *Monitor) collect(ctx context.Context, stats *CycleStats) {
	if m.targets == nil || m.registry == nil {
		return
	}
	targets, err := m.targets.ActiveScrapeTargets(ctx)
	if err != nil {
		m.log.Error("Erro ao buscar páginas cadastradas", zap.Error(err))
		stats.Failures++
		return
	}

	for i, t := range targets {
		if i > 0 && !m.pause(ctx) {
			return
		}
		if err := m.collectTarget(ctx, t); err != nil {
			m.log.Warn("Erro ao coletar preço",
				zap.Int64("target", t.ID), zap.String("url", t.URL), zap.Error(err))
			stats.Failures++
			continue
		}
		stats.Collected++
	}
}

// collectTarget coleta uma página e grava a oferta
func (m *Monitor) collectTarget(ctx context.Context, t models.ScrapeTarget) error {
	s := m.registry.FindScraper(t.URL)
	if s == nil {
		return fmt.Errorf("nenhum scraper encontrado para URL: %s", t.URL)
	}
	page, err := s.Scrape(ctx, t.URL)
	if err != nil {
		return err
	}

	if _, err := m.engine.CreateOffer(ctx, service.OfferInput{
		ProductID:     t.ProductID,
		SupermarketID: t.SupermarketID,
		Price:         page.Price,
		IsPromotion:   page.IsPromotion(),
		Source:        models.SourceScraping,
		Confidence:    scrapedConfidence,
	}); err != nil {
		return err
	}
	m.metrics.OfferCollected(string(models.SourceScraping))
	return nil
}

// Alertas são avaliados um por vez; uma gravação concorrente faz o alerta
// ser pulado neste ciclo.
func (m *Monitor) checkAlerts(ctx context.Context, stats *CycleStats) {
	list, err := m.engine.ActiveAlerts(ctx)
	if err != nil {
		m.log.Error("Erro ao buscar alertas ativos", zap.Error(err))
		stats.Failures++
		return
	}

	for _, a := range list {
		if ctx.Err() != nil {
			return
		}
		stats.Checked++

		res, best, err := m.engine.CheckAlert(ctx, a)
		switch {
		case errors.Is(err, apperr.ErrConflict):
			m.log.Info("Alerta alterado por outra verificação, pulando", zap.String("alert", a.ID))
			m.metrics.AlertChecked("conflict")
			stats.Conflicts++
			continue
		case err != nil:
			m.log.Error("Erro ao verificar alerta", zap.String("alert", a.ID), zap.Error(err))
			m.metrics.AlertChecked("error")
			stats.Failures++
			continue
		}

		if !res.ShouldNotify || best == nil {
			m.metrics.AlertChecked("quiet")
			continue
		}
		if err := m.notify(ctx, res.Alert, *best); err != nil {
			m.log.Error("Erro ao enviar notificação", zap.String("alert", a.ID), zap.Error(err))
			m.metrics.AlertChecked("notify_failed")
			stats.Failures++
			// o alerta volta a ficar armado para tentar de novo no próximo ciclo
			if _, err := m.engine.RevertTrigger(ctx, a, res.Alert); err != nil {
				m.log.Error("Erro ao rearmar alerta", zap.String("alert", a.ID), zap.Error(err))
			}
			continue
		}
		m.metrics.AlertChecked("notified")
		stats.Notified++
	}
}

func (m *Monitor) notify(ctx context.Context, a models.Alert, best models.Offer) error {
	product, err := m.engine.GetProduct(ctx, a.ProductID)
	if err != nil {
		return fmt.Errorf("erro ao buscar produto %s: %w", a.ProductID, err)
	}
	n := Notification{Alert: a, Product: *product, Offer: best}
	if sm, err := m.engine.GetSupermarket(ctx, best.SupermarketID); err == nil {
		n.Supermarket = sm
	}
	return m.notifier.Notify(ctx, n)
}

func (m *Monitor) pause(ctx context.Context) bool {
	if m.Delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(m.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// LogNotifier apenas registra a notificação no log
type LogNotifier struct {
	Log *zap.Logger
}

// Notify implementa Notifier
func (n LogNotifier) Notify(_ context.Context, notif Notification) error {
	n.Log.Info("Alerta disparado",
		zap.String("alert", notif.Alert.ID),
		zap.String("user", notif.Alert.UserID),
		zap.String("product", notif.Product.DisplayName),
		zap.String("price", notif.Offer.Price.StringFixed(2)),
		zap.String("target", notif.Alert.TargetPrice.StringFixed(2)),
	)
	return nil
}
