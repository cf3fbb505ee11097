package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bot-mercado/internal/alerts"
	"bot-mercado/internal/apperr"
	"bot-mercado/internal/models"
	"bot-mercado/internal/offers"
)

// EvaluateAlert decide se o alerta deve notificar dado o melhor preço atual.
// Não persiste nada.
func (s *Service) EvaluateAlert(alert models.Alert, best *models.Offer) alerts.Result {
	return alerts.Evaluate(alert, best, s.now())
}

// BestOfferForAlert busca a melhor oferta recente no escopo do alerta.
// Retorna nil quando não há oferta.
func (s *Service) BestOfferForAlert(ctx context.Context, alert models.Alert) (*models.Offer, error) {
	var (
		vendorIDs []string
		err       error
	)
	if alert.CityID != "" {
		vendorIDs, err = s.vendors.SupermarketIDsByCity(ctx, alert.CityID)
	} else {
		vendorIDs, err = s.vendors.AllSupermarketIDs(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("listing supermarkets for alert %s: %w", alert.ID, err)
	}
	if len(vendorIDs) == 0 {
		return nil, nil
	}

	list, err := s.offers.OffersForProduct(ctx, alert.ProductID, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("listing offers of product %s: %w", alert.ProductID, err)
	}
	best, ok := offers.SelectBest(offers.Filter(list, offers.NewVendorSet(vendorIDs...), s.now(), s.window))
	if !ok {
		return nil, nil
	}
	return &best, nil
}

// CheckAlert avalia o alerta contra a melhor oferta atual e persiste o novo
// estado. Retorna apperr.ErrConflict se outra avaliação gravou antes.
func (s *Service) CheckAlert(ctx context.Context, alert models.Alert) (alerts.Result, *models.Offer, error) {
	best, err := s.BestOfferForAlert(ctx, alert)
	if err != nil {
		return alerts.Result{}, nil, err
	}

	res := s.EvaluateAlert(alert, best)
	saved, err := s.alerts.SaveAlert(ctx, res.Alert)
	if err != nil {
		return alerts.Result{}, nil, fmt.Errorf("saving alert %s: %w", alert.ID, err)
	}
	res.Alert = saved
	return res, best, nil
}

// RevertTrigger desfaz o disparo gravado por CheckAlert quando a notificação
// não foi entregue, para que o alerta dispare de novo no próximo ciclo.
// before é o alerta como estava antes da avaliação; saved é o retorno de CheckAlert.
func (s *Service) RevertTrigger(ctx context.Context, before, saved models.Alert) (models.Alert, error) {
	a := saved
	a.Disarmed = before.Disarmed
	a.TriggeredAt = before.TriggeredAt
	a.LastTriggeredAt = before.LastTriggeredAt
	reverted, err := s.alerts.SaveAlert(ctx, a)
	if err != nil {
		return models.Alert{}, fmt.Errorf("reverting alert %s: %w", a.ID, err)
	}
	return reverted, nil
}

// CreateAlert cria um alerta de preço para o usuário
func (s *Service) CreateAlert(ctx context.Context, userID, productID, cityID string, target decimal.Decimal) (models.Alert, error) {
	if userID == "" {
		return models.Alert{}, fmt.Errorf("missing user: %w", apperr.ErrInvalidInput)
	}
	target = target.Round(2)
	if !target.IsPositive() {
		return models.Alert{}, fmt.Errorf("target price must be positive, got %s: %w", target, apperr.ErrInvalidInput)
	}
	if _, err := s.catalog.ProductByID(ctx, productID); err != nil {
		return models.Alert{}, err
	}

	a := models.Alert{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   productID,
		CityID:      cityID,
		TargetPrice: target,
		Active:      true,
		CreatedAt:   s.now(),
	}
	if err := s.alerts.InsertAlert(ctx, a); err != nil {
		return models.Alert{}, fmt.Errorf("saving alert: %w", err)
	}
	return a, nil
}

// ListAlerts lista os alertas do usuário
func (s *Service) ListAlerts(ctx context.Context, userID string) ([]models.Alert, error) {
	return s.alerts.AlertsByUser(ctx, userID)
}

// DeactivateAlert desativa um alerta do usuário
func (s *Service) DeactivateAlert(ctx context.Context, userID, alertID string) (models.Alert, error) {
	a, err := s.ownedAlert(ctx, userID, alertID)
	if err != nil {
		return models.Alert{}, err
	}
	a.Active = false
	return s.alerts.SaveAlert(ctx, a)
}

// ResetAlert rearma um alerta do usuário que já disparou
func (s *Service) ResetAlert(ctx context.Context, userID, alertID string) (models.Alert, error) {
	a, err := s.ownedAlert(ctx, userID, alertID)
	if err != nil {
		return models.Alert{}, err
	}
	a = alerts.Reset(a)
	a.Active = true
	return s.alerts.SaveAlert(ctx, a)
}

func (s *Service) ownedAlert(ctx context.Context, userID, alertID string) (models.Alert, error) {
	a, err := s.alerts.AlertByID(ctx, alertID)
	if err != nil {
		return models.Alert{}, err
	}
	if a.UserID != userID {
		return models.Alert{}, fmt.Errorf("alert %s: %w", alertID, apperr.ErrNotFound)
	}
	return *a, nil
}

// ActiveAlerts lista todos os alertas ativos, de todos os usuários
func (s *Service) ActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	return s.alerts.ActiveAlerts(ctx)
}
