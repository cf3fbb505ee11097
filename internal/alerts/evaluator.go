// Package alerts decide quando um alerta de queda de preço deve notificar.
package alerts

import (
	"time"

	"bot-mercado/internal/models"
)

// Result é a decisão de uma avaliação e o novo estado do alerta
type Result struct {
	ShouldNotify bool
	Alert        models.Alert
}

// Evaluate compara o melhor preço atual com o alvo do alerta.
//
// Depois de notificar, o alerta fica desarmado até que um melhor preço acima do
// alvo seja observado. Sem oferta atual só LastChecked muda. A função não tem
// efeitos colaterais: persistir o alerta retornado é papel de quem chama.
func Evaluate(alert models.Alert, best *models.Offer, now time.Time) Result {
	a := alert
	checked := now
	a.LastChecked = &checked

	if !a.Active || best == nil {
		return Result{Alert: a}
	}

	if best.Price.GreaterThan(a.TargetPrice) {
		a.Disarmed = false
		return Result{Alert: a}
	}

	if a.Disarmed {
		return Result{Alert: a}
	}

	triggered := now
	if a.TriggeredAt == nil {
		a.TriggeredAt = &triggered
	}
	a.LastTriggeredAt = &triggered
	a.Disarmed = true
	return Result{ShouldNotify: true, Alert: a}
}

// Reset rearma o alerta e apaga o registro de disparo
func Reset(alert models.Alert) models.Alert {
	a := alert
	a.Disarmed = false
	a.TriggeredAt = nil
	a.LastTriggeredAt = nil
	return a
}
