package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert é um alerta de queda de preço criado por um usuário.
//
// TriggeredAt guarda o primeiro disparo e nunca é sobrescrito.
// Disarmed fica verdadeiro depois de uma notificação e só volta a falso
// quando o melhor preço observado sobe acima do alvo.
type Alert struct {
	ID              string
	UserID          string
	ProductID       string
	CityID          string // vazio significa todas as cidades
	TargetPrice     decimal.Decimal
	Active          bool
	Disarmed        bool
	CreatedAt       time.Time
	LastChecked     *time.Time
	TriggeredAt     *time.Time
	LastTriggeredAt *time.Time
	Version         int64
}

// Pending indica se o alerta ainda não disparou nenhuma vez
func (a Alert) Pending() bool {
	return a.Active && a.TriggeredAt == nil
}
