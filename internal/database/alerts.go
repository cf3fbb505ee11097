package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/models"
)

const alertColumns = "id, user_id, product_id, city_id, target_price, active, disarmed, created_at, last_checked, triggered_at, last_triggered_at, version"

// InsertAlert grava um novo alerta
func (db *DB) InsertAlert(ctx context.Context, a models.Alert) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.ProductID, a.CityID, a.TargetPrice.String(), a.Active, a.Disarmed,
		formatTime(a.CreatedAt), formatNullTime(a.LastChecked), formatNullTime(a.TriggeredAt),
		formatNullTime(a.LastTriggeredAt), a.Version,
	)
	return err
}

// AlertByID retorna um alerta pelo ID
func (db *DB) AlertByID(ctx context.Context, id string) (*models.Alert, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+alertColumns+" FROM alerts WHERE id = ?", id)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("alert %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ActiveAlerts retorna todos os alertas ativos
func (db *DB) ActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	return db.queryAlerts(ctx, "SELECT "+alertColumns+" FROM alerts WHERE active = 1 ORDER BY created_at, id")
}

// AlertsByUser retorna os alertas do usuário, ativos ou não
func (db *DB) AlertsByUser(ctx context.Context, userID string) ([]models.Alert, error) {
	return db.queryAlerts(ctx, "SELECT "+alertColumns+" FROM alerts WHERE user_id = ? ORDER BY created_at, id", userID)
}

// SaveAlert grava o estado do alerta se a versão não mudou desde a leitura
func (db *DB) SaveAlert(ctx context.Context, a models.Alert) (models.Alert, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE alerts SET target_price = ?, city_id = ?, active = ?, disarmed = ?, last_checked = ?,
			triggered_at = ?, last_triggered_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		a.TargetPrice.String(), a.CityID, a.Active, a.Disarmed, formatNullTime(a.LastChecked),
		formatNullTime(a.TriggeredAt), formatNullTime(a.LastTriggeredAt), a.ID, a.Version,
	)
	if err != nil {
		return models.Alert{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.Alert{}, err
	}
	if n == 0 {
		if _, err := db.AlertByID(ctx, a.ID); err != nil {
			return models.Alert{}, err
		}
		return models.Alert{}, fmt.Errorf("alert %s version %d: %w", a.ID, a.Version, apperr.ErrConflict)
	}

	a.Version++
	return a, nil
}

func (db *DB) queryAlerts(ctx context.Context, query string, args ...any) ([]models.Alert, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func scanAlert(s scanner) (models.Alert, error) {
	var (
		a                                     models.Alert
		cityID                                sql.NullString
		target, createdAt                     string
		lastChecked, triggered, lastTriggered sql.NullString
	)
	err := s.Scan(&a.ID, &a.UserID, &a.ProductID, &cityID, &target, &a.Active, &a.Disarmed,
		&createdAt, &lastChecked, &triggered, &lastTriggered, &a.Version)
	if err != nil {
		return a, err
	}

	a.CityID = cityID.String
	if a.TargetPrice, err = decimal.NewFromString(target); err != nil {
		return a, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return a, err
	}
	if a.LastChecked, err = parseNullTime(lastChecked); err != nil {
		return a, err
	}
	if a.TriggeredAt, err = parseNullTime(triggered); err != nil {
		return a, err
	}
	if a.LastTriggeredAt, err = parseNullTime(lastTriggered); err != nil {
		return a, err
	}
	return a, nil
}
