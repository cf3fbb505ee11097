package database

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"bot-mercado/internal/models"
)

const offerColumns = "id, product_id, supermarket_id, price, unit_price, currency, source, confidence_score, collected_at, expires_at, is_promotion, stock_status, submitter_id, photo_url, ocr_verified"

// InsertOffer grava uma nova oferta. Ofertas nunca são atualizadas.
func (db *DB) InsertOffer(ctx context.Context, o models.Offer) error {
	var submitter, photo sql.NullString
	var verified bool
	if o.Metadata != nil {
		submitter = sql.NullString{String: o.Metadata.UserID, Valid: o.Metadata.UserID != ""}
		photo = sql.NullString{String: o.Metadata.PhotoURL, Valid: o.Metadata.PhotoURL != ""}
		verified = o.Metadata.OCRVerified
	}
	currency := o.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	stock := o.StockStatus
	if stock == "" {
		stock = models.StockAvailable
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO offers (`+offerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.ProductID, o.SupermarketID, o.Price.String(), o.UnitPrice.String(), currency,
		string(o.Source), o.ConfidenceScore, formatTime(o.CollectedAt), formatTime(o.ExpiresAt),
		o.IsPromotion, string(stock), submitter, photo, verified,
	)
	return err
}

// OffersForProduct retorna as ofertas do produto nos supermercados informados,
// ordenadas por data de coleta
func (db *DB) OffersForProduct(ctx context.Context, productID string, supermarketIDs []string) ([]models.Offer, error) {
	if len(supermarketIDs) == 0 {
		return nil, nil
	}

	args := append([]any{productID}, stringArgs(supermarketIDs)...)
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+offerColumns+" FROM offers WHERE product_id = ? AND supermarket_id IN ("+placeholders(len(supermarketIDs))+") ORDER BY collected_at, id",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOffer(s scanner) (models.Offer, error) {
	var (
		o                      models.Offer
		price, unitPrice       string
		source, stock          string
		collectedAt, expiresAt string
		submitter, photo       sql.NullString
		verified               bool
	)
	err := s.Scan(&o.ID, &o.ProductID, &o.SupermarketID, &price, &unitPrice, &o.Currency, &source,
		&o.ConfidenceScore, &collectedAt, &expiresAt, &o.IsPromotion, &stock, &submitter, &photo, &verified)
	if err != nil {
		return o, err
	}

	if o.Price, err = decimal.NewFromString(price); err != nil {
		return o, err
	}
	if o.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return o, err
	}
	if o.CollectedAt, err = parseTime(collectedAt); err != nil {
		return o, err
	}
	if o.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return o, err
	}
	o.Source = models.OfferSource(source)
	o.StockStatus = models.StockStatus(stock)
	if submitter.Valid || photo.Valid || verified {
		o.Metadata = &models.OfferMetadata{UserID: submitter.String, PhotoURL: photo.String, OCRVerified: verified}
	}
	return o, nil
}
