package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/models"
)

const productColumns = "id, canonical_name, display_name, category, subcategory, brand, size, unit, ean, image_url, synonyms, variants, active, created_at"

// UpsertProduct cria ou atualiza um produto do catálogo. A data de criação
// original é mantida.
func (db *DB) UpsertProduct(ctx context.Context, p models.Product) error {
	synonyms, err := encodeJSON(p.Synonyms)
	if err != nil {
		return err
	}
	variants, err := encodeJSON(p.Variants)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			canonical_name = excluded.canonical_name, display_name = excluded.display_name,
			category = excluded.category, subcategory = excluded.subcategory, brand = excluded.brand,
			size = excluded.size, unit = excluded.unit, ean = excluded.ean, image_url = excluded.image_url,
			synonyms = excluded.synonyms, variants = excluded.variants, active = excluded.active`,
		p.ID, p.CanonicalName, p.DisplayName, p.Category, p.Subcategory, p.Brand, p.Size, string(p.Unit),
		p.EAN, p.ImageURL, synonyms, variants, p.Active, formatTime(p.CreatedAt),
	)
	return err
}

// ActiveProducts retorna todos os produtos ativos
func (db *DB) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT "+productColumns+" FROM products WHERE active = 1 ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ProductByID retorna um produto pelo ID
func (db *DB) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (models.Product, error) {
	var (
		p                                  models.Product
		category, subcategory, brand, size sql.NullString
		unit, ean, imageURL                sql.NullString
		synonyms, variants                 sql.NullString
		createdAt                          string
	)
	err := s.Scan(&p.ID, &p.CanonicalName, &p.DisplayName, &category, &subcategory, &brand, &size,
		&unit, &ean, &imageURL, &synonyms, &variants, &p.Active, &createdAt)
	if err != nil {
		return p, err
	}

	p.Category = category.String
	p.Subcategory = subcategory.String
	p.Brand = brand.String
	p.Size = size.String
	p.Unit = models.Unit(unit.String)
	p.EAN = ean.String
	p.ImageURL = imageURL.String
	if err := decodeJSON(synonyms, &p.Synonyms); err != nil {
		return p, err
	}
	if err := decodeJSON(variants, &p.Variants); err != nil {
		return p, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return p, err
	}
	return p, nil
}

const supermarketColumns = "id, name, chain, city_id, street, neighborhood, zip_code, city, state, latitude, longitude, phone, website, social, opening_hours, rating, total_reviews, created_at"

// UpsertSupermarket cria ou atualiza um supermercado
func (db *DB) UpsertSupermarket(ctx context.Context, s models.Supermarket) error {
	social, err := encodeJSON(s.Contact.Social)
	if err != nil {
		return err
	}
	hours, err := encodeJSON(s.OpeningHours)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO supermarkets (`+supermarketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, chain = excluded.chain, city_id = excluded.city_id,
			street = excluded.street, neighborhood = excluded.neighborhood, zip_code = excluded.zip_code,
			city = excluded.city, state = excluded.state, latitude = excluded.latitude, longitude = excluded.longitude,
			phone = excluded.phone, website = excluded.website, social = excluded.social,
			opening_hours = excluded.opening_hours, rating = excluded.rating, total_reviews = excluded.total_reviews`,
		s.ID, s.Name, s.Chain, s.CityID, s.Address.Street, s.Address.Neighborhood, s.Address.ZipCode,
		s.Address.City, s.Address.State, s.Location.Latitude, s.Location.Longitude,
		s.Contact.Phone, s.Contact.Website, social, hours, s.Rating, s.TotalReviews, formatTime(s.CreatedAt),
	)
	return err
}

// SupermarketIDsByCity retorna os IDs dos supermercados da cidade
func (db *DB) SupermarketIDsByCity(ctx context.Context, cityID string) ([]string, error) {
	return db.queryIDs(ctx, "SELECT id FROM supermarkets WHERE city_id = ? ORDER BY id", cityID)
}

// AllSupermarketIDs retorna os IDs de todos os supermercados
func (db *DB) AllSupermarketIDs(ctx context.Context) ([]string, error) {
	return db.queryIDs(ctx, "SELECT id FROM supermarkets ORDER BY id")
}

func (db *DB) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListSupermarkets lista os supermercados da cidade, ou todos se cityID for vazio
func (db *DB) ListSupermarkets(ctx context.Context, cityID string) ([]models.Supermarket, error) {
	query := "SELECT " + supermarketColumns + " FROM supermarkets"
	var args []any
	if cityID != "" {
		query += " WHERE city_id = ?"
		args = append(args, cityID)
	}
	rows, err := db.conn.QueryContext(ctx, query+" ORDER BY name, id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Supermarket
	for rows.Next() {
		s, err := scanSupermarket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Cities agrupa os supermercados por city_id. Nome e UF vêm do endereço dos
// supermercados; ficam vazios se nenhum tiver endereço.
func (db *DB) Cities(ctx context.Context) ([]models.City, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT city_id, COALESCE(MAX(city), ''), COALESCE(MAX(state), ''), COUNT(*)
		FROM supermarkets
		GROUP BY city_id
		ORDER BY city_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.City
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name, &c.State, &c.Supermarkets); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SupermarketsByIDs retorna os supermercados encontrados indexados por ID.
// IDs inexistentes são ignorados.
func (db *DB) SupermarketsByIDs(ctx context.Context, ids []string) (map[string]models.Supermarket, error) {
	out := make(map[string]models.Supermarket, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+supermarketColumns+" FROM supermarkets WHERE id IN ("+placeholders(len(ids))+")",
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSupermarket(rows)
		if err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

// SupermarketByID retorna um supermercado pelo ID
func (db *DB) SupermarketByID(ctx context.Context, id string) (*models.Supermarket, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+supermarketColumns+" FROM supermarkets WHERE id = ?", id)
	s, err := scanSupermarket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("supermarket %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSupermarket(sc scanner) (models.Supermarket, error) {
	var (
		s                                models.Supermarket
		chain, street, neighborhood, zip sql.NullString
		city, state, phone, website      sql.NullString
		social, hours                    sql.NullString
		lat, lng, rating                 sql.NullFloat64
		reviews                          sql.NullInt64
		createdAt                        string
	)
	err := sc.Scan(&s.ID, &s.Name, &chain, &s.CityID, &street, &neighborhood, &zip, &city, &state,
		&lat, &lng, &phone, &website, &social, &hours, &rating, &reviews, &createdAt)
	if err != nil {
		return s, err
	}

	s.Chain = chain.String
	s.Address = models.Address{
		Street:       street.String,
		Neighborhood: neighborhood.String,
		ZipCode:      zip.String,
		City:         city.String,
		State:        state.String,
	}
	s.Location = models.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	s.Contact = models.Contact{Phone: phone.String, Website: website.String}
	if err := decodeJSON(social, &s.Contact.Social); err != nil {
		return s, err
	}
	if err := decodeJSON(hours, &s.OpeningHours); err != nil {
		return s, err
	}
	s.Rating = rating.Float64
	s.TotalReviews = int(reviews.Int64)
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return s, err
	}
	return s, nil
}
