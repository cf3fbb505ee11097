package database

import (
	"context"

	"bot-mercado/internal/models"
)

// AddScrapeTarget cadastra uma página de produto a ser coletada periodicamente.
// Uma URL já cadastrada é reativada e passa a apontar para o novo produto.
func (db *DB) AddScrapeTarget(ctx context.Context, productID, supermarketID, url string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO scrape_targets (product_id, supermarket_id, url, active) VALUES (?, ?, ?, 1)
		ON CONFLICT(url) DO UPDATE SET product_id = excluded.product_id, supermarket_id = excluded.supermarket_id, active = 1`,
		productID, supermarketID, url,
	)
	return err
}

// ActiveScrapeTargets retorna todas as páginas ativas
func (db *DB) ActiveScrapeTargets(ctx context.Context) ([]models.ScrapeTarget, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, product_id, supermarket_id, url FROM scrape_targets WHERE active = 1 ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []models.ScrapeTarget
	for rows.Next() {
		var t models.ScrapeTarget
		if err := rows.Scan(&t.ID, &t.ProductID, &t.SupermarketID, &t.URL); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// DeactivateScrapeTarget desativa uma página
func (db *DB) DeactivateScrapeTarget(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx, "UPDATE scrape_targets SET active = 0 WHERE id = ?", id)
	return err
}
