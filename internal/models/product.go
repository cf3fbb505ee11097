package models

import "time"

// Unit é o vocabulário fixo de unidades de medida de um produto
type Unit string

const (
	UnitMass   Unit = "mass"
	UnitVolume Unit = "volume"
	UnitCount  Unit = "count"
)

// Product representa um item do catálogo de produtos
type Product struct {
	ID            string
	CanonicalName string // chave normalizada, ex: "leite integral itambe 1000ml"
	DisplayName   string // rótulo exibido, ex: "Leite Integral Itambé 1L"
	Category      string
	Subcategory   string
	Brand         string
	Size          string
	Unit          Unit
	EAN           string
	ImageURL      string
	Synonyms      []string
	Variants      []string
	Active        bool
	CreatedAt     time.Time
}
