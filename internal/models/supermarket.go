package models

import "time"

// Address é o endereço de um supermercado
type Address struct {
	Street       string
	Neighborhood string
	ZipCode      string
	City         string
	State        string
}

// Location é a coordenada geográfica [latitude, longitude]
type Location struct {
	Latitude  float64
	Longitude float64
}

// Contact guarda os dados de contato de um supermercado
type Contact struct {
	Phone   string
	Website string
	Social  map[string]string
}

// Supermarket representa um supermercado participante
type Supermarket struct {
	ID           string
	Name         string
	Chain        string
	CityID       string
	Address      Address
	Location     Location
	Contact      Contact
	OpeningHours map[string]string
	Rating       float64
	TotalReviews int
	CreatedAt    time.Time
}

// ScrapeTarget é uma página de produto de um supermercado coletada pelo monitor
type ScrapeTarget struct {
	ID            int64
	ProductID     string
	SupermarketID string
	URL           string
}

// City é uma cidade atendida, derivada dos supermercados cadastrados
type City struct {
	ID           string
	Name         string
	State        string
	Supermarkets int
}
