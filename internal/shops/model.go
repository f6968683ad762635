package shops

import "time"

// Shop is a registered tire shop and its inventory, in insertion order.
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Tires     []Tire    `json:"tires"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tire is one inventory line of a shop.
type Tire struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Brand    string  `json:"brand"`
	Model    string  `json:"model"`
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// SizedTire is a tire located by size lookup, tagged with its shop.
type SizedTire struct {
	ShopID   string `json:"shopId"`
	ShopName string `json:"shopName"`
	Tire     Tire   `json:"tire"`
}

func cloneShop(s Shop) Shop {
	out := s
	out.Tires = append([]Tire(nil), s.Tires...)
	if out.Tires == nil {
		out.Tires = []Tire{}
	}
	return out
}
