package http

import (
	"tradeflow/internal/codec"
	"tradeflow/internal/schema"
)

type priceResponse struct {
	Bond   string `json:"bond"`
	Mid    string `json:"mid"`
	Spread string `json:"spread"`
}

type level struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Side     string `json:"side"`
}

func newLevel(o schema.Order) level {
	return level{
		Price:    codec.EncodePrice(o.Price),
		Quantity: o.Quantity,
		Side:     o.Side.String(),
	}
}

func newLevels(orders []schema.Order) []level {
	out := make([]level, 0, len(orders))
	for _, o := range orders {
		out = append(out, newLevel(o))
	}
	return out
}

type bidOfferResponse struct {
	Bid    level  `json:"bid"`
	Offer  level  `json:"offer"`
	Spread string `json:"spread"`
}

type bookResponse struct {
	Bond   string  `json:"bond"`
	Bids   []level `json:"bids"`
	Offers []level `json:"offers"`
}

type positionResponse struct {
	Bond      string           `json:"bond"`
	Books     map[string]int64 `json:"books"`
	Aggregate int64            `json:"aggregate"`
}

type riskResponse struct {
	Product  string  `json:"product"`
	PV01     float64 `json:"pv01"`
	Quantity int64   `json:"quantity"`
}

type inquiryResponse struct {
	ID       string `json:"id"`
	Bond     string `json:"bond"`
	Side     string `json:"side"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
	State    string `json:"state"`
}
