package cart

// Line is a reserved product inside a cart. Total is derived from
// Quantity and UnitPrice and recomputed whenever either changes.
type Line struct {
	ProductID string     `bson:"product_id" json:"product_id"`
	Quantity  int        `bson:"quantity" json:"quantity"`
	UnitPrice float64    `bson:"unit_price" json:"unit_price"`
	Total     float64    `bson:"total" json:"total"`
	Status    LineStatus `bson:"status" json:"status"`
}

func NewLine(productID string, quantity int, unitPrice float64) Line {
	return Line{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     float64(quantity) * unitPrice,
		Status:    StatusInCart,
	}
}

func (l *Line) SetQuantity(quantity int) {
	l.Quantity = quantity
	l.Total = float64(l.Quantity) * l.UnitPrice
}

func (l *Line) SetUnitPrice(price float64) {
	l.UnitPrice = price
	l.Total = float64(l.Quantity) * l.UnitPrice
}

func (l *Line) IsCancelled() bool {
	return l.Status == StatusCancelled
}
