package domain

type OrderItem struct {
	ID          uint
	OrderID     uint
	ServiceName string
	Description *string
	Price       float64
	Quantity    int
}

// LineTotal is the item price multiplied by its quantity.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderTotal sums the line totals of all items.
func OrderTotal(items []OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}
