package entity

// CartItem is one line of an actor's cart. Owner is the serialized actor key
// (see cart.Actor); at most one line exists per (ProductID, Owner) pair.
type CartItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Owner     string `json:"owner"`
}

func (c *CartItem) Key() int64      { return c.ID }
func (c *CartItem) SetKey(id int64) { c.ID = id }
