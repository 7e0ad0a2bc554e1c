package cart

import "fmt"

// Actor identifies who owns a cart line: an authenticated customer or an
// anonymous guest session. The two identifier spaces never mix; the
// serialized key is prefixed so a customer id can never collide with a
// session token.
type Actor struct {
	customerID int64
	guestToken string
}

func ForCustomer(id int64) Actor {
	return Actor{customerID: id}
}

func ForGuest(token string) Actor {
	return Actor{guestToken: token}
}

func (a Actor) IsCustomer() bool {
	return a.customerID != 0
}

// CustomerID returns the customer id when the actor is authenticated.
func (a Actor) CustomerID() (int64, bool) {
	return a.customerID, a.customerID != 0
}

// Key is the value stored in the cart collection's owner index.
func (a Actor) Key() string {
	if a.customerID != 0 {
		return fmt.Sprintf("customer:%d", a.customerID)
	}
	return "guest:" + a.guestToken
}
