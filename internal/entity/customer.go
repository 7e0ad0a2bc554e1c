package entity

import "time"

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"` // toy checksum, see auth.HashPassword
	Phone     string    `json:"phone"`
	Address   Address   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Customer) Key() int64      { return c.ID }
func (c *Customer) SetKey(id int64) { c.ID = id }

type Admin struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Admin) Key() int64      { return a.ID }
func (a *Admin) SetKey(id int64) { a.ID = id }
