package models

import "time"

// Client is a customer site that tickets are opened against.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ClientPatch struct {
	Name    *string `json:"name"`
	Unit    *string `json:"unit"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
}

// Empty reports whether the patch changes nothing.
func (p ClientPatch) Empty() bool {
	return p.Name == nil && p.Unit == nil && p.Address == nil && p.City == nil && p.State == nil
}

// Apply merges the set fields into c.
func (p ClientPatch) Apply(c *Client) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Unit != nil {
		c.Unit = *p.Unit
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.City != nil {
		c.City = *p.City
	}
	if p.State != nil {
		c.State = *p.State
	}
}
