package models

type Address struct {
	ID                int    `json:"id"`
	UserID            int    `json:"user_id"`
	Street            string `json:"street"`
	City              string `json:"city"`
	State             string `json:"state"`
	Country           string `json:"country"`
	ZipCode           string `json:"zip_code"`
	IsDefaultShipping bool   `json:"is_default_shipping"`
}
