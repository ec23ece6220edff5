package model

import "time"

const DefaultLeadSource = "website"

type Lead struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Message   string
	Consent   bool
	Source    string
	CreatedAt time.Time
}
