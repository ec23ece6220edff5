package model

import "time"

type Appointment struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Start      time.Time
	End        time.Time
	Note       string
	Source     string
	AssignedTo string
	CreatedAt  time.Time
}
