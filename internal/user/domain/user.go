package domain

import "time"

type ID string

type User struct {
	ID           ID
	Username     string
	PasswordHash string
	Name         string
	Email        string
	CreatedAt    time.Time
}
