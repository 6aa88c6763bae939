package types

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"fullName"`
	Egn          string    `db:"egn" json:"egn"`
	Gender       string    `db:"gender" json:"gender"`
	Dob          time.Time `db:"dob" json:"dob"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type Admin struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Active       bool      `db:"is_active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
