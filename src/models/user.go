package models

import "time"

type MUser struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type MPerspective struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	ResponseMD string    `json:"response_md"`
	CreatedAt  time.Time `json:"created_at"`
	UserID     int64     `json:"-"`
}

// MPerspectivePage is one page of a user's perspectives, newest first.
type MPerspectivePage struct {
	Perspectives []MPerspective `json:"perspectives"`
	Total        int            `json:"total"`
	Pages        int            `json:"pages"`
	CurrentPage  int            `json:"current_page"`
	PerPage      int            `json:"per_page"`
	HasNext      bool           `json:"has_next"`
	HasPrev      bool           `json:"has_prev"`
}

type MTokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
