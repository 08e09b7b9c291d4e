package user

import (
	"bytes"
	"encoding/json"

	"residadmin/pkg/claims"
)

type User struct {
	ID            *int64         `json:"id,omitempty"`
	Username      string         `json:"username"`
	Email         string         `json:"email,omitempty"`
	Password      string         `json:"password,omitempty"`
	Role          string         `json:"role,omitempty"`
	Roles         claims.RoleSet `json:"roles,omitempty"`
	Matricule     string         `json:"matricule,omitempty"`
	StartActivity string         `json:"startActivity,omitempty"`
}

// SignInResponse is what the backend answers to a successful sign-in.
type SignInResponse struct {
	AccessToken string         `json:"accessToken"`
	Roles       claims.RoleSet `json:"roles,omitempty"`
	Username    string         `json:"username,omitempty"`
	Email       string         `json:"email,omitempty"`
}

type SortDir string

const (
	SortAsc  SortDir = "ASC"
	SortDesc SortDir = "DESC"
)

// Query filters the user listing. Zero values take the backend defaults:
// page 0, size 10, sorted by username ascending.
type Query struct {
	Page          int
	Size          int
	SortBy        string
	SortDir       SortDir
	Username      string
	Email         string
	Matricule     string
	StartActivity string
}

// Page is a page of users. The backend answers either with a paged object
// or with a bare array.
type Page struct {
	Content       []User `json:"content"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	Number        int    `json:"number"`
	Size          int    `json:"size"`
}

func (p *Page) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var users []User
		if err := json.Unmarshal(data, &users); err != nil {
			return err
		}
		*p = Page{
			Content:       users,
			TotalElements: int64(len(users)),
			TotalPages:    1,
			Size:          len(users),
		}
		return nil
	}

	type page Page
	var out page
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = Page(out)
	return nil
}

type PasswordChange struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}
