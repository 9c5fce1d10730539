// Package models defines server-side data models persisted in the database.
package models

// User is a registered account. Email is stored lower-cased.
type User struct {
	ID              int64   `json:"id_usuario"`
	FullName        string  `json:"nombre_completo"`
	Email           string  `json:"email"`
	PasswordHash    string  `json:"-"`
	Organization    *string `json:"ong"`
	ProfileImageURL *string `json:"profile_image_url"`
	IsAdmin         bool    `json:"es_admin"`
}

// UserSummary is a user row as shown in the admin panel, with the number of
// analyses still active.
type UserSummary struct {
	ID              int64   `json:"id_usuario"`
	FullName        string  `json:"nombre_completo"`
	Email           string  `json:"email"`
	ProfileImageURL *string `json:"profile_image_url"`
	AnalysisCount   int64   `json:"analysis_count"`
}

// ProfileUpdate holds the optional fields of a profile edit. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	FullName        *string
	ProfileImageURL *string
}
