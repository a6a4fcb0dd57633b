package internal

import "filedrive.dev/api/internal/database"

// RESTful datatypes

type CreateUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type UploadFileReq struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Data     string `json:"data"`
	IsPublic bool   `json:"isPublic"`
	// ParentID accepts both the numeric root sentinel and an id string.
	ParentID any `json:"parentId"`
}
type TokenRes struct {
	Token string `json:"token"`
}
type UserRes struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
type StatusRes struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}
type StatsRes struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// FileRes is the public projection of a record. The local path never leaves
// the service.
type FileRes struct {
	ID       string             `json:"id"`
	UserID   string             `json:"userId"`
	Name     string             `json:"name"`
	Type     string             `json:"type"`
	IsPublic bool               `json:"isPublic"`
	ParentID database.ParentRef `json:"parentId"`
}

func fileRes(f *database.File) FileRes {
	return FileRes{
		ID:       f.ID.Hex(),
		UserID:   f.UserID.Hex(),
		Name:     f.Name,
		Type:     string(f.Type),
		IsPublic: f.IsPublic,
		ParentID: f.Parent,
	}
}
