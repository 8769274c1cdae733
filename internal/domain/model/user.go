package model

const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
	RoleUser  = "USER"
)

type User struct {
	UserID         uint   `json:"userid"`
	DisplayName    string `json:"displayname"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	HashedPassword string `json:"-"` // Not exposed
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token       string `json:"token"`
	UserID      uint   `json:"userid"`
	DisplayName string `json:"displayname"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayname"`
}

type RegisterResponse struct {
	UserID      uint   `json:"userid"`
	DisplayName string `json:"displayname"`
	Email       string `json:"email"`
}

type MeResponse struct {
	DisplayName string `json:"displayname"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type UpdateRoleRequest struct {
	UserID uint   `json:"userid"`
	Role   string `json:"role"`
}
