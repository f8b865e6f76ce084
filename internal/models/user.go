package models

// UserRole represents the roles recognized by the RBAC middleware. Roles are
// issued by the external identity provider and carried in the JWT; this
// service never creates, stores, or authenticates users directly.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleAdvisor UserRole = "ADVISOR"
	RoleStudent UserRole = "STUDENT"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
