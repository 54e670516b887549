package dto

// CreateStaffRequest registers a new staff member.
type CreateStaffRequest struct {
	Name     string `json:"name"     binding:"required,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"     binding:"omitempty,oneof=staff admin owner"`
}

// UpdateStaffRequest modifies a staff member. Nil fields are left unchanged.
type UpdateStaffRequest struct {
	Name     *string `json:"name"      binding:"omitempty,max=100"`
	Email    *string `json:"email"     binding:"omitempty,email"`
	Role     *string `json:"role"      binding:"omitempty,oneof=staff admin owner"`
	IsActive *bool   `json:"is_active"`
}

// StaffResponse is the public view of a staff member.
type StaffResponse struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
