package model

// Tenant is one barbershop organization — maps to tenants.
type Tenant struct {
	TenantID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tenant_id"`
	Name     string `gorm:"type:varchar(200);not null"                     json:"name"`
	Timezone string `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone"`
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName sets the table name.
func (Tenant) TableName() string { return "tenants" }
