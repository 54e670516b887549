package model

// Staff roles.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// Staff is a barber or manager account — maps to staff.
type Staff struct {
	StaffID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"staff_id"`
	TenantID     string `gorm:"type:uuid;not null"                             json:"tenant_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'staff'"      json:"role"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	Tenant *Tenant `gorm:"foreignKey:TenantID;references:TenantID" json:"tenant,omitempty"`
}

// TableName sets the table name.
func (Staff) TableName() string { return "staff" }
