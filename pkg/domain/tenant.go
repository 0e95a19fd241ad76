package domain

import (
	"time"
)

// Tenant represents an isolated customer account.
type Tenant struct {
	ID          string    `json:"_id"`
	TenantName  string    `json:"tenantName"`
	Domain      string    `json:"domain"`
	Description string    `json:"description"`
	OwnerEmail  string    `json:"email,omitempty"`
	TenantID    string    `json:"tenantId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Users       []User    `json:"users,omitempty"`
}

// Owner returns the owner email, preferring the first attached user the way
// the backend reports it on GET /tenants/{id}.
func (t *Tenant) Owner() string {
	if len(t.Users) > 0 && t.Users[0].Email != "" {
		return t.Users[0].Email
	}
	return t.OwnerEmail
}

// TenantInput is the JSON body for creating or updating a tenant.
type TenantInput struct {
	TenantName  string `json:"tenantName"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	Email       string `json:"email"`
}

// Validate checks that every field is present.
func (in TenantInput) Validate() error {
	v := NewValidationError()
	if in.TenantName == "" {
		v.Add("tenantName", "form.required")
	}
	if in.Domain == "" {
		v.Add("domain", "form.required")
	}
	if in.Description == "" {
		v.Add("description", "form.required")
	}
	if in.Email == "" {
		v.Add("email", "form.required")
	}
	return v.Err()
}
