// internal/model/prospect.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Prospect struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Email       string     `db:"email" json:"email"`
	CompanyName *string    `db:"company_name" json:"company_name,omitempty"`
	Website     *string    `db:"website" json:"website,omitempty"`
	LinkedIn    *string    `db:"linkedin" json:"linkedin,omitempty"`
	Industry    *string    `db:"industry" json:"industry,omitempty"`
	TechStack   *string    `db:"tech_stack" json:"tech_stack,omitempty"`
	Attributes  Attributes `db:"attributes" json:"attributes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Attributes holds extra CSV columns verbatim, stored as JSONB
type Attributes map[string]string

func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Attributes) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("attributes: unsupported type %T", src)
	}
	return json.Unmarshal(raw, a)
}
