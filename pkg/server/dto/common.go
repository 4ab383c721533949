package dto

import (
	"errors"
	"strings"
	"time"
)

// Message represents a chat message. RoleType is the three-way enum the
// external contract requires (user/assistant/system); Role is an optional
// free-form label (e.g. a speaker's name) kept alongside it.
type Message struct {
	UUID              string     `json:"uuid,omitempty"`
	Name              string     `json:"name,omitempty"`
	Content           string     `json:"content" binding:"required"`
	RoleType          string     `json:"role_type,omitempty"`
	Role              string     `json:"role,omitempty"`
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	SourceDescription string     `json:"source_description,omitempty"`
}

// ValidRoles defines acceptable message role_type values
var ValidRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}

// EffectiveRoleType returns RoleType, falling back to Role for callers that
// only populated the legacy field.
func (m *Message) EffectiveRoleType() string {
	if m.RoleType != "" {
		return m.RoleType
	}
	return m.Role
}

// Validate performs validation on Message
func (m *Message) Validate() error {
	roleType := m.EffectiveRoleType()
	if strings.TrimSpace(roleType) == "" {
		return errors.New("role_type cannot be empty")
	}
	if !ValidRoles[strings.ToLower(roleType)] {
		return errors.New("invalid role_type: must be user, assistant, or system")
	}
	if strings.TrimSpace(m.Content) == "" {
		return errors.New("content cannot be empty")
	}
	if len(m.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// Result represents a generic API result
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// FactResult represents a fact result from the knowledge graph
type FactResult struct {
	UUID         string     `json:"uuid"`
	Fact         string     `json:"fact"`
	SourceName   string     `json:"source_name"`
	TargetName   string     `json:"target_name"`
	RelationType string     `json:"relation_type"`
	Name         string     `json:"name,omitempty"`
	ValidAt      *time.Time `json:"valid_at,omitempty"`
	InvalidAt    *time.Time `json:"invalid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiredAt    *time.Time `json:"expired_at,omitempty"`
	Score        *float64   `json:"score,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
