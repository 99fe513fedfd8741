package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Registrant lifecycle statuses. UNPAID only ever appears on team members
// joining via invite code; everyone else starts at PENDING with a payment
// proof already attached.
const (
	StatusUnpaid   = "UNPAID"
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	RoleIndividual = "individual"
	RoleLeader     = "leader"
	RoleMember     = "member"
)

const (
	PaymentPending  = "pending"
	PaymentVerified = "verified"
	PaymentRejected = "rejected"
)

const (
	PayModeIndividual = "individual"
	PayModeBulk       = "bulk"
)

const (
	TeamPending = "pending"
	TeamActive  = "active"
)

// ---------------- REGISTRANTS ----------------
type Registrant struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string     `gorm:"not null" json:"phone"`
	RollNo    string     `gorm:"index;not null" json:"roll_no"`
	Role      string     `gorm:"not null;default:'individual'" json:"role"`
	Status    string     `gorm:"index;not null;default:'UNPAID'" json:"status"`
	TeamID    *uuid.UUID `gorm:"type:uuid;index" json:"team_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ---------------- TEAMS ----------------
type Team struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;not null" json:"name"`
	JoinCode    string       `gorm:"uniqueIndex;not null" json:"join_code"`
	LeaderID    uuid.UUID    `gorm:"type:uuid;not null" json:"leader_id"`
	PaymentMode string       `gorm:"not null;default:'bulk'" json:"payment_mode"`
	Capacity    int          `gorm:"not null;default:4" json:"capacity"`
	Status      string       `gorm:"not null;default:'pending'" json:"status"`
	Members     []Registrant `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ---------------- REGISTRATIONS ----------------
// One row per payment proof. Created in pending state before any registrant
// row that implies "paid"; the monitor worker checks exactly that ordering.
type Registration struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code          string         `gorm:"uniqueIndex;not null" json:"code"`
	RegistrantID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"registrant_id"`
	TeamID        *uuid.UUID     `gorm:"type:uuid;index" json:"team_id,omitempty"`
	Events        datatypes.JSON `json:"events"` // []string of event slugs
	Amount        int            `gorm:"not null" json:"amount"`
	QRCodeID      int64          `gorm:"index;not null" json:"qr_code_id"`
	PaymentStatus string         `gorm:"index;not null;default:'pending'" json:"payment_status"`
	Notes         string         `json:"notes,omitempty"`
	VerifiedBy    *string        `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time     `json:"verified_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ---------------- QR CODES ----------------
// Shared payment codes. today_usage is only ever moved by the conditional
// claim in internal/qr and the daily reset; never by read-then-write.
type QRCode struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Label      string    `gorm:"not null" json:"label"`
	ImageRef   string    `json:"image_ref"`
	Amount     int       `gorm:"index;not null" json:"amount"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	DailyCap   int       `gorm:"not null;default:50" json:"daily_cap"`
	TodayUsage int       `gorm:"not null;default:0" json:"today_usage"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ---------------- EVENTS ----------------
type Event struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"not null" json:"name"`
	Fee       int       `gorm:"not null" json:"fee"`
	Open      bool      `gorm:"not null;default:true" json:"open"`
	CreatedAt time.Time `json:"created_at"`
}

// ---------------- SUPPORT TICKETS ----------------
const (
	TicketOpen     = "open"
	TicketResolved = "resolved"
)

type SupportTicket struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RegistrantID uuid.UUID `gorm:"type:uuid;index;not null" json:"registrant_id"`
	IssueType    string    `gorm:"not null" json:"issue_type"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Status       string    `gorm:"not null;default:'open'" json:"status"`
	Response     string    `gorm:"type:text" json:"response,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ---------------- ADMINS ----------------
type Admin struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ---------------- OUTBOX (change events) ----------------
type Outbox struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string         `gorm:"index;not null" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null" json:"entity_id"`
	Op         string         `gorm:"not null" json:"op"` // UPSERT | DELETE
	Payload    datatypes.JSON `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	Processed  bool           `gorm:"default:false" json:"processed"`
}

const (
	OpUpsert = "UPSERT"
	OpDelete = "DELETE"
)

const (
	EntityRegistrant   = "registrant"
	EntityTeam         = "team"
	EntityRegistration = "registration"
)
