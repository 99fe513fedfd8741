package search

import (
	"encoding/json"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
)

type RegistrantDoc struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RollNo    string    `json:"roll_no"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	TeamID    string    `json:"team_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func BuildRegistrantDoc(r models.Registrant) ([]byte, error) {
	doc := RegistrantDoc{
		Name: r.Name, Email: r.Email, RollNo: r.RollNo,
		Role: r.Role, Status: r.Status, UpdatedAt: r.UpdatedAt,
	}
	if r.TeamID != nil {
		doc.TeamID = r.TeamID.String()
	}
	return json.Marshal(doc)
}

type TeamDoc struct {
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	PaymentMode string    `json:"payment_mode"`
	Capacity    int       `json:"capacity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func BuildTeamDoc(t models.Team) ([]byte, error) {
	return json.Marshal(TeamDoc{t.Name, t.Status, t.PaymentMode, t.Capacity, t.UpdatedAt})
}

type RegistrationDoc struct {
	Code          string    `json:"code"`
	PaymentStatus string    `json:"payment_status"`
	Amount        int       `json:"amount"`
	VerifiedBy    string    `json:"verified_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func BuildRegistrationDoc(reg models.Registration) ([]byte, error) {
	doc := RegistrationDoc{
		Code: reg.Code, PaymentStatus: reg.PaymentStatus, Amount: reg.Amount,
		CreatedAt: reg.CreatedAt, UpdatedAt: reg.UpdatedAt,
	}
	if reg.VerifiedBy != nil {
		doc.VerifiedBy = *reg.VerifiedBy
	}
	return json.Marshal(doc)
}
