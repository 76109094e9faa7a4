package server

import (
	"time"

	"github.com/shopspring/decimal"

	"ptaplan/internal/domain"
	"ptaplan/internal/engine"
)

// Request payloads

type LoginRequest struct {
	Email    string `json:"email" format:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" format:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty" enum:"admin,superviseur,user"`
}

type UpdateUserRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty" enum:"admin,superviseur,user"`
}

// NodeRequest covers every hierarchy node: a code, a display name and an
// optional parent reference.
type NodeRequest struct {
	ParentID    string `json:"parent_id,omitempty"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ObjectiveRequest struct {
	ParentID    string `json:"parent_id,omitempty"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ExpectedResultRequest struct {
	SpecificObjectiveID string `json:"specific_objective_id"`
	Code                string `json:"code"`
	Description         string `json:"description"`
}

type PCOPEntryRequest struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	UnitCost string `json:"unit_cost,omitempty"`
}

// ActivityRequest carries decimals as strings so amounts survive without
// float rounding.
type ActivityRequest struct {
	GeneralObjectiveID  string `json:"general_objective_id,omitempty"`
	SpecificObjectiveID string `json:"specific_objective_id,omitempty"`
	ExpectedResultID    string `json:"expected_result_id,omitempty"`
	StructureID         string `json:"structure_id,omitempty"`
	DirectionID         string `json:"direction_id,omitempty"`
	ServiceID           string `json:"service_id,omitempty"`
	DivisionID          string `json:"division_id,omitempty"`
	PCOPID              string `json:"pcop_id,omitempty"`
	StartDate           string `json:"start_date,omitempty" format:"date"`
	EndDate             string `json:"end_date,omitempty" format:"date"`
	Description         string `json:"description"`
	SubActivity         string `json:"sub_activity,omitempty"`
	Products            string `json:"products,omitempty"`
	Targets             string `json:"targets,omitempty"`
	FundingSources      string `json:"funding_sources,omitempty"`
	Remark              string `json:"remark,omitempty"`
	UnitCost            string `json:"unit_cost,omitempty"`
	Quantity            string `json:"quantity,omitempty"`
	Amount              string `json:"amount,omitempty"`
	Status              string `json:"status,omitempty"`
}

type SuiviRequest struct {
	ActivityID      string `json:"activity_id"`
	ObservationDate string `json:"observation_date" format:"date"`
	Remark          string `json:"remark,omitempty"`
	Advancement     *int   `json:"advancement,omitempty" minimum:"0" maximum:"100"`
}

// Responses

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type PCOPResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Label     string `json:"label"`
	UnitCost  string `json:"unit_cost"`
	CreatedAt string `json:"created_at"`
}

func pcopResponse(p domain.PCOPEntry) PCOPResponse {
	return PCOPResponse{
		ID:        p.ID,
		Code:      p.Code,
		Label:     p.Label,
		UnitCost:  p.UnitCost.String(),
		CreatedAt: p.CreatedAt,
	}
}

func mapPCOP(in []domain.PCOPEntry) []PCOPResponse {
	out := make([]PCOPResponse, 0, len(in))
	for _, p := range in {
		out = append(out, pcopResponse(p))
	}
	return out
}

type ActivityResponse struct {
	ID                  string  `json:"id"`
	GeneralObjectiveID  *string `json:"general_objective_id,omitempty"`
	SpecificObjectiveID *string `json:"specific_objective_id,omitempty"`
	ExpectedResultID    *string `json:"expected_result_id,omitempty"`
	StructureID         *string `json:"structure_id,omitempty"`
	DirectionID         *string `json:"direction_id,omitempty"`
	ServiceID           *string `json:"service_id,omitempty"`
	DivisionID          *string `json:"division_id,omitempty"`
	PCOPID              *string `json:"pcop_id,omitempty"`
	StartDate           *string `json:"start_date,omitempty"`
	EndDate             *string `json:"end_date,omitempty"`
	Description         string  `json:"description"`
	SubActivity         string  `json:"sub_activity,omitempty"`
	Products            string  `json:"products,omitempty"`
	Targets             string  `json:"targets,omitempty"`
	FundingSources      string  `json:"funding_sources,omitempty"`
	Remark              string  `json:"remark,omitempty"`
	UnitCost            *string `json:"unit_cost,omitempty"`
	Quantity            *string `json:"quantity,omitempty"`
	Amount              *string `json:"amount,omitempty"`
	Status              string  `json:"status"`
	IsLate              bool    `json:"is_late"`
	DaysRemaining       *int    `json:"days_remaining,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

type SuiviResponse struct {
	ID                  string `json:"id"`
	ActivityID          string `json:"activity_id"`
	ObservationDate     string `json:"observation_date"`
	Remark              string `json:"remark,omitempty"`
	Advancement         *int   `json:"advancement,omitempty"`
	LateNotification    bool   `json:"late_notification"`
	NotificationMessage string `json:"notification_message,omitempty"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

type DashboardResponse struct {
	TotalUsers              int            `json:"total_users"`
	TotalStructures         int            `json:"total_structures"`
	TotalDirections         int            `json:"total_directions"`
	TotalServices           int            `json:"total_services"`
	TotalDivisions          int            `json:"total_divisions"`
	TotalGeneralObjectives  int            `json:"total_general_objectives"`
	TotalSpecificObjectives int            `json:"total_specific_objectives"`
	TotalExpectedResults    int            `json:"total_expected_results"`
	TotalPCOPEntries        int            `json:"total_pcop_entries"`
	TotalActivities         int            `json:"total_activities"`
	TotalSuivis             int            `json:"total_suivis"`
	LateActivities          int            `json:"late_activities"`
	TotalAmount             string         `json:"total_amount"`
	AverageAdvancement      float64        `json:"average_advancement"`
	UsersByRole             map[string]int `json:"users_by_role"`
	ActivitiesByStatus      map[string]int `json:"activities_by_status"`
	ActivitiesByStructure   map[string]int `json:"activities_by_structure"`
}

// Mapping

func userResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func mapUsers(in []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(in))
	for _, u := range in {
		out = append(out, userResponse(u))
	}
	return out
}

func activityResponse(a domain.Activity, now time.Time) ActivityResponse {
	return ActivityResponse{
		ID:                  a.ID,
		GeneralObjectiveID:  a.GeneralObjectiveID,
		SpecificObjectiveID: a.SpecificObjectiveID,
		ExpectedResultID:    a.ExpectedResultID,
		StructureID:         a.StructureID,
		DirectionID:         a.DirectionID,
		ServiceID:           a.ServiceID,
		DivisionID:          a.DivisionID,
		PCOPID:              a.PCOPID,
		StartDate:           a.StartDate,
		EndDate:             a.EndDate,
		Description:         a.Description,
		SubActivity:         a.SubActivity,
		Products:            a.Products,
		Targets:             a.Targets,
		FundingSources:      a.FundingSources,
		Remark:              a.Remark,
		UnitCost:            decimalString(a.UnitCost),
		Quantity:            decimalString(a.Quantity),
		Amount:              decimalString(a.Amount),
		Status:              a.Status,
		IsLate:              a.IsLate(now),
		DaysRemaining:       a.DaysRemaining(now),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func mapActivities(in []domain.Activity, now time.Time) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(in))
	for _, a := range in {
		out = append(out, activityResponse(a, now))
	}
	return out
}

func suiviResponse(s domain.Suivi) SuiviResponse {
	return SuiviResponse{
		ID:                  s.ID,
		ActivityID:          s.ActivityID,
		ObservationDate:     s.ObservationDate,
		Remark:              s.Remark,
		Advancement:         s.Advancement,
		LateNotification:    s.LateNotification,
		NotificationMessage: s.NotificationMessage,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func mapSuivis(in []domain.Suivi) []SuiviResponse {
	out := make([]SuiviResponse, 0, len(in))
	for _, s := range in {
		out = append(out, suiviResponse(s))
	}
	return out
}

func dashboardResponse(s engine.DashboardStats) DashboardResponse {
	return DashboardResponse{
		TotalUsers:              s.TotalUsers,
		TotalStructures:         s.TotalStructures,
		TotalDirections:         s.TotalDirections,
		TotalServices:           s.TotalServices,
		TotalDivisions:          s.TotalDivisions,
		TotalGeneralObjectives:  s.TotalGeneralObjectives,
		TotalSpecificObjectives: s.TotalSpecificObjectives,
		TotalExpectedResults:    s.TotalExpectedResults,
		TotalPCOPEntries:        s.TotalPCOPEntries,
		TotalActivities:         s.TotalActivities,
		TotalSuivis:             s.TotalSuivis,
		LateActivities:          s.LateActivities,
		TotalAmount:             s.TotalAmount.String(),
		AverageAdvancement:      s.AverageAdvancement,
		UsersByRole:             s.UsersByRole,
		ActivitiesByStatus:      s.ActivitiesByStatus,
		ActivitiesByStructure:   s.ActivitiesByStructure,
	}
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDecimal(field, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, engine.ValidationError{Field: field, Reason: "must be a decimal number"}
	}
	return &d, nil
}
