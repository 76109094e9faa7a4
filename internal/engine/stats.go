package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"ptaplan/internal/repo"
)

// DashboardStats is the aggregate view served at /dashboard/stats.
type DashboardStats struct {
	TotalUsers              int             `json:"total_users"`
	TotalStructures         int             `json:"total_structures"`
	TotalDirections         int             `json:"total_directions"`
	TotalServices           int             `json:"total_services"`
	TotalDivisions          int             `json:"total_divisions"`
	TotalGeneralObjectives  int             `json:"total_general_objectives"`
	TotalSpecificObjectives int             `json:"total_specific_objectives"`
	TotalExpectedResults    int             `json:"total_expected_results"`
	TotalPCOPEntries        int             `json:"total_pcop_entries"`
	TotalActivities         int             `json:"total_activities"`
	TotalSuivis             int             `json:"total_suivis"`
	LateActivities          int             `json:"late_activities"`
	TotalAmount             decimal.Decimal `json:"total_amount"`
	AverageAdvancement      float64         `json:"average_advancement"`
	UsersByRole             map[string]int  `json:"users_by_role"`
	ActivitiesByStatus      map[string]int  `json:"activities_by_status"`
	ActivitiesByStructure   map[string]int  `json:"activities_by_structure"`
}

func (e Engine) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	counts, err := e.Repo.CountAll(ctx)
	if err != nil {
		return stats, err
	}
	stats.TotalUsers = counts.Users
	stats.TotalStructures = counts.Structures
	stats.TotalDirections = counts.Directions
	stats.TotalServices = counts.Services
	stats.TotalDivisions = counts.Divisions
	stats.TotalGeneralObjectives = counts.GeneralObjectives
	stats.TotalSpecificObjectives = counts.SpecificObjectives
	stats.TotalExpectedResults = counts.ExpectedResults
	stats.TotalPCOPEntries = counts.PCOPEntries
	stats.TotalActivities = counts.Activities
	stats.TotalSuivis = counts.Suivis

	if stats.UsersByRole, err = e.Repo.CountUsersByRole(ctx); err != nil {
		return stats, err
	}
	if stats.ActivitiesByStatus, err = e.Repo.CountActivitiesByStatus(ctx); err != nil {
		return stats, err
	}
	if stats.ActivitiesByStructure, err = e.Repo.CountActivitiesByStructure(ctx); err != nil {
		return stats, err
	}
	if stats.TotalAmount, err = e.Repo.TotalActivityAmount(ctx); err != nil {
		return stats, err
	}
	if stats.AverageAdvancement, err = e.Repo.AverageAdvancement(ctx); err != nil {
		return stats, err
	}

	// Lateness is derived, not stored, so count it off the full list.
	activities, err := e.Repo.ListActivities(ctx, repo.ActivityFilter{})
	if err != nil {
		return stats, err
	}
	now := e.now()
	for _, a := range activities {
		if a.IsLate(now) {
			stats.LateActivities++
		}
	}
	return stats, nil
}
