package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"ptaplan/internal/domain"
	"ptaplan/internal/engine"
	"ptaplan/internal/repo"
)

func registerActivities(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-activity",
		Method:        http.MethodPost,
		Path:          "/activities",
		Summary:       "Create activity",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body ActivityRequest `json:"body"`
	}) (*struct {
		Body ActivityResponse `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		opts, err := activityOptions(input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		a, err := e.CreateActivity(ctx, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActivityResponse `json:"body"`
		}{Body: activityResponse(a, e.Now())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-activities",
		Method:      http.MethodGet,
		Path:        "/activities",
		Summary:     "List activities",
	}, func(ctx context.Context, input *struct {
		StructureID string `query:"structure_id"`
		DirectionID string `query:"direction_id"`
		ServiceID   string `query:"service_id"`
		DivisionID  string `query:"division_id"`
		Status      string `query:"status"`
		Late        bool   `query:"late"`
	}) (*struct {
		Body []ActivityResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListActivities(ctx, repo.ActivityFilter{
			StructureID: input.StructureID,
			DirectionID: input.DirectionID,
			ServiceID:   input.ServiceID,
			DivisionID:  input.DivisionID,
			Status:      input.Status,
		})
		if err != nil {
			return nil, handleError(err)
		}
		now := e.Now()
		if input.Late {
			late := items[:0]
			for _, a := range items {
				if a.IsLate(now) {
					late = append(late, a)
				}
			}
			items = late
		}
		return &struct {
			Body []ActivityResponse `json:"body"`
		}{Body: mapActivities(items, now)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-activity",
		Method:      http.MethodGet,
		Path:        "/activities/{id}",
		Summary:     "Get activity",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body ActivityResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		a, err := e.Repo.GetActivity(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActivityResponse `json:"body"`
		}{Body: activityResponse(a, e.Now())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-activity",
		Method:      http.MethodPut,
		Path:        "/activities/{id}",
		Summary:     "Update activity",
	}, func(ctx context.Context, input *struct {
		ID   string          `path:"id"`
		Body ActivityRequest `json:"body"`
	}) (*struct {
		Body ActivityResponse `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		opts, err := activityOptions(input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		a := domain.Activity{
			ID:                  input.ID,
			GeneralObjectiveID:  optRef(opts.GeneralObjectiveID),
			SpecificObjectiveID: optRef(opts.SpecificObjectiveID),
			ExpectedResultID:    optRef(opts.ExpectedResultID),
			StructureID:         optRef(opts.StructureID),
			DirectionID:         optRef(opts.DirectionID),
			ServiceID:           optRef(opts.ServiceID),
			DivisionID:          optRef(opts.DivisionID),
			PCOPID:              optRef(opts.PCOPID),
			StartDate:           optRef(opts.StartDate),
			EndDate:             optRef(opts.EndDate),
			Description:         opts.Description,
			SubActivity:         opts.SubActivity,
			Products:            opts.Products,
			Targets:             opts.Targets,
			FundingSources:      opts.FundingSources,
			Remark:              opts.Remark,
			UnitCost:            opts.UnitCost,
			Quantity:            opts.Quantity,
			Amount:              opts.Amount,
			Status:              opts.Status,
		}
		updated, err := e.UpdateActivity(ctx, a)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActivityResponse `json:"body"`
		}{Body: activityResponse(updated, e.Now())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-activity",
		Method:        http.MethodDelete,
		Path:          "/activities/{id}",
		Summary:       "Delete activity",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.DeleteActivity(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func activityOptions(body ActivityRequest) (engine.ActivityCreateOptions, error) {
	unitCost, err := parseDecimal("unit_cost", body.UnitCost)
	if err != nil {
		return engine.ActivityCreateOptions{}, err
	}
	quantity, err := parseDecimal("quantity", body.Quantity)
	if err != nil {
		return engine.ActivityCreateOptions{}, err
	}
	amount, err := parseDecimal("amount", body.Amount)
	if err != nil {
		return engine.ActivityCreateOptions{}, err
	}
	return engine.ActivityCreateOptions{
		GeneralObjectiveID:  body.GeneralObjectiveID,
		SpecificObjectiveID: body.SpecificObjectiveID,
		ExpectedResultID:    body.ExpectedResultID,
		StructureID:         body.StructureID,
		DirectionID:         body.DirectionID,
		ServiceID:           body.ServiceID,
		DivisionID:          body.DivisionID,
		PCOPID:              body.PCOPID,
		StartDate:           body.StartDate,
		EndDate:             body.EndDate,
		Description:         body.Description,
		SubActivity:         body.SubActivity,
		Products:            body.Products,
		Targets:             body.Targets,
		FundingSources:      body.FundingSources,
		Remark:              body.Remark,
		UnitCost:            unitCost,
		Quantity:            quantity,
		Amount:              amount,
		Status:              body.Status,
	}, nil
}

func registerSuivis(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-suivi",
		Method:        http.MethodPost,
		Path:          "/suivis",
		Summary:       "Record progress",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body SuiviRequest `json:"body"`
	}) (*struct {
		Body SuiviResponse `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.ActivityID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "activity_id is required", nil)
		}
		s, err := e.RecordProgress(ctx, engine.SuiviOptions{
			ActivityID:      input.Body.ActivityID,
			ObservationDate: input.Body.ObservationDate,
			Remark:          input.Body.Remark,
			Advancement:     input.Body.Advancement,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SuiviResponse `json:"body"`
		}{Body: suiviResponse(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-suivis",
		Method:      http.MethodGet,
		Path:        "/suivis",
		Summary:     "List progress records",
	}, func(ctx context.Context, input *struct {
		ActivityID string `query:"activity_id"`
		From       string `query:"from"`
		To         string `query:"to"`
	}) (*struct {
		Body []SuiviResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListSuivis(ctx, repo.SuiviFilter{
			ActivityID: input.ActivityID,
			From:       input.From,
			To:         input.To,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []SuiviResponse `json:"body"`
		}{Body: mapSuivis(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-suivi",
		Method:      http.MethodGet,
		Path:        "/suivis/{id}",
		Summary:     "Get progress record",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body SuiviResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		s, err := e.Repo.GetSuivi(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SuiviResponse `json:"body"`
		}{Body: suiviResponse(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-suivi",
		Method:      http.MethodPut,
		Path:        "/suivis/{id}",
		Summary:     "Update progress record",
	}, func(ctx context.Context, input *struct {
		ID   string       `path:"id"`
		Body SuiviRequest `json:"body"`
	}) (*struct {
		Body SuiviResponse `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		s, err := e.UpdateProgress(ctx, engine.SuiviOptions{
			ID:              input.ID,
			ObservationDate: input.Body.ObservationDate,
			Remark:          input.Body.Remark,
			Advancement:     input.Body.Advancement,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SuiviResponse `json:"body"`
		}{Body: suiviResponse(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-suivi",
		Method:        http.MethodDelete,
		Path:          "/suivis/{id}",
		Summary:       "Delete progress record",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteSuivi(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
