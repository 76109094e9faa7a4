package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ptaplan/internal/domain"
	"ptaplan/internal/engine"
)

func registerGeneralObjectives(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-general-objective",
		Method:        http.MethodPost,
		Path:          "/general-objectives",
		Summary:       "Create general objective",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body ObjectiveRequest `json:"body"`
	}) (*struct {
		Body domain.GeneralObjective `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "code is required", nil)
		}
		if input.Body.Title == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "title is required", nil)
		}
		o := domain.GeneralObjective{
			ID:          uuid.NewString(),
			Code:        input.Body.Code,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			CreatedAt:   e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertGeneralObjective(ctx, o); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.GeneralObjective `json:"body"`
		}{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-general-objectives",
		Method:      http.MethodGet,
		Path:        "/general-objectives",
		Summary:     "List general objectives",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.GeneralObjective `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListGeneralObjectives(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.GeneralObjective `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-general-objective",
		Method:      http.MethodGet,
		Path:        "/general-objectives/{id}",
		Summary:     "Get general objective",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.GeneralObjective `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		o, err := e.Repo.GetGeneralObjective(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.GeneralObjective `json:"body"`
		}{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-general-objective",
		Method:      http.MethodPut,
		Path:        "/general-objectives/{id}",
		Summary:     "Update general objective",
	}, func(ctx context.Context, input *struct {
		ID   string           `path:"id"`
		Body ObjectiveRequest `json:"body"`
	}) (*struct {
		Body domain.GeneralObjective `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		o, err := e.Repo.GetGeneralObjective(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code != "" {
			o.Code = input.Body.Code
		}
		if input.Body.Title != "" {
			o.Title = input.Body.Title
		}
		o.Description = input.Body.Description
		if err := e.Repo.UpdateGeneralObjective(ctx, o); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.GeneralObjective `json:"body"`
		}{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-general-objective",
		Method:        http.MethodDelete,
		Path:          "/general-objectives/{id}",
		Summary:       "Delete general objective",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteGeneralObjective(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerSpecificObjectives(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-specific-objective",
		Method:        http.MethodPost,
		Path:          "/specific-objectives",
		Summary:       "Create specific objective",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body ObjectiveRequest `json:"body"`
	}) (*struct {
		Body domain.SpecificObjective `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.ParentID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "parent_id is required", nil)
		}
		if input.Body.Code == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "code is required", nil)
		}
		if input.Body.Title == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "title is required", nil)
		}
		if _, err := e.Repo.GetGeneralObjective(ctx, input.Body.ParentID); err != nil {
			return nil, handleError(err)
		}
		o := domain.SpecificObjective{
			ID:                 uuid.NewString(),
			GeneralObjectiveID: input.Body.ParentID,
			Code:               input.Body.Code,
			Title:              input.Body.Title,
			Description:        input.Body.Description,
			CreatedAt:          e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertSpecificObjective(ctx, o); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.SpecificObjective `json:"body"`
		}{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-specific-objectives",
		Method:      http.MethodGet,
		Path:        "/specific-objectives",
		Summary:     "List specific objectives",
	}, func(ctx context.Context, input *struct {
		GeneralObjectiveID string `query:"general_objective_id"`
	}) (*struct {
		Body []domain.SpecificObjective `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListSpecificObjectives(ctx, input.GeneralObjectiveID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.SpecificObjective `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-specific-objective",
		Method:      http.MethodPut,
		Path:        "/specific-objectives/{id}",
		Summary:     "Update specific objective",
	}, func(ctx context.Context, input *struct {
		ID   string           `path:"id"`
		Body ObjectiveRequest `json:"body"`
	}) (*struct {
		Body domain.SpecificObjective `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		o, err := e.Repo.GetSpecificObjective(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.ParentID != "" {
			o.GeneralObjectiveID = input.Body.ParentID
		}
		if input.Body.Code != "" {
			o.Code = input.Body.Code
		}
		if input.Body.Title != "" {
			o.Title = input.Body.Title
		}
		o.Description = input.Body.Description
		if err := e.Repo.UpdateSpecificObjective(ctx, o); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.SpecificObjective `json:"body"`
		}{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-specific-objective",
		Method:        http.MethodDelete,
		Path:          "/specific-objectives/{id}",
		Summary:       "Delete specific objective",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteSpecificObjective(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerExpectedResults(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-expected-result",
		Method:        http.MethodPost,
		Path:          "/expected-results",
		Summary:       "Create expected result",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body ExpectedResultRequest `json:"body"`
	}) (*struct {
		Body domain.ExpectedResult `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.SpecificObjectiveID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "specific_objective_id is required", nil)
		}
		if input.Body.Code == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "code is required", nil)
		}
		if input.Body.Description == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "description is required", nil)
		}
		if _, err := e.Repo.GetSpecificObjective(ctx, input.Body.SpecificObjectiveID); err != nil {
			return nil, handleError(err)
		}
		r := domain.ExpectedResult{
			ID:                  uuid.NewString(),
			SpecificObjectiveID: input.Body.SpecificObjectiveID,
			Code:                input.Body.Code,
			Description:         input.Body.Description,
			CreatedAt:           e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertExpectedResult(ctx, r); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ExpectedResult `json:"body"`
		}{Body: r}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-expected-results",
		Method:      http.MethodGet,
		Path:        "/expected-results",
		Summary:     "List expected results",
	}, func(ctx context.Context, input *struct {
		SpecificObjectiveID string `query:"specific_objective_id"`
	}) (*struct {
		Body []domain.ExpectedResult `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListExpectedResults(ctx, input.SpecificObjectiveID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.ExpectedResult `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-expected-result",
		Method:      http.MethodPut,
		Path:        "/expected-results/{id}",
		Summary:     "Update expected result",
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body ExpectedResultRequest `json:"body"`
	}) (*struct {
		Body domain.ExpectedResult `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		r, err := e.Repo.GetExpectedResult(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.SpecificObjectiveID != "" {
			r.SpecificObjectiveID = input.Body.SpecificObjectiveID
		}
		if input.Body.Code != "" {
			r.Code = input.Body.Code
		}
		if input.Body.Description != "" {
			r.Description = input.Body.Description
		}
		if err := e.Repo.UpdateExpectedResult(ctx, r); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ExpectedResult `json:"body"`
		}{Body: r}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-expected-result",
		Method:        http.MethodDelete,
		Path:          "/expected-results/{id}",
		Summary:       "Delete expected result",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteExpectedResult(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerPCOP(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-pcop-entry",
		Method:        http.MethodPost,
		Path:          "/pcop-entries",
		Summary:       "Create PCOP entry",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body PCOPEntryRequest `json:"body"`
	}) (*struct {
		Body PCOPResponse `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "code is required", nil)
		}
		if input.Body.Label == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "label is required", nil)
		}
		cost := decimal.Zero
		if input.Body.UnitCost != "" {
			parsed, err := parseDecimal("unit_cost", input.Body.UnitCost)
			if err != nil {
				return nil, handleError(err)
			}
			cost = *parsed
		}
		p := domain.PCOPEntry{
			ID:        uuid.NewString(),
			Code:      input.Body.Code,
			Label:     input.Body.Label,
			UnitCost:  cost,
			CreatedAt: e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertPCOPEntry(ctx, p); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body PCOPResponse `json:"body"`
		}{Body: pcopResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-pcop-entries",
		Method:      http.MethodGet,
		Path:        "/pcop-entries",
		Summary:     "List PCOP entries",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []PCOPResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListPCOPEntries(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []PCOPResponse `json:"body"`
		}{Body: mapPCOP(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-pcop-entry",
		Method:      http.MethodPut,
		Path:        "/pcop-entries/{id}",
		Summary:     "Update PCOP entry",
	}, func(ctx context.Context, input *struct {
		ID   string           `path:"id"`
		Body PCOPEntryRequest `json:"body"`
	}) (*struct {
		Body PCOPResponse `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		p, err := e.Repo.GetPCOPEntry(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code != "" {
			p.Code = input.Body.Code
		}
		if input.Body.Label != "" {
			p.Label = input.Body.Label
		}
		if input.Body.UnitCost != "" {
			parsed, err := parseDecimal("unit_cost", input.Body.UnitCost)
			if err != nil {
				return nil, handleError(err)
			}
			p.UnitCost = *parsed
		}
		if err := e.Repo.UpdatePCOPEntry(ctx, p); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body PCOPResponse `json:"body"`
		}{Body: pcopResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-pcop-entry",
		Method:        http.MethodDelete,
		Path:          "/pcop-entries/{id}",
		Summary:       "Delete PCOP entry",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeletePCOPEntry(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
