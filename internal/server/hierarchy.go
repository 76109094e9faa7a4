package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"ptaplan/internal/domain"
	"ptaplan/internal/engine"
)

// The four organizational levels share the same shape, so their handlers
// follow an identical create/list/get/update/delete layout.

func registerStructures(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-structure",
		Method:        http.MethodPost,
		Path:          "/structures",
		Summary:       "Create structure",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body NodeRequest `json:"body"`
	}) (*struct {
		Body domain.Structure `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "code is required", nil)
		}
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		s := domain.Structure{
			ID:          uuid.NewString(),
			Code:        input.Body.Code,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			CreatedAt:   e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertStructure(ctx, s); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Structure `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-structures",
		Method:      http.MethodGet,
		Path:        "/structures",
		Summary:     "List structures",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Structure `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListStructures(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Structure `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-structure",
		Method:      http.MethodGet,
		Path:        "/structures/{id}",
		Summary:     "Get structure",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Structure `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		s, err := e.Repo.GetStructure(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Structure `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-structure",
		Method:      http.MethodPut,
		Path:        "/structures/{id}",
		Summary:     "Update structure",
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id"`
		Body NodeRequest `json:"body"`
	}) (*struct {
		Body domain.Structure `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		s, err := e.Repo.GetStructure(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code != "" {
			s.Code = input.Body.Code
		}
		if input.Body.Name != "" {
			s.Name = input.Body.Name
		}
		s.Description = input.Body.Description
		if err := e.Repo.UpdateStructure(ctx, s); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Structure `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-structure",
		Method:        http.MethodDelete,
		Path:          "/structures/{id}",
		Summary:       "Delete structure",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteStructure(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerDirections(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-direction",
		Method:        http.MethodPost,
		Path:          "/directions",
		Summary:       "Create direction",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body NodeRequest `json:"body"`
	}) (*struct {
		Body domain.Direction `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "code is required", nil)
		}
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		d := domain.Direction{
			ID:          uuid.NewString(),
			StructureID: optRef(input.Body.ParentID),
			Code:        input.Body.Code,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			CreatedAt:   e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertDirection(ctx, d); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Direction `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-directions",
		Method:      http.MethodGet,
		Path:        "/directions",
		Summary:     "List directions",
	}, func(ctx context.Context, input *struct {
		StructureID string `query:"structure_id"`
	}) (*struct {
		Body []domain.Direction `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListDirections(ctx, input.StructureID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Direction `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-direction",
		Method:      http.MethodGet,
		Path:        "/directions/{id}",
		Summary:     "Get direction",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Direction `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		d, err := e.Repo.GetDirection(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Direction `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-direction",
		Method:      http.MethodPut,
		Path:        "/directions/{id}",
		Summary:     "Update direction",
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id"`
		Body NodeRequest `json:"body"`
	}) (*struct {
		Body domain.Direction `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		d, err := e.Repo.GetDirection(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.ParentID != "" {
			d.StructureID = optRef(input.Body.ParentID)
		}
		if input.Body.Code != "" {
			d.Code = input.Body.Code
		}
		if input.Body.Name != "" {
			d.Name = input.Body.Name
		}
		d.Description = input.Body.Description
		if err := e.Repo.UpdateDirection(ctx, d); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Direction `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-direction",
		Method:        http.MethodDelete,
		Path:          "/directions/{id}",
		Summary:       "Delete direction",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteDirection(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerServices(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-service",
		Method:        http.MethodPost,
		Path:          "/services",
		Summary:       "Create service",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body NodeRequest `json:"body"`
	}) (*struct {
		Body domain.Service `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "code is required", nil)
		}
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		s := domain.Service{
			ID:          uuid.NewString(),
			DirectionID: optRef(input.Body.ParentID),
			Code:        input.Body.Code,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			CreatedAt:   e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertService(ctx, s); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Service `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-services",
		Method:      http.MethodGet,
		Path:        "/services",
		Summary:     "List services",
	}, func(ctx context.Context, input *struct {
		DirectionID string `query:"direction_id"`
	}) (*struct {
		Body []domain.Service `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListServices(ctx, input.DirectionID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Service `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-service",
		Method:      http.MethodGet,
		Path:        "/services/{id}",
		Summary:     "Get service",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Service `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		s, err := e.Repo.GetService(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Service `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-service",
		Method:      http.MethodPut,
		Path:        "/services/{id}",
		Summary:     "Update service",
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id"`
		Body NodeRequest `json:"body"`
	}) (*struct {
		Body domain.Service `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		s, err := e.Repo.GetService(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.ParentID != "" {
			s.DirectionID = optRef(input.Body.ParentID)
		}
		if input.Body.Code != "" {
			s.Code = input.Body.Code
		}
		if input.Body.Name != "" {
			s.Name = input.Body.Name
		}
		s.Description = input.Body.Description
		if err := e.Repo.UpdateService(ctx, s); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Service `json:"body"`
		}{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-service",
		Method:        http.MethodDelete,
		Path:          "/services/{id}",
		Summary:       "Delete service",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteService(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerDivisions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-division",
		Method:        http.MethodPost,
		Path:          "/divisions",
		Summary:       "Create division",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body NodeRequest `json:"body"`
	}) (*struct {
		Body domain.Division `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		if input.Body.Code == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "code is required", nil)
		}
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		d := domain.Division{
			ID:          uuid.NewString(),
			ServiceID:   optRef(input.Body.ParentID),
			Code:        input.Body.Code,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			CreatedAt:   e.Now().UTC().Format(time.RFC3339),
		}
		if err := e.Repo.InsertDivision(ctx, d); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Division `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-divisions",
		Method:      http.MethodGet,
		Path:        "/divisions",
		Summary:     "List divisions",
	}, func(ctx context.Context, input *struct {
		ServiceID string `query:"service_id"`
	}) (*struct {
		Body []domain.Division `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		items, err := e.Repo.ListDivisions(ctx, input.ServiceID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Division `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-division",
		Method:      http.MethodGet,
		Path:        "/divisions/{id}",
		Summary:     "Get division",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.Division `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		d, err := e.Repo.GetDivision(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Division `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-division",
		Method:      http.MethodPut,
		Path:        "/divisions/{id}",
		Summary:     "Update division",
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id"`
		Body NodeRequest `json:"body"`
	}) (*struct {
		Body domain.Division `json:"body"`
	}, error) {
		if err := requireWrite(ctx); err != nil {
			return nil, handleError(err)
		}
		d, err := e.Repo.GetDivision(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.ParentID != "" {
			d.ServiceID = optRef(input.Body.ParentID)
		}
		if input.Body.Code != "" {
			d.Code = input.Body.Code
		}
		if input.Body.Name != "" {
			d.Name = input.Body.Name
		}
		d.Description = input.Body.Description
		if err := e.Repo.UpdateDivision(ctx, d); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Division `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-division",
		Method:        http.MethodDelete,
		Path:          "/divisions/{id}",
		Summary:       "Delete division",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireDelete(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := e.Repo.DeleteDivision(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func optRef(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
