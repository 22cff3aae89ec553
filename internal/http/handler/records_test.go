package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	serviceMocks "github.com/atqan-dev/atqan-wathq-services-sub001/internal/service/mocks"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

func newRecordsApp(perms ...string) (*serviceMocks.MockRecordService[model.Employee], *fiber.App) {
	svc := new(serviceMocks.MockRecordService[model.Employee])
	app := newTestApp()
	g := app.Group("/employees", asActor(tenant.Actor{
		UserID:      "u-1",
		TenantID:    testTenantID,
		Kind:        tenant.KindUser,
		Permissions: perms,
	}))
	mountRecords(g, model.PermEmployeesRead, model.PermEmployeesWrite, svc)
	return svc, app
}

func TestListRecords(t *testing.T) {
	svc, app := newRecordsApp(model.PermEmployeesRead)

	t.Run("success", func(t *testing.T) {
		expected := &service.ListResult[model.Employee]{
			Items: []model.Employee{{Base: model.Base{ID: uuid.NewString()}, NationalID: "1012345678", FullName: "Sara"}},
			Total: 1,
		}
		svc.On("List", mock.Anything, 20, 40, "101").Return(expected, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/employees?limit=20&offset=40&q=101", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ListResult[model.Employee]
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/employees?limit=abc", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/employees?offset=-x", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc.On("List", mock.Anything, 10, 0, "").Return(nil, errors.New("db down")).Once()
		resp := doJSON(t, app, http.MethodGet, "/employees", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	svc.AssertExpectations(t)
}

func TestGetRecord(t *testing.T) {
	svc, app := newRecordsApp(model.PermEmployeesRead)

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		svc.On("Get", mock.Anything, id).Return(&model.Employee{Base: model.Base{ID: id}}, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/employees/"+id, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Employee
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		svc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		resp := doJSON(t, app, http.MethodGet, "/employees/"+id, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/employees/invalid-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
	svc.AssertExpectations(t)
}

func TestCreateRecord(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, app := newRecordsApp(model.PermEmployeesWrite)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Employee) bool {
			return e.NationalID == "1012345678" && e.FullName == "Sara"
		})).Return(&model.Employee{Base: model.Base{ID: "new"}, NationalID: "1012345678"}, nil).Once()

		resp := doJSON(t, app, http.MethodPost, "/employees", map[string]any{"national_id": "1012345678", "full_name": "Sara"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		_, app := newRecordsApp(model.PermEmployeesWrite)
		resp := doJSON(t, app, http.MethodPost, "/employees", map[string]any{"national_id": "12", "full_name": "Sara"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		res := decodeError(t, resp)
		require.Len(t, res.Error.Fields, 1)
		assert.Equal(t, "national_id", res.Error.Fields[0].Field)
	})

	t.Run("read permission cannot write", func(t *testing.T) {
		_, app := newRecordsApp(model.PermEmployeesRead)
		resp := doJSON(t, app, http.MethodPost, "/employees", map[string]any{"national_id": "1012345678", "full_name": "Sara"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("duplicate natural key", func(t *testing.T) {
		svc, app := newRecordsApp(model.PermEmployeesWrite)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, uniqueViolation("employees")).Once()

		resp := doJSON(t, app, http.MethodPost, "/employees", map[string]any{"national_id": "1012345678", "full_name": "Sara"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "EMPLOYEE_ALREADY_EXISTS", decodeError(t, resp).Error.Code)
	})
}

func TestUpdateAndDeleteRecord(t *testing.T) {
	svc, app := newRecordsApp(model.PermEmployeesWrite)
	id := uuid.NewString()

	svc.On("Update", mock.Anything, id, mock.AnythingOfType("*model.Employee")).
		Return(&model.Employee{Base: model.Base{ID: id}}, nil).Once()
	resp := doJSON(t, app, http.MethodPut, "/employees/"+id, map[string]any{"national_id": "1012345678", "full_name": "Sara A."})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	svc.On("Delete", mock.Anything, id).Return(nil).Once()
	resp = doJSON(t, app, http.MethodDelete, "/employees/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	missing := uuid.NewString()
	svc.On("Delete", mock.Anything, missing).Return(service.ErrNotFound).Once()
	resp = doJSON(t, app, http.MethodDelete, "/employees/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	svc.AssertExpectations(t)
}
