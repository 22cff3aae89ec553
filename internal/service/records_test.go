package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	repoMocks "github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository/mocks"
)

func employeeBase(e *model.Employee) *model.Base { return &e.Base }

func TestRecordService_CreateClearsIdentity(t *testing.T) {
	ctx := context.Background()
	m := new(repoMocks.MockRecordRepository[model.Employee])
	svc := NewRecordService[model.Employee](m, employeeBase)

	m.On("Create", ctx, mock.MatchedBy(func(e *model.Employee) bool {
		return e.ID == "" && e.TenantID == "" && e.CreatedBy == "" && e.NationalID == "1000000001"
	})).Return(&model.Employee{Base: model.Base{ID: "e-1"}, NationalID: "1000000001"}, nil)

	in := &model.Employee{NationalID: "1000000001", FullName: "Sara"}
	in.ID, in.TenantID, in.CreatedBy = "spoofed", "other-tenant", "mallory"
	got, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "e-1", got.ID)
	m.AssertExpectations(t)
}

func TestRecordService_CreateDropsSnapshot(t *testing.T) {
	ctx := context.Background()
	m := new(repoMocks.MockRecordRepository[model.Employee])
	svc := NewRecordService[model.Employee](m, employeeBase)

	m.On("Create", ctx, mock.MatchedBy(func(e *model.Employee) bool {
		return e.Payload == nil && e.FetchedAt == nil
	})).Return(&model.Employee{Base: model.Base{ID: "e-1"}}, nil)

	fetched := time.Now()
	_, err := svc.Create(ctx, &model.Employee{
		NationalID: "1000000001",
		Payload:    json.RawMessage(`{"forged":true}`),
		FetchedAt:  &fetched,
	})
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestRecordService_Update(t *testing.T) {
	ctx := context.Background()
	fetched := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	stored := &model.Employee{
		Base:       model.Base{ID: "e-1"},
		NationalID: "1000000001",
		Payload:    json.RawMessage(`{"source":"wathq"}`),
		FetchedAt:  &fetched,
	}

	tests := []struct {
		name       string
		id         string
		in         *model.Employee
		setupMocks func(m *repoMocks.MockRecordRepository[model.Employee])
		wantErr    error
	}{
		{
			name: "uses the path id and keeps the stored snapshot",
			id:   "e-1",
			in:   &model.Employee{Base: model.Base{ID: "e-2", TenantID: "x"}, FullName: "Sara", Payload: json.RawMessage(`{}`)},
			setupMocks: func(m *repoMocks.MockRecordRepository[model.Employee]) {
				m.On("FindByID", ctx, "e-1").Return(stored, nil)
				m.On("Update", ctx, mock.MatchedBy(func(e *model.Employee) bool {
					return e.ID == "e-1" && e.TenantID == "" && e.FullName == "Sara" &&
						string(e.Payload) == `{"source":"wathq"}` && e.FetchedAt != nil && e.FetchedAt.Equal(fetched)
				})).Return(&model.Employee{Base: model.Base{ID: "e-1"}}, nil)
			},
		},
		{
			name: "missing",
			id:   "e-9",
			in:   &model.Employee{},
			setupMocks: func(m *repoMocks.MockRecordRepository[model.Employee]) {
				m.On("FindByID", ctx, "e-9").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "missing id",
			in:      &model.Employee{},
			wantErr: ErrIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(repoMocks.MockRecordRepository[model.Employee])
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			_, err := NewRecordService[model.Employee](m, employeeBase).Update(ctx, tt.id, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			m.AssertExpectations(t)
		})
	}

	t.Run("records without a snapshot skip the lookup", func(t *testing.T) {
		m := new(repoMocks.MockRecordRepository[model.Contract])
		m.On("Update", ctx, mock.MatchedBy(func(c *model.Contract) bool { return c.ID == "c-1" })).
			Return(&model.Contract{Base: model.Base{ID: "c-1"}}, nil)

		svc := NewRecordService[model.Contract](m, func(c *model.Contract) *model.Base { return &c.Base })
		_, err := svc.Update(ctx, "c-1", &model.Contract{ContractNumber: "C-1"})
		require.NoError(t, err)
		m.AssertExpectations(t)
	})
}

func TestRecordService_GetListDelete(t *testing.T) {
	ctx := context.Background()
	m := new(repoMocks.MockRecordRepository[model.Employee])
	svc := NewRecordService[model.Employee](m, employeeBase)

	m.On("FindByID", ctx, "e-9").Return(nil, sql.ErrNoRows)
	_, err := svc.Get(ctx, "e-9")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)

	m.On("List", ctx, repository.PageQuery{Limit: 20, Offset: 40, Search: "sara"}).
		Return(&repository.PageResult[model.Employee]{Items: []model.Employee{{FullName: "Sara"}}, Total: 41}, nil)
	res, err := svc.List(ctx, 20, 40, "sara")
	require.NoError(t, err)
	assert.Equal(t, 41, res.Total)
	assert.Len(t, res.Items, 1)

	m.On("Delete", ctx, "e-1").Return(nil)
	assert.NoError(t, svc.Delete(ctx, "e-1"))
	m.AssertExpectations(t)
}

func TestRecords_Find(t *testing.T) {
	ctx := context.Background()
	contracts := new(repoMocks.MockRecordRepository[model.Contract])
	recs := Records{Contracts: contracts}

	contracts.On("FindByID", ctx, "c-1").Return(&model.Contract{ContractNumber: "C-1"}, nil)
	contracts.On("FindByID", ctx, "c-2").Return(nil, sql.ErrNoRows)

	got, err := recs.Find(ctx, RecordContract, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "C-1", got.(*model.Contract).ContractNumber)

	_, err = recs.Find(ctx, RecordContract, "c-2")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = recs.Find(ctx, "invoice", "c-1")
	assert.ErrorIs(t, err, ErrUnknownRecordType)
}
