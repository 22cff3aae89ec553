package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/pdf"
	repoMocks "github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository/mocks"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/storage"
	storeMocks "github.com/atqan-dev/atqan-wathq-services-sub001/internal/storage/mocks"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

type stubRenderer struct {
	doc pdf.Document
	err error
}

func (r *stubRenderer) Render(doc pdf.Document) ([]byte, error) {
	r.doc = doc
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.3 stub"), nil
}

func reportCtx() context.Context {
	ctx := tenant.WithTenant(context.Background(), "tenant-1")
	return tenant.WithActor(ctx, tenant.Actor{UserID: "user-1", TenantID: "tenant-1", Kind: tenant.KindUser})
}

func TestReportService_Create(t *testing.T) {
	ctx := reportCtx()
	in := CreateReportInput{RecordType: RecordContract, RecordID: "c-1"}
	contract := &model.Contract{ContractNumber: "C-77", EmployeeID: "e-1", Value: decimal.RequireFromString("12000.5"), Currency: "SAR"}

	tests := []struct {
		name       string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockReportRepository, mContracts *repoMocks.MockRecordRepository[model.Contract])
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockReportRepository, mContracts *repoMocks.MockRecordRepository[model.Contract]) {
				mContracts.On("FindByID", ctx, "c-1").Return(contract, nil)
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "reports/tenant-1/") && strings.HasSuffix(key, ".pdf")
				}), mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
					return o.ContentType == "application/pdf" && o.Size == int64(len("%PDF-1.3 stub")) && o.Metadata["record-id"] == "c-1" &&
						strings.HasPrefix(o.ContentDisposition, "attachment; filename=contract-")
				})).Return(func(_ context.Context, key string, _ io.Reader, o storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key, Size: o.Size, ContentType: o.ContentType}
				}, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(r *model.Report) bool {
					return r.StoragePath == storage.ReportKey("tenant-1", r.ID) && r.CreatedBy == "user-1" &&
						strings.HasPrefix(r.Filename, "contract-")
				})).Return(&model.Report{ID: "gen-id"}, nil)
			},
		},
		{
			name: "record missing",
			setupMocks: func(_ *storeMocks.MockStorage, _ *repoMocks.MockReportRepository, mContracts *repoMocks.MockRecordRepository[model.Contract]) {
				mContracts.On("FindByID", ctx, "c-1").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "storage error",
			setupMocks: func(mStore *storeMocks.MockStorage, _ *repoMocks.MockReportRepository, mContracts *repoMocks.MockRecordRepository[model.Contract]) {
				mContracts.On("FindByID", ctx, "c-1").Return(contract, nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name: "db error rolls back the upload",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockReportRepository, mContracts *repoMocks.MockRecordRepository[model.Contract]) {
				mContracts.On("FindByID", ctx, "c-1").Return(contract, nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "reports/tenant-1/x.pdf"}, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "reports/tenant-1/")
				})).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name: "db error and rollback error",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockReportRepository, mContracts *repoMocks.MockRecordRepository[model.Contract]) {
				mContracts.On("FindByID", ctx, "c-1").Return(contract, nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "k"}, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
			},
			wantErrMsg: "db save failed: db fail; rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockReportRepository)
			mContracts := new(repoMocks.MockRecordRepository[model.Contract])
			tt.setupMocks(mStore, mRepo, mContracts)

			renderer := &stubRenderer{}
			svc := NewReportService(mStore, mRepo, Records{Contracts: mContracts}, renderer, time.Minute)
			got, err := svc.Create(ctx, in)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, "gen-id", got.ID)
				assert.Equal(t, "Contract C-77", renderer.doc.Title)
				assert.Equal(t, "user-1", renderer.doc.GeneratedBy)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
			mContracts.AssertExpectations(t)
		})
	}
}

func TestReportService_CreateWithoutTenant(t *testing.T) {
	svc := NewReportService(nil, nil, Records{}, &stubRenderer{}, time.Minute)
	_, err := svc.Create(context.Background(), CreateReportInput{RecordType: RecordContract, RecordID: "c-1"})
	assert.ErrorIs(t, err, tenant.ErrNoTenant)
}

func TestReportService_GetDownloadDelete(t *testing.T) {
	ctx := reportCtx()
	rep := &model.Report{ID: "r-1", StoragePath: "reports/tenant-1/r-1.pdf", Filename: "contract-20260101-120000.pdf"}

	t.Run("get presigns", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockReportRepository)
		mRepo.On("FindByID", ctx, "r-1").Return(rep, nil)
		mStore.On("PresignGet", ctx, rep.StoragePath, 5*time.Minute, rep.Filename).Return("https://minio/r-1?sig", nil)

		v, err := NewReportService(mStore, mRepo, Records{}, nil, 5*time.Minute).Get(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, "https://minio/r-1?sig", v.DownloadURL)
		assert.Equal(t, "r-1", v.ID)
	})

	t.Run("download streams", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockReportRepository)
		mRepo.On("FindByID", ctx, "r-1").Return(rep, nil)
		mStore.On("Get", ctx, rep.StoragePath).Return(io.NopCloser(strings.NewReader("%PDF")), storage.ObjectInfo{}, nil)

		rc, got, err := NewReportService(mStore, mRepo, Records{}, nil, time.Minute).Download(ctx, "r-1")
		require.NoError(t, err)
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		assert.Equal(t, "%PDF", string(b))
		assert.Equal(t, rep, got)
	})

	t.Run("download of a vanished object is not found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockReportRepository)
		mRepo.On("FindByID", ctx, "r-1").Return(rep, nil)
		mStore.On("Get", ctx, rep.StoragePath).Return(nil, storage.ObjectInfo{}, fmt.Errorf("%w: NoSuchKey", storage.ErrObjectNotFound))

		rc, _, err := NewReportService(mStore, mRepo, Records{}, nil, time.Minute).Download(ctx, "r-1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, rc)
	})

	t.Run("delete keeps the row when storage fails", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockReportRepository)
		mRepo.On("FindByID", ctx, "r-1").Return(rep, nil)
		mStore.On("Delete", ctx, rep.StoragePath).Return(errors.New("minio down"))

		err := NewReportService(mStore, mRepo, Records{}, nil, time.Minute).Delete(ctx, "r-1")
		assert.EqualError(t, err, "delete storage: minio down")
		mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("delete", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockReportRepository)
		mRepo.On("FindByID", ctx, "r-1").Return(rep, nil)
		mStore.On("Delete", ctx, rep.StoragePath).Return(nil)
		mRepo.On("Delete", ctx, "r-1").Return(nil)

		require.NoError(t, NewReportService(mStore, mRepo, Records{}, nil, time.Minute).Delete(ctx, "r-1"))
		mRepo.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		mRepo := new(repoMocks.MockReportRepository)
		mRepo.On("FindByID", ctx, "r-9").Return(nil, sql.ErrNoRows)
		_, err := NewReportService(nil, mRepo, Records{}, nil, time.Minute).Get(ctx, "r-9")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDescribeRecord(t *testing.T) {
	fetched := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	doc, err := describeRecord(&model.CommercialRegistration{
		CRNationalNumber: "7001234567",
		Name:             "Acme",
		Capital:          decimal.NewNullDecimal(decimal.NewFromInt(500000)),
		FetchedAt:        &fetched,
	})
	require.NoError(t, err)
	assert.Equal(t, "Commercial registration 7001234567", doc.Title)
	require.Len(t, doc.Sections, 2)
	assert.Contains(t, doc.Sections[0].Fields, pdf.Field{Label: "Capital (SAR)", Value: "500000"})
	assert.Equal(t, "Fetched from Wathq at 2026-01-01T00:00:00Z", doc.Sections[1].Fields[0].Value)

	_, err = describeRecord("nope")
	assert.ErrorIs(t, err, ErrUnknownRecordType)
}
