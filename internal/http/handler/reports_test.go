package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	serviceMocks "github.com/atqan-dev/atqan-wathq-services-sub001/internal/service/mocks"
)

func TestCreateReport(t *testing.T) {
	recordID := uuid.NewString()

	tests := []struct {
		name       string
		body       any
		setupMocks func(*serviceMocks.MockReportService)
		wantStatus int
	}{
		{
			name: "success",
			body: service.CreateReportInput{RecordType: "employee", RecordID: recordID},
			setupMocks: func(m *serviceMocks.MockReportService) {
				m.On("Create", mock.Anything, service.CreateReportInput{RecordType: "employee", RecordID: recordID}).
					Return(&model.Report{ID: uuid.NewString(), RecordType: "employee", RecordID: recordID}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown record type",
			body:       service.CreateReportInput{RecordType: "invoice", RecordID: recordID},
			setupMocks: func(*serviceMocks.MockReportService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "record not found",
			body: service.CreateReportInput{RecordType: "contract", RecordID: recordID},
			setupMocks: func(m *serviceMocks.MockReportService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "storage failure",
			body: service.CreateReportInput{RecordType: "contract", RecordID: recordID},
			setupMocks: func(m *serviceMocks.MockReportService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("upload failed")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(serviceMocks.MockReportService)
			tt.setupMocks(svc)
			app := newTestApp()
			app.Post("/reports", CreateReport(svc))

			resp := doJSON(t, app, http.MethodPost, "/reports", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			svc.AssertExpectations(t)
		})
	}
}

func TestDownloadReport(t *testing.T) {
	svc := new(serviceMocks.MockReportService)
	app := newTestApp()
	app.Get("/reports/:id/download", DownloadReport(svc))

	t.Run("streams pdf", func(t *testing.T) {
		id := uuid.NewString()
		content := "%PDF-1.3 fake"
		svc.On("Download", mock.Anything, id).Return(
			io.NopCloser(strings.NewReader(content)),
			&model.Report{ID: id, Filename: "employee-1012345678.pdf", ContentType: "application/pdf", Size: int64(len(content))},
			nil,
		).Once()

		resp := doJSON(t, app, http.MethodGet, "/reports/"+id+"/download", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="employee-1012345678.pdf"`, resp.Header.Get("Content-Disposition"))

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, content, string(body))
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		svc.On("Download", mock.Anything, id).Return(nil, nil, service.ErrNotFound).Once()

		resp := doJSON(t, app, http.MethodGet, "/reports/"+id+"/download", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
	svc.AssertExpectations(t)
}

func TestGetAndDeleteReport(t *testing.T) {
	svc := new(serviceMocks.MockReportService)
	app := newTestApp()
	app.Get("/reports/:id", GetReport(svc))
	app.Delete("/reports/:id", DeleteReport(svc))

	id := uuid.NewString()
	svc.On("Get", mock.Anything, id).Return(&service.ReportView{
		Report:      model.Report{ID: id},
		DownloadURL: "https://minio.local/reports/x.pdf?X-Amz-Signature=abc",
	}, nil).Once()
	resp := doJSON(t, app, http.MethodGet, "/reports/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	svc.On("Delete", mock.Anything, id).Return(nil).Once()
	resp = doJSON(t, app, http.MethodDelete, "/reports/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	svc.AssertExpectations(t)
}
