package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"receiptguard/internal/fraud"
	"receiptguard/internal/model"
	"receiptguard/internal/service"
	serviceMocks "receiptguard/internal/service/mocks"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// uploadBody builds a multipart body with a file plus the id form fields.
func uploadBody(t *testing.T, filename, studentID, requestID string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write([]byte("fake image bytes"))
	if studentID != "" {
		writer.WriteField("student_id", studentID)
	}
	if requestID != "" {
		writer.WriteField("request_id", requestID)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadReceipt(t *testing.T) {
	mockSvc := new(serviceMocks.MockReceiptService)
	app := fiber.New()
	app.Post("/receipts", UploadReceipt(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := uploadBody(t, "receipt.jpg", "1", "10")

		expected := &service.UploadResult{
			Receipt: &model.Receipt{ID: uuid.New().String(), Filename: "receipt.jpg"},
			Assessment: &fraud.Assessment{
				RiskScore: 0.1,
				Category:  fraud.LowRisk,
				Action:    fraud.ActionApprove,
			},
		}
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(p service.UploadParams) bool {
			return p.StudentID == 1 && p.RequestID == 10 && p.Filename == "receipt.jpg"
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/receipts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result service.UploadResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.Receipt.ID, result.Receipt.ID)
		assert.Equal(t, fraud.ActionApprove, result.Assessment.Action)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/receipts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("missing student_id", func(t *testing.T) {
		body, ct := uploadBody(t, "receipt.jpg", "", "10")

		req := httptest.NewRequest(http.MethodPost, "/receipts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "STUDENT_ID_REQUIRED", res.Error.Code)
	})

	t.Run("duplicate receipt", func(t *testing.T) {
		body, ct := uploadBody(t, "receipt.jpg", "1", "10")

		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrDuplicateReceipt).Once()

		req := httptest.NewRequest(http.MethodPost, "/receipts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "DUPLICATE_RECEIPT", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("cross-student duplicate", func(t *testing.T) {
		body, ct := uploadBody(t, "receipt.jpg", "1", "10")

		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrFraudSuspected).Once()

		req := httptest.NewRequest(http.MethodPost, "/receipts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FRAUD_SUSPECTED", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unsupported file type", func(t *testing.T) {
		body, ct := uploadBody(t, "receipt.pdf", "1", "10")

		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrUnsupportedFileType).Once()

		req := httptest.NewRequest(http.MethodPost, "/receipts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNSUPPORTED_FILE_TYPE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := uploadBody(t, "receipt.jpg", "1", "10")

		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/receipts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetReceipt(t *testing.T) {
	mockSvc := new(serviceMocks.MockReceiptService)
	app := fiber.New()
	app.Get("/receipts/:id", GetReceipt(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Receipt{ID: id}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Receipt
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/receipts/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})
}

func TestGetAssessment(t *testing.T) {
	mockSvc := new(serviceMocks.MockReceiptService)
	app := fiber.New()
	app.Get("/receipts/:id/assessment", GetAssessment(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("GetAssessment", mock.Anything, id).
			Return(&model.ReceiptMetadata{ID: 1, ReceiptID: id, Assessment: "review", TamperingScore: 0.6}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts/"+id+"/assessment", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.ReceiptMetadata
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "review", result.Assessment)
		assert.Equal(t, 0.6, result.TamperingScore)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("GetAssessment", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts/"+id+"/assessment", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListReceipts(t *testing.T) {
	mockSvc := new(serviceMocks.MockReceiptService)
	app := fiber.New()
	app.Get("/receipts", ListReceipts(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.ReceiptListResult{
			Items: []model.Receipt{{ID: uuid.New().String()}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, int64(1), 10, 0).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts?student_id=1&limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ReceiptListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing student_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/receipts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "STUDENT_ID_REQUIRED", res.Error.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/receipts?student_id=1&limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_LIMIT", res.Error.Code)
	})
}

func TestDownloadReceipt(t *testing.T) {
	mockSvc := new(serviceMocks.MockReceiptService)
	app := fiber.New()
	app.Get("/receipts/:id/download", DownloadReceipt(mockSvc))

	id := uuid.New().String()
	mockSvc.On("DownloadURL", mock.Anything, id).Return("https://minio.local/presigned", nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/receipts/"+id+"/download", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "https://minio.local/presigned", body["url"])
	mockSvc.AssertExpectations(t)
}

func TestCreateRequest(t *testing.T) {
	mockSvc := new(serviceMocks.MockRequestService)
	app := fiber.New()
	app.Post("/requests", CreateRequest(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, int64(5), "bus pass").
			Return(&model.ReimbursementRequest{ID: 1, StudentID: 5, Status: model.StatusPending}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/requests",
			strings.NewReader(`{"student_id":5,"comment":"bus pass"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.ReimbursementRequest
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, model.StatusPending, result.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown student", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, int64(99), "").
			Return(nil, service.ErrStudentNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/requests",
			strings.NewReader(`{"student_id":99}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "STUDENT_NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing student_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "STUDENT_ID_REQUIRED", res.Error.Code)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockReceipts := new(serviceMocks.MockReceiptService)
	mockRequests := new(serviceMocks.MockRequestService)
	RegisterRoutes(app, nil, mockReceipts, mockRequests)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
