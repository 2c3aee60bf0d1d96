package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"receiptguard/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parsing, validation, and error translation only.
func RegisterRoutes(app *fiber.App, db *sql.DB, receiptSvc service.ReceiptService, requestSvc service.RequestService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/requests", CreateRequest(requestSvc))
	app.Get("/requests/:id", GetRequest(requestSvc))

	app.Post("/receipts", UploadReceipt(receiptSvc))
	app.Get("/receipts", ListReceipts(receiptSvc))
	app.Get("/receipts/:id", GetReceipt(receiptSvc))
	app.Get("/receipts/:id/assessment", GetAssessment(receiptSvc))
	app.Get("/receipts/:id/download", DownloadReceipt(receiptSvc))
}

// HealthCheck reports readiness: it checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateRequest opens a new reimbursement request (JSON body).
func CreateRequest(svc service.RequestService) fiber.Handler {
	type createRequestBody struct {
		StudentID int64  `json:"student_id"`
		Comment   string `json:"comment"`
	}
	return func(c *fiber.Ctx) error {
		var body createRequestBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if body.StudentID <= 0 {
			return writeError(c, fiber.StatusBadRequest, "STUDENT_ID_REQUIRED", "student_id is required")
		}

		req, err := svc.Create(c.UserContext(), body.StudentID, body.Comment)
		if err != nil {
			if errors.Is(err, service.ErrStudentNotFound) {
				return writeError(c, fiber.StatusNotFound, "STUDENT_NOT_FOUND", "student not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// GetRequest returns a reimbursement request with its review state.
func GetRequest(svc service.RequestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		req, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrRequestNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "request not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(req)
	}
}

// UploadReceipt accepts a multipart upload (field name: file) plus student_id
// and request_id form values, and returns the stored receipt with its fraud
// assessment.
func UploadReceipt(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		studentID, err := strconv.ParseInt(c.FormValue("student_id"), 10, 64)
		if err != nil || studentID <= 0 {
			return writeError(c, fiber.StatusBadRequest, "STUDENT_ID_REQUIRED", "student_id is required")
		}
		requestID, err := strconv.ParseInt(c.FormValue("request_id"), 10, 64)
		if err != nil || requestID <= 0 {
			return writeError(c, fiber.StatusBadRequest, "REQUEST_ID_REQUIRED", "request_id is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		res, err := svc.Upload(c.UserContext(), f, service.UploadParams{
			StudentID:   studentID,
			RequestID:   requestID,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
		})
		if err != nil {
			return writeUploadError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// writeUploadError translates service-level upload failures to responses.
func writeUploadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE", "only jpeg and png receipts are accepted")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the maximum allowed size")
	case errors.Is(err, service.ErrRequestNotFound):
		return writeError(c, fiber.StatusNotFound, "REQUEST_NOT_FOUND", "reimbursement request not found")
	case errors.Is(err, service.ErrRequestMismatch):
		return writeError(c, fiber.StatusForbidden, "REQUEST_MISMATCH", "request does not belong to this student")
	case errors.Is(err, service.ErrFraudSuspected):
		return writeError(c, fiber.StatusConflict, "FRAUD_SUSPECTED", "receipt was already submitted by another student")
	case errors.Is(err, service.ErrDuplicateReceipt):
		return writeError(c, fiber.StatusConflict, "DUPLICATE_RECEIPT", "receipt was already submitted")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ListReceipts returns one student's receipts with limit & offset.
func ListReceipts(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		studentID, err := strconv.ParseInt(c.Query("student_id"), 10, 64)
		if err != nil || studentID <= 0 {
			return writeError(c, fiber.StatusBadRequest, "STUDENT_ID_REQUIRED", "student_id is required")
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), studentID, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetReceipt returns a stored receipt by ID.
func GetReceipt(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "receipt not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(rec)
	}
}

// GetAssessment returns the persisted fraud analysis for a receipt.
func GetAssessment(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		meta, err := svc.GetAssessment(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "assessment not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(meta)
	}
}

// DownloadReceipt returns a time-limited download URL for the original image.
func DownloadReceipt(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "receipt not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"url": url})
	}
}
