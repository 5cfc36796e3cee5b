package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/queue"
	"github.com/Raymond9734/customer-registry/internal/repository"
	"github.com/Raymond9734/customer-registry/internal/service"
	"github.com/Raymond9734/customer-registry/internal/telemetry"
)

type RouterSuite struct {
	suite.Suite
	repo   *repository.InMemoryCustomerRepository
	redis  *miniredis.Miniredis
	queue  queue.Client
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.repo = repository.NewInMemoryCustomerRepository()
	s.redis = miniredis.RunT(s.T())

	rdb := redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })
	s.queue = queue.NewRedisClient(rdb, "imports:test", logger)

	registry := prometheus.NewRegistry()
	s.router = NewRouter(RouterConfig{
		CustomerService:     service.NewCustomerService(s.repo, logger),
		RegistrationService: service.NewRegistrationService(s.repo, logger),
		ImportService:       service.NewImportService(s.queue, logger),
		Redis:               s.queue,
		Metrics:             telemetry.NewMetrics(registry),
		Gatherer:            registry,
		Logger:              logger,
	})
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) seed(userName, name, phone string) *models.Customer {
	saved, err := s.repo.Save(context.Background(), &models.Customer{UserName: userName, Name: name, PhoneNumber: phone})
	s.Require().NoError(err)
	return saved
}

func (s *RouterSuite) decodeCustomer(rec *httptest.ResponseRecorder) models.Customer {
	var c models.Customer
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&c))
	return c
}

func (s *RouterSuite) decodeError(rec *httptest.ResponseRecorder) ErrorDetail {
	var resp ErrorResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func (s *RouterSuite) TestListCustomers() {
	s.seed("f1", "l1", "+490001234")
	s.seed("f2", "l2", "+490005678")

	rec := s.do(http.MethodGet, "/api/v1/customers", nil)
	s.Equal(http.StatusOK, rec.Code)

	var customers []models.Customer
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&customers))
	s.Len(customers, 2)
}

func (s *RouterSuite) TestGetCustomer() {
	c := s.seed("f1", "l1", "+490001234")

	s.Run("by id", func() {
		rec := s.do(http.MethodGet, "/api/v1/customers/1", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(*c, s.decodeCustomer(rec))
	})

	s.Run("by user name", func() {
		rec := s.do(http.MethodGet, "/api/v1/customers/username/f1", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(c.ID, s.decodeCustomer(rec).ID)
	})

	s.Run("by phone number", func() {
		rec := s.do(http.MethodGet, "/api/v1/customers/phone/+490001234", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(c.ID, s.decodeCustomer(rec).ID)
	})

	s.Run("unknown id is 404 with the searched value", func() {
		rec := s.do(http.MethodGet, "/api/v1/customers/77", nil)
		s.Equal(http.StatusNotFound, rec.Code)
		detail := s.decodeError(rec)
		s.Equal(models.CodeNotFound, detail.Code)
		s.Equal("no record found with id 77", detail.Message)
	})

	s.Run("malformed id is 400", func() {
		rec := s.do(http.MethodGet, "/api/v1/customers/abc", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("INVALID_ID", s.decodeError(rec).Code)
	})
}

func (s *RouterSuite) TestGetCustomerWithEscapedPathParams() {
	c := s.seed("jane/doe", "Jane Doe", "+49/176/794502")

	s.Run("phone number with slash separators", func() {
		rec := s.do(http.MethodGet, "/api/v1/customers/phone/+49%2F176%2F794502", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(*c, s.decodeCustomer(rec))
	})

	s.Run("user name with a slash", func() {
		rec := s.do(http.MethodGet, "/api/v1/customers/username/jane%2Fdoe", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(c.ID, s.decodeCustomer(rec).ID)
	})

	s.Run("phone number with space separators", func() {
		spaced := s.seed("spaced", "Spaced", "+49 176 111222")
		rec := s.do(http.MethodGet, "/api/v1/customers/phone/+49%20176%20111222", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(spaced.ID, s.decodeCustomer(rec).ID)
	})

	s.Run("percent sign in a user name", func() {
		pct := s.seed("100%", "Percent", "+490007777")
		rec := s.do(http.MethodGet, "/api/v1/customers/username/100%25", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(pct.ID, s.decodeCustomer(rec).ID)
	})
}

func (s *RouterSuite) TestAddCustomer() {
	s.Run("stores a new customer", func() {
		rec := s.do(http.MethodPost, "/api/v1/customers", models.Customer{UserName: "f1", Name: "l1", PhoneNumber: "+490001234"})
		s.Equal(http.StatusOK, rec.Code)
		got := s.decodeCustomer(rec)
		s.NotZero(got.ID)
		s.Equal("f1", got.UserName)
	})

	s.Run("taken phone number is 400", func() {
		rec := s.do(http.MethodPost, "/api/v1/customers", models.Customer{UserName: "f2", Name: "l2", PhoneNumber: "+490001234"})
		s.Equal(http.StatusBadRequest, rec.Code)
		detail := s.decodeError(rec)
		s.Equal(models.CodeConflict, detail.Code)
		s.Equal("Phone Number +490001234 taken", detail.Message)
	})

	s.Run("malformed phone number is 400", func() {
		rec := s.do(http.MethodPost, "/api/v1/customers", models.Customer{UserName: "f3", Name: "l3", PhoneNumber: "+0001"})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(models.CodeInvalidFormat, s.decodeError(rec).Code)
	})

	s.Run("malformed JSON is 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("INVALID_JSON", s.decodeError(rec).Code)
	})
}

func (s *RouterSuite) TestUpdateCustomer() {
	s.seed("f1", "l1", "+490001234")
	s.seed("f2", "l2", "+490005678")

	s.Run("updates fields under the path id", func() {
		rec := s.do(http.MethodPut, "/api/v1/customers/1", models.Customer{UserName: "f1", Name: "renamed", PhoneNumber: "+490001234"})
		s.Equal(http.StatusOK, rec.Code)
		got := s.decodeCustomer(rec)
		s.Equal(int64(1), got.ID)
		s.Equal("renamed", got.Name)
	})

	s.Run("phone number of another record is 400", func() {
		rec := s.do(http.MethodPut, "/api/v1/customers/1", models.Customer{UserName: "f1", Name: "l1", PhoneNumber: "+490005678"})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(models.CodeConflict, s.decodeError(rec).Code)
	})

	s.Run("unknown id is 404", func() {
		rec := s.do(http.MethodPut, "/api/v1/customers/9", models.Customer{UserName: "x", Name: "x", PhoneNumber: "+490009999"})
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *RouterSuite) TestDeleteCustomer() {
	s.seed("f1", "l1", "+490001234")

	rec := s.do(http.MethodDelete, "/api/v1/customers/1", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Body.String())

	rec = s.do(http.MethodDelete, "/api/v1/customers/1", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Customer with id 1 does not exist", s.decodeError(rec).Message)
}

func (s *RouterSuite) TestSaveCustomers() {
	batch := []models.Customer{
		{UserName: "f1", Name: "l1", PhoneNumber: "+490001234"},
		{UserName: "f2", Name: "l2", PhoneNumber: "+490005678"},
	}

	rec := s.do(http.MethodPost, "/api/v1/customers/bulk", batch)
	s.Equal(http.StatusOK, rec.Code)

	var saved []models.Customer
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&saved))
	s.Len(saved, 2)

	rec = s.do(http.MethodPost, "/api/v1/customers/bulk", []any{nil})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestRegister() {
	body := models.Customer{UserName: "f1", Name: "l1", PhoneNumber: "+490001234"}

	rec := s.do(http.MethodPost, "/api/v1/customer-registration", body)
	s.Equal(http.StatusOK, rec.Code)
	s.NotZero(s.decodeCustomer(rec).ID)

	rec = s.do(http.MethodPost, "/api/v1/customer-registration", body)
	s.Equal(http.StatusBadRequest, rec.Code)
	detail := s.decodeError(rec)
	s.Equal(models.CodeAlreadyRegistered, detail.Code)
	s.Equal("You are already registered", detail.Message)

	rec = s.do(http.MethodPost, "/api/v1/customer-registration", models.Customer{UserName: "f2", Name: "l2", PhoneNumber: "+490001234"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(models.CodeConflict, s.decodeError(rec).Code)
}

func (s *RouterSuite) TestImportCustomers() {
	rec := s.do(http.MethodPost, "/api/v1/customers/import", service.ImportRequest{
		Customers: []models.Customer{
			{UserName: "f1", Name: "l1", PhoneNumber: "+490001234"},
			{UserName: "f2", Name: "l2", PhoneNumber: "+490005678"},
		},
	})
	s.Equal(http.StatusAccepted, rec.Code)

	var batch models.ImportBatch
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&batch))
	s.Equal(2, batch.Queued)
	s.NotEmpty(batch.BatchID)

	n, err := s.queue.QueueLength(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	rec = s.do(http.MethodPost, "/api/v1/customers/import", service.ImportRequest{})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)

	var resp HealthResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal("healthy", resp.Status)
	s.Equal("not_configured", resp.Services["database"])
	s.Equal("healthy", resp.Services["redis"])

	s.redis.Close()
	rec = s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *RouterSuite) TestMetricsAndRequestID() {
	rec := s.do(http.MethodGet, "/api/v1/customers", nil)
	s.NotEmpty(rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal("req-123", rec.Header().Get(RequestIDHeader))

	rec = s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `customer_registry_http_requests_total{method="GET",route="/api/v1/customers`)
}

func TestHandleError_InternalErrorsAreHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, errors.New("pq: connection refused"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("connection refused")) {
		t.Fatal("internal error details leaked to the client")
	}
}
