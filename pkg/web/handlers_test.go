package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/operion-console/pkg/correlation"
	"github.com/dukex/operion-console/pkg/models"
	"github.com/dukex/operion-console/pkg/persistence/file"
	"github.com/dukex/operion-console/pkg/services"
	"github.com/dukex/operion-console/pkg/testutil"
	"github.com/dukex/operion-console/pkg/web"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *services.ProcessGroups) {
	t.Helper()

	groups := services.NewProcessGroups(file.NewPersistence(t.TempDir()), nil, nil, slog.Default())
	messages := services.NewMessages(groups, nil, nil, slog.Default())
	handlers := web.NewAPIHandlers(groups, groups, messages, web.NewValidator(), groups.HealthCheck)

	app := fiber.New()
	handlers.Register(app)
	app.Get("/health", handlers.HealthCheck)

	return app, groups
}

func seed(t *testing.T, groups *services.ProcessGroups, group *models.ProcessGroup) {
	t.Helper()

	_, err := groups.Create(t.Context(), group)
	require.NoError(t, err)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func decodeProblem(t *testing.T, body []byte) problems.Problem {
	t.Helper()

	var problem problems.Problem
	require.NoError(t, json.Unmarshal(body, &problem))

	return problem
}

func TestAPIHandlers_CreateProcessGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
		expectedID     string
		expectedError  string
	}{
		{
			name:           "explicit identifier",
			requestBody:    web.CreateProcessGroupRequest{ID: "orders", DisplayName: "Orders"},
			expectedStatus: http.StatusCreated,
			expectedID:     "orders",
		},
		{
			name:           "identifier derived from display name",
			requestBody:    web.CreateProcessGroupRequest{DisplayName: "Order Fulfilment"},
			expectedStatus: http.StatusCreated,
			expectedID:     "order-fulfilment",
		},
		{
			name:           "nested under a parent",
			requestBody:    web.CreateProcessGroupRequest{ID: "billing", ParentID: "finance", DisplayName: "Billing"},
			expectedStatus: http.StatusCreated,
			expectedID:     "finance/billing",
		},
		{
			name:           "missing display name",
			requestBody:    web.CreateProcessGroupRequest{ID: "orders"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "DisplayName",
		},
		{
			name:           "malformed identifier",
			requestBody:    web.CreateProcessGroupRequest{ID: "Orders_1", DisplayName: "Orders"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "process_group_id",
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid-json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			resp, body := doJSON(t, app, http.MethodPost, "/process-groups", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode, string(body))

			if tt.expectedError != "" {
				problem := decodeProblem(t, body)
				assert.Equal(t, "validation_error", problem.Type)
				assert.Contains(t, problem.Detail, tt.expectedError)

				return
			}

			var created models.ProcessGroup
			require.NoError(t, json.Unmarshal(body, &created))
			assert.Equal(t, tt.expectedID, created.ID)
		})
	}
}

func TestAPIHandlers_CreateProcessGroup_Conflict(t *testing.T) {
	app, groups := setupTestApp(t)
	seed(t, groups, testutil.CreateTestProcessGroup())

	resp, body := doJSON(t, app, http.MethodPost, "/process-groups", web.CreateProcessGroupRequest{ID: "orders", DisplayName: "Orders"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", decodeProblem(t, body).Type)
}

func TestAPIHandlers_GetProcessGroup(t *testing.T) {
	app, groups := setupTestApp(t)
	seed(t, groups, testutil.CreateTestProcessGroup(testutil.WithID("finance/billing")))

	resp, body := doJSON(t, app, http.MethodGet, "/process-groups/finance:billing", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var group models.ProcessGroup
	require.NoError(t, json.Unmarshal(body, &group))
	assert.Equal(t, "finance/billing", group.ID)
	assert.Len(t, group.CorrelationProperties, 2)

	resp, body = doJSON(t, app, http.MethodGet, "/process-groups/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "process_group_not_found", decodeProblem(t, body).Type)
}

func TestAPIHandlers_ReplaceProcessGroup(t *testing.T) {
	app, groups := setupTestApp(t)
	seed(t, groups, testutil.CreateTestProcessGroup())

	replacement := web.ReplaceProcessGroupRequest{
		DisplayName: "Orders v2",
		Messages:    map[string]models.MessageDefinition{"only": {}},
	}

	resp, body := doJSON(t, app, http.MethodPut, "/process-groups/orders", replacement)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	stored, err := groups.Get(t.Context(), "orders")
	require.NoError(t, err)
	assert.Equal(t, "Orders v2", stored.DisplayName)
	assert.Equal(t, []models.Message{{ID: "only"}}, stored.MessageList())
	assert.Empty(t, stored.CorrelationProperties)

	resp, _ = doJSON(t, app, http.MethodPut, "/process-groups/orders", web.ReplaceProcessGroupRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/process-groups/unknown", replacement)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_ListProcessGroups(t *testing.T) {
	app, groups := setupTestApp(t)
	seed(t, groups, testutil.CreateTestProcessGroup(testutil.WithID("finance")))
	seed(t, groups, testutil.CreateTestProcessGroup(testutil.WithID("finance/billing")))
	seed(t, groups, testutil.CreateTestProcessGroup(testutil.WithID("sales")))

	resp, body := doJSON(t, app, http.MethodGet, "/process-groups?parent_id=finance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		ProcessGroups []models.ProcessGroup `json:"process_groups"`
		TotalCount    int64                 `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, "finance/billing", list.ProcessGroups[0].ID)

	resp, _ = doJSON(t, app, http.MethodGet, "/process-groups?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/process-groups?sort_by=owner", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_ListMessages(t *testing.T) {
	app, groups := setupTestApp(t)
	seed(t, groups, testutil.CreateTestProcessGroup())

	resp, body := doJSON(t, app, http.MethodGet, "/process-groups/orders/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buckets web.MessageBucketsResponse
	require.NoError(t, json.Unmarshal(body, &buckets))
	require.Len(t, buckets.Buckets, 3)
	assert.Equal(t, correlation.UncorrelatedBucketName, buckets.Buckets[0].Name)
	assert.Equal(t, []models.Message{{ID: "audit"}}, buckets.Buckets[0].Messages)
	assert.Equal(t, "byOrder", buckets.Buckets[1].Name)
}

func TestAPIHandlers_MessageForm(t *testing.T) {
	app, groups := setupTestApp(t)
	seed(t, groups, testutil.CreateTestProcessGroup())

	resp, body := doJSON(t, app, http.MethodGet, "/process-groups/orders/messages/order-shipped/form", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var form services.MessageFormResponse
	require.NoError(t, json.Unmarshal(body, &form))
	assert.Equal(t, []correlation.FormCorrelationProperty{{ID: "order_id", RetrievalExpression: "shipment.order_id"}}, form.FormData.CorrelationProperties)
	assert.ElementsMatch(t, []string{"processGroupIdentifier", "messageId"}, form.Schema.Required)

	// Submit the form back with an extra property.
	form.FormData.CorrelationProperties = append(form.FormData.CorrelationProperties,
		correlation.FormCorrelationProperty{ID: "customer_id", RetrievalExpression: "shipment.customer"})

	resp, body = doJSON(t, app, http.MethodPut, "/process-groups/orders/messages/order-shipped/form", form.FormData)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	stored, err := groups.Get(t.Context(), "orders")
	require.NoError(t, err)

	props := correlation.PropertiesForMessage(models.Message{ID: "order-shipped"}, stored.CorrelationProperties)
	assert.Len(t, props, 2)

	resp, body = doJSON(t, app, http.MethodGet, "/process-groups/orders/messages/ghost/form", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "message_not_found", decodeProblem(t, body).Type)
}

func TestAPIHandlers_SubmitMessageForm_Invalid(t *testing.T) {
	app, groups := setupTestApp(t)
	seed(t, groups, testutil.CreateTestProcessGroup())

	resp, body := doJSON(t, app, http.MethodPut, "/process-groups/orders/messages/order-placed/form", correlation.MessageForm{
		CorrelationProperties: []correlation.FormCorrelationProperty{{ID: "", RetrievalExpression: "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeProblem(t, body).Detail, "invalid message form")
}

func TestAPIHandlers_DeleteMessage(t *testing.T) {
	app, groups := setupTestApp(t)
	seed(t, groups, testutil.CreateTestProcessGroup())

	resp, body := doJSON(t, app, http.MethodDelete, "/process-groups/orders/messages/order-placed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved models.ProcessGroup
	require.NoError(t, json.Unmarshal(body, &saved))
	assert.False(t, saved.HasMessage("order-placed"))

	resp, _ = doJSON(t, app, http.MethodDelete, "/process-groups/orders/messages/order-placed", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_ListProcessGroups_RemoteStore(t *testing.T) {
	groups := services.NewProcessGroups(file.NewPersistence(t.TempDir()), nil, nil, slog.Default())
	handlers := web.NewAPIHandlers(groups, nil, services.NewMessages(groups, nil, nil, slog.Default()), web.NewValidator(), groups.HealthCheck)

	app := fiber.New()
	handlers.Register(app)

	resp, _ := doJSON(t, app, http.MethodGet, "/process-groups", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
}
