package openapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email   string `json:"email" doc:"Identity to send the code to" example:"a@x.com"`
	Role    string `json:"role" enum:"admin,customer"`
	Purpose string `json:"purpose,omitempty"`
	secret  string
	Hidden  string `json:"-"`
}

type sampleResponse struct {
	OK        bool           `json:"ok"`
	ExpiresAt time.Time      `json:"expires_at"`
	Count     *uint          `json:"count,omitempty"`
	Items     []sampleItem   `json:"items"`
	Meta      map[string]int `json:"meta"`
}

type sampleItem struct {
	ID int `json:"id"`
}

func newSampleDoc() *OpenAPI {
	doc := New("Sample", "1.0.0").
		Description("sample API").
		Server("http://localhost:3000", "local").
		Tag("auth", "Authentication").
		BearerAuth("bearer", "Session token").
		CookieAuth("cookie", "session", "Session cookie")

	doc.Document("POST", "/auth/send-code").
		Summary("Send a code").
		Tags("auth").
		Body(sampleRequest{}, "request").
		Response(http.StatusOK, sampleResponse{}, "sent").
		Response(http.StatusBadRequest, nil, "invalid").
		Build()

	doc.Document("get", "/items/:id").
		OperationID("getItem").
		Security("bearer", "cookie").
		Response(http.StatusOK, sampleItem{}, "item").
		ResponseHTML(http.StatusNotFound, "missing").
		Build()

	return doc
}

func TestOpenAPI_Document(t *testing.T) {
	doc := newSampleDoc()
	spec := doc.Spec()

	assert.Equal(t, "Sample", spec.Info.Title)
	assert.Equal(t, "sample API", spec.Info.Description)
	require.Len(t, spec.Servers, 1)
	require.Len(t, spec.Tags, 1)
	assert.Contains(t, spec.Components.SecuritySchemes, "bearer")
	assert.Equal(t, "cookie", spec.Components.SecuritySchemes["cookie"].Value.In)

	send := spec.Paths.Find("/auth/send-code")
	require.NotNil(t, send)
	require.NotNil(t, send.Post)
	assert.Equal(t, "Send a code", send.Post.Summary)
	assert.Equal(t, []string{"auth"}, send.Post.Tags)
	assert.NotNil(t, send.Post.Responses.Value("200"))
	assert.NotNil(t, send.Post.Responses.Value("400"))

	item := spec.Paths.Find("/items/{id}")
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	assert.Equal(t, "getItem", item.Get.OperationID)
	require.NotNil(t, item.Get.Security)
	assert.Len(t, *item.Get.Security, 2)
	assert.Contains(t, item.Get.Responses.Value("404").Value.Content, "text/html")
}

func TestOpenAPI_StructSchemas(t *testing.T) {
	spec := newSampleDoc().Spec()

	req := spec.Components.Schemas["sampleRequest"]
	require.NotNil(t, req)
	props := req.Value.Properties

	assert.Contains(t, props, "email")
	assert.Contains(t, props, "role")
	assert.Contains(t, props, "purpose")
	assert.NotContains(t, props, "secret")
	assert.NotContains(t, props, "Hidden")
	assert.ElementsMatch(t, []string{"email", "role"}, req.Value.Required)
	assert.Equal(t, "Identity to send the code to", props["email"].Value.Description)
	assert.Equal(t, []any{"admin", "customer"}, props["role"].Value.Enum)

	resp := spec.Components.Schemas["sampleResponse"].Value
	assert.Equal(t, "date-time", resp.Properties["expires_at"].Value.Format)
	assert.True(t, resp.Properties["count"].Value.Nullable)
	assert.Equal(t, "#/components/schemas/sampleItem", resp.Properties["items"].Value.Items.Ref)
	assert.True(t, resp.Properties["meta"].Value.Type.Is(openapi3.TypeObject))
}

func TestOpenAPI_Handlers(t *testing.T) {
	doc := newSampleDoc()
	e := echo.New()
	e.GET("/openapi.json", doc.JSONHandler())
	e.GET("/openapi.yaml", doc.YAMLHandler())

	t.Run("json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "3.0.3", body["openapi"])
	})

	t.Run("yaml", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "/auth/send-code")
	})
}

func TestEchoPathToOpenAPI(t *testing.T) {
	assert.Equal(t, "/items/{id}/parts/{part}", echoPathToOpenAPI("/items/:id/parts/:part"))
	assert.Equal(t, "/auth/session", echoPathToOpenAPI("/auth/session"))
}
