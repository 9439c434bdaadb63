package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-notes/internal/api"
	"github.com/tendant/course-notes/internal/auth"
	memoryrepo "github.com/tendant/course-notes/internal/repository/memory"
	memorystorage "github.com/tendant/course-notes/internal/storage/memory"
	"github.com/tendant/course-notes/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := memoryrepo.New()
	store := memorystorage.NewMemoryBackend()

	tokens, err := auth.NewManager("test-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	authService := service.NewAuthService(repo, tokens)
	notesService := service.NewNotesService(repo.Units(), repo.Subtopics(), repo.PDFs(), store)
	uploadService := service.NewUploadService(store)

	server := api.NewServer(tokens, authService, notesService, uploadService)
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(data) > 0 {
		// Lists decode to nil here; callers needing them decode separately
		_ = json.Unmarshal(data, &decoded)
	}
	return resp, decoded
}

func registerAndLogin(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()

	resp, _ := doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, ok := body["access"].(string)
	require.True(t, ok)
	return token
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t)

	// Missing password
	resp, _ := doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Duplicate username
	resp, _ = doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "s3cret",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Wrong password and unknown user report the same failure
	resp, body := doJSON(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	wrongPassword := body["error"]

	resp, body = doJSON(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody", "password": "s3cret",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, wrongPassword, body["error"])
}

func TestRefresh(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, refreshed := doJSON(t, ts, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh": body["refresh"].(string),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, refreshed["access"])

	// An access token is not accepted as a refresh token
	resp, _ = doJSON(t, ts, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh": body["access"].(string),
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnits_RequireAuthentication(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/units")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnits_CRUD(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	resp, unit := doJSON(t, ts, http.MethodPost, "/units", token, map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Math", unit["name"])
	unitID := unit["id"].(string)

	// Missing name key is rejected
	resp, _ = doJSON(t, ts, http.MethodPost, "/units", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, fetched := doJSON(t, ts, http.MethodGet, "/units/"+unitID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Math", fetched["name"])

	resp, renamed := doJSON(t, ts, http.MethodPatch, "/units/"+unitID, token, map[string]string{"name": "Mathematics"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mathematics", renamed["name"])

	resp, _ = doJSON(t, ts, http.MethodDelete, "/units/"+unitID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodGet, "/units/"+unitID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnits_InvisibleAcrossOwners(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := registerAndLogin(t, ts, "alice")
	bobToken := registerAndLogin(t, ts, "bob")

	resp, unit := doJSON(t, ts, http.MethodPost, "/units", aliceToken, map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	unitID := unit["id"].(string)

	resp, _ = doJSON(t, ts, http.MethodGet, "/units/"+unitID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodDelete, "/units/"+unitID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodPost, "/units/"+unitID+"/add_subtopic", bobToken, map[string]string{"title": "Sneaky"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddSubtopic(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	resp, unit := doJSON(t, ts, http.MethodPost, "/units", token, map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	unitID := unit["id"].(string)

	// Missing title is rejected
	resp, _ = doJSON(t, ts, http.MethodPost, "/units/"+unitID+"/add_subtopic", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, subtopic := doJSON(t, ts, http.MethodPost, "/units/"+unitID+"/add_subtopic", token, map[string]string{"title": "Algebra"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Algebra", subtopic["title"])
	assert.Equal(t, "", subtopic["notes"])
	assert.Empty(t, subtopic["pdfs"])
}

func TestSubtopics_CreateAndUpdate(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	resp, unit := doJSON(t, ts, http.MethodPost, "/units", token, map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	unitID := unit["id"].(string)

	// Missing unit key is rejected
	resp, _ = doJSON(t, ts, http.MethodPost, "/subtopics", token, map[string]string{"title": "Algebra"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, subtopic := doJSON(t, ts, http.MethodPost, "/subtopics", token, map[string]string{
		"unit": unitID, "title": "Algebra",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subtopicID := subtopic["id"].(string)

	resp, updated := doJSON(t, ts, http.MethodPatch, "/subtopics/"+subtopicID, token, map[string]string{
		"notes": "<p>hello <img src=\"x\"></p>",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<p>hello <img src=\"x\"></p>", updated["notes"])
	assert.Equal(t, "Algebra", updated["title"])
}

func multipartBody(t *testing.T, fileField, filename string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func doMultipart(t *testing.T, ts *httptest.Server, method, path, token string, body *bytes.Buffer, contentType string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(data) > 0 {
		_ = json.Unmarshal(data, &decoded)
	}
	return resp, decoded
}

func TestPDFs_UploadRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	resp, unit := doJSON(t, ts, http.MethodPost, "/units", token, map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, subtopic := doJSON(t, ts, http.MethodPost, "/subtopics", token, map[string]string{
		"unit": unit["id"].(string), "title": "Algebra",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subtopicID := subtopic["id"].(string)

	payload := []byte("%PDF-1.4 fake")
	body, contentType := multipartBody(t, "file", "notes.pdf", payload, map[string]string{
		"subtopic": subtopicID,
		"title":    "Notes1",
	})

	resp, pdf := doMultipart(t, ts, http.MethodPost, "/pdfs", token, body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Notes1", pdf["title"])
	assert.NotEmpty(t, pdf["file"])
	pdfID := pdf["id"].(string)

	resp, fetched := doJSON(t, ts, http.MethodGet, "/pdfs/"+pdfID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Notes1", fetched["title"])
	assert.Equal(t, pdf["file"], fetched["file"])

	// Subtopic representation embeds the attachment
	resp, withPDFs := doJSON(t, ts, http.MethodGet, "/subtopics/"+subtopicID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	pdfs, ok := withPDFs["pdfs"].([]any)
	require.True(t, ok)
	assert.Len(t, pdfs, 1)
}

func TestPDFs_Validation(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	// Missing subtopic
	body, contentType := multipartBody(t, "file", "notes.pdf", []byte("data"), nil)
	resp, _ := doMultipart(t, ts, http.MethodPost, "/pdfs", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing file
	resp2, unit := doJSON(t, ts, http.MethodPost, "/units", token, map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, resp2.StatusCode)
	resp2, subtopic := doJSON(t, ts, http.MethodPost, "/subtopics", token, map[string]string{
		"unit": unit["id"].(string), "title": "Algebra",
	})
	require.Equal(t, http.StatusCreated, resp2.StatusCode)

	body, contentType = multipartBody(t, "", "", nil, map[string]string{
		"subtopic": subtopic["id"].(string),
	})
	resp2, _ = doMultipart(t, ts, http.MethodPost, "/pdfs", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestPDFs_CreateOnForeignSubtopic(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := registerAndLogin(t, ts, "alice")
	bobToken := registerAndLogin(t, ts, "bob")

	resp, unit := doJSON(t, ts, http.MethodPost, "/units", aliceToken, map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, subtopic := doJSON(t, ts, http.MethodPost, "/subtopics", aliceToken, map[string]string{
		"unit": unit["id"].(string), "title": "Algebra",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, contentType := multipartBody(t, "file", "x.pdf", []byte("data"), map[string]string{
		"subtopic": subtopic["id"].(string),
	})
	resp, _ = doMultipart(t, ts, http.MethodPost, "/pdfs", bobToken, body, contentType)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPDFs_UpdateMetadataAndBinary(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	resp, unit := doJSON(t, ts, http.MethodPost, "/units", token, map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, subtopic := doJSON(t, ts, http.MethodPost, "/subtopics", token, map[string]string{
		"unit": unit["id"].(string), "title": "Algebra",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, contentType := multipartBody(t, "file", "v1.pdf", []byte("v1"), map[string]string{
		"subtopic": subtopic["id"].(string),
		"title":    "Notes1",
	})
	resp, pdf := doMultipart(t, ts, http.MethodPost, "/pdfs", token, body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pdfID := pdf["id"].(string)
	originalURL := pdf["file"]

	// JSON rename leaves the binary alone
	resp, renamed := doJSON(t, ts, http.MethodPatch, "/pdfs/"+pdfID, token, map[string]string{"title": "Renamed"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", renamed["title"])
	assert.Equal(t, originalURL, renamed["file"])

	// Multipart update replaces the binary
	body, contentType = multipartBody(t, "file", "v2.pdf", []byte("v2"), nil)
	resp, replaced := doMultipart(t, ts, http.MethodPut, "/pdfs/"+pdfID, token, body, contentType)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, originalURL, replaced["file"])
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	body, contentType := multipartBody(t, "image", "diagram.png", bytes.Repeat([]byte("a"), 4<<20), nil)
	resp, uploaded := doMultipart(t, ts, http.MethodPost, "/upload-image", token, body, contentType)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, uploaded["url"])

	// Same filename gets a distinct URL
	body, contentType = multipartBody(t, "image", "diagram.png", []byte("img"), nil)
	resp, second := doMultipart(t, ts, http.MethodPost, "/upload-image", token, body, contentType)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEqual(t, uploaded["url"], second["url"])
}

func TestUploadImage_TooLarge(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	body, contentType := multipartBody(t, "image", "big.png", bytes.Repeat([]byte("a"), 6<<20), nil)
	resp, _ := doMultipart(t, ts, http.MethodPost, "/upload-image", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadImage_MissingFile(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "alice")

	body, contentType := multipartBody(t, "", "", nil, map[string]string{"other": "field"})
	resp, _ := doMultipart(t, ts, http.MethodPost, "/upload-image", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(fmt.Sprintf("%s/health", ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
