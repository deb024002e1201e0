package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCharacterListIsPublic(t *testing.T) {
	env, cleanup := setupEnv(t)
	defer cleanup()

	resp := env.do(t, http.MethodGet, "/api/v1/characters", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData(t, resp)
	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, items)

	names := make([]string, 0, len(items))
	for _, raw := range items {
		item, _ := raw.(map[string]interface{})
		name, _ := item["name"].(string)
		names = append(names, name)
		require.Contains(t, item["avatar_url"], "/api/v1/characters/avatars/")
	}
	require.Contains(t, names, "Albert Einstein")
	require.Contains(t, names, "Cleopatra")
}

func TestCharacterAvatarUploadAndFetch(t *testing.T) {
	env, cleanup := setupEnv(t)
	defer cleanup()
	registerUser(t, env, "avatar@example.com", "secret-1")
	env.token = loginToken(t, env, "avatar@example.com", "secret-1")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("avatar", "einstein.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/characters/Albert%20Einstein/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	for _, cookie := range env.cookies {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData(t, resp)
	require.Contains(t, data["avatar_url"], "albert-einstein.png")

	resp2 := env.do(t, http.MethodGet, "/api/v1/characters/avatars/albert-einstein.png", nil)
	require.Equal(t, http.StatusOK, resp2.Code)
	require.Equal(t, "png-bytes", resp2.Body.String())
	require.Equal(t, "image/png", resp2.Result().Header.Get("Content-Type"))
}
