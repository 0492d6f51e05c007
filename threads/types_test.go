package threads

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponse(t *testing.T) {
	header := http.Header{"Content-Type": {"application/json"}}

	t.Run("object body", func(t *testing.T) {
		resp, err := newResponse(http.StatusOK, header, []byte(`{"id":"1","username":"zuck"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]any{"id": "1", "username": "zuck"}, resp.Body)

		var profile struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		}
		require.NoError(t, resp.Decode(&profile))
		assert.Equal(t, "zuck", profile.Username)
	})

	t.Run("large integers stay exact", func(t *testing.T) {
		resp, err := newResponse(http.StatusOK, header, []byte(`{"id":17841400000000001,"ratio":0.5}`))
		require.NoError(t, err)

		body, ok := resp.Body.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, json.Number("17841400000000001"), body["id"])
		assert.Equal(t, json.Number("0.5"), body["ratio"])

		var profile struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, resp.Decode(&profile))
		assert.Equal(t, int64(17841400000000001), profile.ID)
	})

	t.Run("header is a copy", func(t *testing.T) {
		live := http.Header{"Content-Type": {"application/json"}}
		resp, err := newResponse(http.StatusOK, live, []byte(`{}`))
		require.NoError(t, err)

		live.Set("Content-Type", "text/plain")
		live.Set("X-Extra", "1")
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.Empty(t, resp.Header.Get("X-Extra"))
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := newResponse(http.StatusOK, header, []byte(`{"a":1} {"b":2}`))
		assert.ErrorIs(t, err, ErrUndecodableResponse)
	})

	t.Run("scalar body", func(t *testing.T) {
		resp, err := newResponse(http.StatusOK, header, []byte(`true`))
		require.NoError(t, err)
		assert.Equal(t, true, resp.Body)
	})

	t.Run("raw is a copy", func(t *testing.T) {
		resp, err := newResponse(http.StatusOK, header, []byte(`{"a":1}`))
		require.NoError(t, err)

		raw := resp.Raw()
		raw[0] = 'x'
		assert.Equal(t, `{"a":1}`, string(resp.Raw()))
	})

	t.Run("invalid body", func(t *testing.T) {
		resp, err := newResponse(http.StatusOK, header, []byte(`<html>`))
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrUndecodableResponse)
	})
}

func TestResponse_Token(t *testing.T) {
	t.Run("missing access token", func(t *testing.T) {
		resp, err := newResponse(http.StatusOK, nil, []byte(`{"token_type":"bearer"}`))
		require.NoError(t, err)

		_, err = resp.Token()
		assert.Error(t, err)
	})

	t.Run("not an object", func(t *testing.T) {
		resp, err := newResponse(http.StatusOK, nil, []byte(`[1,2]`))
		require.NoError(t, err)

		_, err = resp.Token()
		assert.Error(t, err)
	})
}

func TestToken_ExpiresAt(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	token := &Token{AccessToken: "tok", ExpiresIn: 3600}
	assert.Equal(t, issued.Add(time.Hour), token.ExpiresAt(issued))

	noExpiry := &Token{AccessToken: "tok"}
	assert.True(t, noExpiry.ExpiresAt(issued).IsZero())
}
