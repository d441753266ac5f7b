package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serializerPayload struct {
	Amount   *int64 `json:"amount"`
	Currency string `json:"currency"`
}

func TestJSONSerializer_Deserialize(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantAmount *int64
		wantErr    bool
	}{
		{
			name:       "正常系: デコード",
			body:       `{"amount":5000,"currency":"usd"}`,
			wantAmount: func() *int64 { v := int64(5000); return &v }(),
		},
		{
			name: "正常系: nullはnil",
			body: `{"amount":null,"currency":"usd"}`,
		},
		{
			name:       "正常系: 末尾の空白は許容",
			body:       "{\"amount\":5000,\"currency\":\"usd\"}\n  \n",
			wantAmount: func() *int64 { v := int64(5000); return &v }(),
		},
		{
			name:    "異常系: 末尾に余分なデータ",
			body:    `{"amount":5000,"currency":"usd"} trailing`,
			wantErr: true,
		},
		{
			name:    "異常系: 2つ目のJSON値",
			body:    `{"amount":5000,"currency":"usd"}{"amount":1}`,
			wantErr: true,
		},
		{
			name:    "異常系: 型不一致",
			body:    `{"amount":"5000"}`,
			wantErr: true,
		},
		{
			name:    "異常系: 構文エラー",
			body:    `{"amount":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c := e.NewContext(req, httptest.NewRecorder())

			var payload serializerPayload
			err := JSONSerializer{}.Deserialize(c, &payload)
			if tt.wantErr {
				var httpErr *echo.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusBadRequest, httpErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, payload.Amount)
			assert.Equal(t, "usd", payload.Currency)
		})
	}
}

func TestJSONSerializer_Serialize(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := JSONSerializer{}.Serialize(c, map[string]interface{}{"clientSecret": "pi_123_secret_abc"}, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"clientSecret":"pi_123_secret_abc"}`, rec.Body.String())
}
