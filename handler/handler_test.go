package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventspot/chat"
	"eventspot/otp"
)

type fakeOTP struct {
	sendStatus string
	sendErr    error
	result     otp.Result
	verifyErr  error
	codes      []string
}

func (f *fakeOTP) Send(ctx context.Context, phone string) (string, error) {
	return f.sendStatus, f.sendErr
}

func (f *fakeOTP) Verify(ctx context.Context, phone, code string) (otp.Result, error) {
	f.codes = append(f.codes, code)
	return f.result, f.verifyErr
}

func serve(h http.HandlerFunc, body string) (int, map[string]interface{}) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	var out map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestSendOTP(t *testing.T) {
	svc := &fakeOTP{sendStatus: "pending"}

	code, body := serve(SendOTP(svc), `{"phoneNumber":"+919876543210"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"status": "pending"}, body)

	code, body = serve(SendOTP(svc), `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Phone number required", body["error"])

	svc.sendErr = otp.ErrInvalidPhone
	code, _ = serve(SendOTP(svc), `{"phoneNumber":"123"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	svc.sendErr = errors.New("twilio: status code: 401")
	code, body = serve(SendOTP(svc), `{"phoneNumber":"+919876543210"}`)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, false, body["success"])
}

func TestVerifyOTP(t *testing.T) {
	svc := &fakeOTP{result: otp.Result{Approved: true, Status: "approved"}}

	code, body := serve(VerifyOTP(svc), `{"phoneNumber":"+919876543210","otp":123456}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"success": true}, body)
	assert.Equal(t, []string{"123456"}, svc.codes)

	svc.result = otp.Result{Status: "pending"}
	code, body = serve(VerifyOTP(svc), `{"phoneNumber":"+919876543210","otp":"000111"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"success": false, "status": "pending"}, body)
	assert.Equal(t, "000111", svc.codes[1])

	code, _ = serve(VerifyOTP(svc), `{"phoneNumber":"+919876543210"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	svc.verifyErr = errors.New("redis down")
	code, _ = serve(VerifyOTP(svc), `{"phoneNumber":"+919876543210","otp":"1"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
}

type replier struct {
	reply string
	err   error
}

func (r replier) Reply(ctx context.Context, message string) (string, error) {
	return r.reply, r.err
}

func TestChat(t *testing.T) {
	code, body := serve(Chat(replier{reply: "Hi! Ask me about events."}), `{"message":"hello"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Hi! Ask me about events.", body["reply"])

	code, body = serve(Chat(replier{err: errors.New("quota")}), `{"message":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, chat.FallbackReply, body["reply"])

	code, body = serve(Chat(replier{reply: "unused"}), `{"message":`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, chat.FallbackReply, body["reply"])
}

func TestHealthcheck(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthcheck("v1.2.3").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"v1.2.3"}`, rec.Body.String())
}
