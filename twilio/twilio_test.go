package twilio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+919876543210", r.PostForm.Get("To"))
		assert.Equal(t, "+15005550006", r.PostForm.Get("From"))
		assert.Equal(t, "hello", r.PostForm.Get("Body"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	sid, err := NewSender("AC123", "secret", srv.URL, "+15005550006").Send(context.Background(), "+919876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM1", sid)
}

func TestSend_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number."}`))
	}))
	defer srv.Close()

	_, err := NewSender("AC123", "secret", srv.URL, "+1").Send(context.Background(), "bad", "hello")
	var twErr *Error
	require.True(t, errors.As(err, &twErr))
	assert.Equal(t, 21211, twErr.Code)
}

func TestVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/VA1/Verifications":
			assert.Equal(t, "sms", r.PostForm.Get("Channel"))
			w.Write([]byte(`{"sid":"VE1","status":"pending"}`))
		case "/VA1/VerificationCheck":
			if r.PostForm.Get("Code") == "123456" {
				w.Write([]byte(`{"sid":"VE1","status":"approved","valid":true}`))
				return
			}
			w.Write([]byte(`{"sid":"VE1","status":"pending","valid":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	v := NewVerifier("AC123", "secret", srv.URL, "VA1")
	status, err := v.StartVerification(context.Background(), "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	status, err = v.CheckVerification(context.Background(), "+919876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, status)

	status, err = v.CheckVerification(context.Background(), "+919876543210", "000000")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
}
