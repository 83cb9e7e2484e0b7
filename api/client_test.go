package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "eventspot/context"
	"eventspot/guard"
	"eventspot/model"
)

type fakeAuth struct {
	header   http.Header
	failures []int
	classify bool
}

func (f *fakeAuth) BuildAuthHeaders(includeJSONContentType bool) http.Header {
	if f.header == nil {
		return nil
	}
	h := f.header.Clone()
	if includeJSONContentType {
		h.Set("Content-Type", "application/json")
	}
	return h
}

func (f *fakeAuth) HandleAuthFailure(status int, p guard.Payload) bool {
	if guard.ClassifyAuthFailure(status, p) {
		f.failures = append(f.failures, status)
		return true
	}
	return false
}

func authed() *fakeAuth {
	return &fakeAuth{header: http.Header{"Authorization": []string{"Bearer t0k"}, "X-Auth-Provider": []string{"google"}}}
}

func newTestClient(t *testing.T, auth Authorizer, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, auth, WithDefaultKey("rzp_test_default"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestProtectedCall_NoCredential(t *testing.T) {
	called := false
	cl := newTestClient(t, &fakeAuth{}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := cl.MyEvents(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.False(t, called)
}

func TestProtectedCall_Headers(t *testing.T) {
	cl := newTestClient(t, authed(), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/myEvents", r.URL.Path)
		assert.Equal(t, "Bearer t0k", r.Header.Get("Authorization"))
		assert.Equal(t, "google", r.Header.Get("x-auth-provider"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		assert.Equal(t, "corr-1", r.Header.Get(HeaderCorrelationID))
		writeJSON(w, http.StatusOK, []model.Event{{ID: "e1", EventName: "Gig"}})
	})

	events, err := cl.MyEvents(c.NewContext("corr-1"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Gig", events[0].EventName)
}

func TestProtectedCall_AuthFailureEndsSession(t *testing.T) {
	auth := authed()
	cl := newTestClient(t, auth, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token used too late"})
	})

	_, err := cl.MyEvents(context.Background())
	assert.True(t, errors.Is(err, ErrSessionEnded))
	assert.Equal(t, []int{http.StatusUnauthorized}, auth.failures)
}

func TestProtectedCall_SuccessFalseWithTokenMessage(t *testing.T) {
	auth := authed()
	cl := newTestClient(t, auth, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "invalid token"})
	})

	_, err := cl.CreateBooking(context.Background(), model.BookingRequest{EventID: "e1", Tickets: 1})
	assert.True(t, errors.Is(err, ErrSessionEnded))
}

func TestAPIError(t *testing.T) {
	cl := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "server error"})
	})

	_, err := cl.Event(context.Background(), "e1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "server error", Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "Something went wrong. Please try again.", (&APIError{Status: 502}).UserMessage())
}

func TestMalformedResponse(t *testing.T) {
	cl := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	})

	_, err := cl.Event(context.Background(), "e1")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestEvents_BothShapes(t *testing.T) {
	cases := []struct {
		name  string
		body  interface{}
		total int
	}{
		{"array", []model.Event{{ID: "a"}, {ID: "b"}}, 2},
		{"paged", map[string]interface{}{"data": []model.Event{{ID: "a"}}, "total": 40}, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cl := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "2", r.URL.Query().Get("page"))
				assert.Equal(t, "20", r.URL.Query().Get("limit"))
				writeJSON(w, http.StatusOK, tc.body)
			})
			page, err := cl.Events(context.Background(), 2, 20)
			require.NoError(t, err)
			assert.Equal(t, tc.total, page.Total)
		})
	}
}

func TestApprovedEvents(t *testing.T) {
	cl := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("isApproved"))
		writeJSON(w, http.StatusOK, []model.Event{{ID: "a"}})
	})
	events, err := cl.ApprovedEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCreateEvent_Multipart(t *testing.T) {
	cl := newTestClient(t, authed(), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer t0k", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Gig", r.FormValue("eventName"))
		assert.Len(t, r.MultipartForm.File["photos"], MaxPhotos)
		writeJSON(w, http.StatusCreated, map[string]string{"_id": "e9"})
	})

	form := EventForm{
		Fields: map[string]string{"eventName": "Gig"},
		Photos: []Photo{{"1.jpg", []byte("a")}, {"2.jpg", []byte("b")}, {"3.jpg", []byte("c")}, {"4.jpg", []byte("d")}},
	}
	require.NoError(t, cl.CreateEvent(context.Background(), form))
}

func TestDeleteEvent(t *testing.T) {
	cl := newTestClient(t, authed(), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/events/e1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, cl.DeleteEvent(context.Background(), "e1"))
}

func TestModerate(t *testing.T) {
	var got map[string]interface{}
	cl := newTestClient(t, authed(), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/events/e1/moderation", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		got = nil
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	assert.Equal(t, ErrSuggestionRequired, cl.Moderate(context.Background(), "e1", model.Moderation{Suggestion: "  "}))
	assert.Nil(t, got)

	require.NoError(t, cl.Moderate(context.Background(), "e1", model.Moderation{IsApproved: true, Suggestion: "ignored"}))
	assert.Equal(t, map[string]interface{}{"isApproved": true}, got)

	require.NoError(t, cl.Moderate(context.Background(), "e1", model.Moderation{Suggestion: "Add a venue photo"}))
	assert.Equal(t, map[string]interface{}{"isApproved": false, "suggestion": "Add a venue photo"}, got)
}

func TestUsers(t *testing.T) {
	cl := newTestClient(t, authed(), func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"data":  []model.User{{ID: "u1", Email: "a@b.c", Role: model.RoleAdmin}},
				"total": 7,
			})
		case http.MethodPut:
			var u model.UserUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&u))
			assert.Equal(t, model.RoleCustomer, u.Role)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			assert.Equal(t, "/users/u1", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}
	})

	page, err := cl.Users(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, model.RoleAdmin, page.Data[0].Role)

	assert.NoError(t, cl.UpdateUser(context.Background(), "u1", model.UserUpdate{Name: "A", Email: "a@b.c", Role: model.RoleCustomer}))
	assert.NoError(t, cl.DeleteUser(context.Background(), "u1"))
}

func TestUsers_Array(t *testing.T) {
	cl := newTestClient(t, authed(), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.User{{ID: "u1"}, {ID: "u2"}})
	})
	page, err := cl.Users(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestAnalytics_Fallback(t *testing.T) {
	var paths []string
	cl := newTestClient(t, authed(), func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == analyticsPath {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"summary":       map[string]interface{}{"totalUsers": 3, "totalRevenue": 1500.5},
			"roleBreakdown": map[string]int{"admin": 1, "customer": 2},
			"generatedAt":   "2026-10-01T10:00:00Z",
		})
	})

	a, err := cl.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{analyticsPath, analyticsFallbackPath}, paths)
	assert.Equal(t, 3, a.Summary.TotalUsers)
	assert.Equal(t, 1, a.RoleBreakdown.Admin)
}

func TestUploadChatbotPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%test document")
	cl := newTestClient(t, authed(), func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("pdf")
		require.NoError(t, err)
		defer file.Close()
		data, _ := ioutil.ReadAll(file)
		assert.Equal(t, pdf, data)
		writeJSON(w, http.StatusOK, map[string]string{"filename": header.Filename})
	})

	name, err := cl.UploadChatbotPDF(context.Background(), "/tmp/faq.pdf", pdf)
	require.NoError(t, err)
	assert.Equal(t, "faq.pdf", name)

	_, err = cl.UploadChatbotPDF(context.Background(), "faq.txt", pdf)
	assert.Equal(t, ErrNotPDF, err)
	_, err = cl.UploadChatbotPDF(context.Background(), "fake.pdf", []byte("hello"))
	assert.Equal(t, ErrNotPDF, err)
}

func TestLogin(t *testing.T) {
	cl := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Email == "nobody@x.io" {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "error": "User not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user":    map[string]string{"email": req.Email, "name": "Asha", "role": "admin"},
			"token":   "backend-jwt",
		})
	})

	res, err := cl.Login(context.Background(), model.LoginRequest{Email: "asha@x.io", Provider: "google", IDToken: "g"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
	assert.Equal(t, "backend-jwt", res.Token)

	_, err = cl.Login(context.Background(), model.LoginRequest{Email: "nobody@x.io"})
	assert.Equal(t, "User not found", Message(err, ""))
}
