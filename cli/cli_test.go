package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventspot/config"
	"eventspot/session"
)

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return s
}

type harness struct {
	app    *App
	store  *session.MemoryStore
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(t *testing.T, backend http.Handler, input string) *harness {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	viper.Set(config.BackendURL, srv.URL)
	viper.Set(config.GoogleMapsAPIKey, "")
	viper.Set(config.DBURL, "")

	h := &harness{store: session.NewMemoryStore(), out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.app = NewApp("test", strings.NewReader(input), h.out, h.errOut, false)
	h.app.store = h.store
	return h
}

func (h *harness) signIn(t *testing.T) {
	h.store.Save(session.Credential{
		Token:    token(t, jwt.MapClaims{"email": "org@example.com", "exp": time.Now().Add(time.Hour).Unix()}),
		Provider: session.ProviderGoogle,
	})
}

func (h *harness) run(args ...string) error {
	return h.app.Execute(context.Background(), args)
}

func TestEvents(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("isApproved"))
		w.Write([]byte(`[{"_id":"e1","eventName":"Jazz Night","location":"Pune","date":"2026-11-02T00:00:00.000Z","totalTickets":40,"ticketPrice":250,"isApproved":true}]`))
	}), "")

	require.NoError(t, h.run("events"))
	assert.Contains(t, h.out.String(), "Jazz Night")
	assert.Contains(t, h.out.String(), "2026-11-02")
	assert.Contains(t, h.out.String(), "approved")
}

func TestMyEventsNeedsSignIn(t *testing.T) {
	called := false
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), "")

	err := h.run("my-events")
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, h.out.String(), "Sign in at")
	assert.Contains(t, h.out.String(), "reason=login_required")
	assert.Contains(t, h.errOut.String(), "Please sign in first.")
}

func TestModerateNeedsSuggestion(t *testing.T) {
	called := false
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), "")
	h.signIn(t)

	require.Error(t, h.run("moderate", "e1", "--disapprove"))
	assert.False(t, called)
	assert.Contains(t, h.errOut.String(), "Please add a suggestion")
}

func TestModerateApprove(t *testing.T) {
	var body map[string]interface{}
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/events/e1/moderation", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"success":true}`))
	}), "")
	h.signIn(t)

	require.NoError(t, h.run("moderate", "e1", "--approve"))
	assert.Equal(t, map[string]interface{}{"isApproved": true}, body)
	assert.Contains(t, h.out.String(), "Event approved")
}

func TestLoginWithGoogle(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/login", r.URL.Path)
		w.Write([]byte(`{"success":true,"user":{"email":"ana@example.com","role":"customer"},"token":"backend-token"}`))
	}), "")

	idToken := token(t, jwt.MapClaims{"email": "ana@example.com", "name": "Ana"})
	require.NoError(t, h.run("login", "--google-id-token", idToken))

	cred, ok, err := h.store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.Credential{Token: "backend-token", Provider: session.ProviderGoogle}, cred)
	assert.Contains(t, h.out.String(), "Signed in as ana@example.com (customer)")
}

func TestLogout(t *testing.T) {
	h := newHarness(t, http.NotFoundHandler(), "")
	h.signIn(t)

	require.NoError(t, h.run("logout"))
	_, ok, _ := h.store.Load()
	assert.False(t, ok)
}

func TestCreateEventWizard(t *testing.T) {
	var fields map[string]string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/events", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		w.Write([]byte(`{"success":true}`))
	}), strings.Join([]string{
		// details
		"Jazz Night", "Live quartet", "Music", "Blue Frog, Pune", "2026-11-02", "19:00", "22:00", "", "n",
		// tickets, with one rejected value first
		"lots", "40", "250", "n",
		// logistics
		"true", "", "org@example.com", "+919876543210", "n",
		// review
		"s",
	}, "\n")+"\n")
	h.signIn(t)

	require.NoError(t, h.run("create-event"))
	assert.Contains(t, h.out.String(), "Event submitted for moderation")
	assert.Contains(t, h.errOut.String(), "total tickets must be a whole number")
	assert.Equal(t, "Jazz Night", fields["eventName"])
	assert.Equal(t, "Blue Frog, Pune", fields["location"])
	assert.Equal(t, "", fields["latitude"])
	assert.Equal(t, "2026-11-02T00:00:00.000Z", fields["date"])
	assert.Equal(t, "40", fields["totalTickets"])
	assert.Equal(t, "250", fields["ticketPrice"])
	assert.Equal(t, "true", fields["parkingAvailable"])
	assert.Equal(t, "false", fields["foodAvailable"])
	_, hasApproval := fields["isApproved"]
	assert.False(t, hasApproval)
}

func TestCreateEventMissingFieldsStaysOnReview(t *testing.T) {
	called := false
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), strings.Join([]string{
		"", "", "", "", "", "", "", "", "n",
		"", "", "n",
		"", "", "", "", "n",
		"s", "q",
	}, "\n")+"\n")
	h.signIn(t)

	require.NoError(t, h.run("create-event"))
	assert.False(t, called)
	assert.Contains(t, h.errOut.String(), "Please fill event name, location and date")
	assert.Contains(t, h.out.String(), "Nothing was submitted.")
}

func TestBookRejectsBadTicketCount(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/e1", r.URL.Path)
		w.Write([]byte(`{"_id":"e1","eventName":"Jazz Night","totalTickets":2,"ticketPrice":250,"isApproved":true}`))
	}), "")
	h.signIn(t)

	err := h.run("book", "e1", "--tickets", "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.NotEmpty(t, h.errOut.String())
}

func TestUsersUpdateValidatesRole(t *testing.T) {
	h := newHarness(t, http.NotFoundHandler(), "")
	h.signIn(t)

	require.Error(t, h.run("users", "update", "u1", "--name", "Ana", "--email", "ana@example.com", "--role", "root"))
	assert.Contains(t, h.errOut.String(), "role must be admin or customer")
}

func TestChatbotUploadRejectsNonPDF(t *testing.T) {
	called := false
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), "")
	h.signIn(t)

	f, err := ioutil.TempFile(t.TempDir(), "notes-*.txt")
	require.NoError(t, err)
	f.WriteString("plain text")
	f.Close()

	require.Error(t, h.run("chatbot-upload", f.Name()))
	assert.False(t, called)
	assert.Contains(t, h.errOut.String(), "Only PDF files can be uploaded.")
}

func TestUnbookedNeedsDatabase(t *testing.T) {
	h := newHarness(t, http.NotFoundHandler(), "")

	require.Error(t, h.run("unbooked"))
	assert.Contains(t, h.errOut.String(), "no booking journal")
}
