package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"eventspot/model"
)

const (
	analyticsPath         = "/admin/analytics"
	analyticsFallbackPath = "/api/admin/analytics"
)

// Moderate approves an event, or disapproves it with a suggestion for the
// organizer.
func (cl *Client) Moderate(ctx context.Context, eventID string, m model.Moderation) error {
	if !m.IsApproved {
		m.Suggestion = strings.TrimSpace(m.Suggestion)
		if m.Suggestion == "" {
			return ErrSuggestionRequired
		}
	} else {
		m.Suggestion = ""
	}
	return cl.do(ctx, request{
		method:    http.MethodPut,
		path:      "/admin/events/" + url.PathEscape(eventID) + "/moderation",
		body:      m,
		protected: true,
	}, nil)
}

func (cl *Client) Users(ctx context.Context, page, limit int) (model.UserPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var raw json.RawMessage
	if err := cl.do(ctx, request{method: http.MethodGet, path: "/users?" + q.Encode(), protected: true}, &raw); err != nil {
		return model.UserPage{}, err
	}

	if isJSONArray(raw) {
		var users []model.User
		if err := json.Unmarshal(raw, &users); err != nil {
			return model.UserPage{}, fmt.Errorf("users: %v: %w", err, ErrMalformedResponse)
		}
		return model.UserPage{Data: users, Total: len(users)}, nil
	}

	var up model.UserPage
	if err := json.Unmarshal(raw, &up); err != nil {
		return model.UserPage{}, fmt.Errorf("users: %v: %w", err, ErrMalformedResponse)
	}
	return up, nil
}

func (cl *Client) UpdateUser(ctx context.Context, id string, u model.UserUpdate) error {
	return cl.do(ctx, request{method: http.MethodPut, path: "/users/" + url.PathEscape(id), body: u, protected: true}, nil)
}

func (cl *Client) DeleteUser(ctx context.Context, id string) error {
	return cl.do(ctx, request{method: http.MethodDelete, path: "/users/" + url.PathEscape(id), protected: true}, nil)
}

// Analytics fetches the admin snapshot, retrying once on the /api prefixed
// route when the primary one is not deployed.
func (cl *Client) Analytics(ctx context.Context) (model.Analytics, error) {
	var a model.Analytics
	err := cl.do(ctx, request{method: http.MethodGet, path: analyticsPath, protected: true}, &a)
	if StatusCode(err) == http.StatusNotFound {
		a = model.Analytics{}
		err = cl.do(ctx, request{method: http.MethodGet, path: analyticsFallbackPath, protected: true}, &a)
	}
	return a, err
}

// UploadChatbotPDF adds a PDF to the assistant's knowledge base and returns
// the stored file name.
func (cl *Client) UploadChatbotPDF(ctx context.Context, filename string, data []byte) (string, error) {
	if !IsPDF(filename, data) {
		return "", ErrNotPDF
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("pdf", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("uploadChatbotPDF: unable to create part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("uploadChatbotPDF: unable to write part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("uploadChatbotPDF: unable to close body: %w", err)
	}

	var res struct {
		Filename string `json:"filename"`
	}
	err = cl.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/chatbot/upload",
		raw:         &buf,
		contentType: w.FormDataContentType(),
		protected:   true,
	}, &res)
	if err != nil {
		return "", err
	}
	if res.Filename == "" {
		return "", errors.New("uploadChatbotPDF: backend did not return a file name")
	}
	return res.Filename, nil
}

// IsPDF checks both the extension and the content signature.
func IsPDF(filename string, data []byte) bool {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return false
	}
	return http.DetectContentType(data) == "application/pdf"
}
