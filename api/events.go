package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"eventspot/model"
)

const MaxPhotos = 3

// Photo is one uploaded event image.
type Photo struct {
	Filename string
	Data     []byte
}

// EventForm is the multipart body of an event create or update.
type EventForm struct {
	Fields map[string]string
	Photos []Photo
}

func (f EventForm) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("encode: unable to write field %s: %w", k, err)
		}
	}

	photos := f.Photos
	if len(photos) > MaxPhotos {
		photos = photos[:MaxPhotos]
	}
	for _, p := range photos {
		part, err := w.CreateFormFile("photos", p.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("encode: unable to create photo part: %w", err)
		}
		if _, err := part.Write(p.Data); err != nil {
			return nil, "", fmt.Errorf("encode: unable to write photo %s: %w", p.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode: unable to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (cl *Client) Event(ctx context.Context, id string) (model.Event, error) {
	var e model.Event
	err := cl.do(ctx, request{method: http.MethodGet, path: "/events/" + url.PathEscape(id)}, &e)
	return e, err
}

// ApprovedEvents lists the events visible to attendees.
func (cl *Client) ApprovedEvents(ctx context.Context) ([]model.Event, error) {
	var raw json.RawMessage
	if err := cl.do(ctx, request{method: http.MethodGet, path: "/events?isApproved=true"}, &raw); err != nil {
		return nil, err
	}
	page, err := decodeEventPage(raw)
	return page.Data, err
}

// Events lists every event a page at a time, for the admin console.
func (cl *Client) Events(ctx context.Context, page, limit int) (model.EventPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var raw json.RawMessage
	if err := cl.do(ctx, request{method: http.MethodGet, path: "/events?" + q.Encode()}, &raw); err != nil {
		return model.EventPage{}, err
	}
	return decodeEventPage(raw)
}

func (cl *Client) MyEvents(ctx context.Context) ([]model.Event, error) {
	var raw json.RawMessage
	if err := cl.do(ctx, request{method: http.MethodGet, path: "/myEvents", protected: true}, &raw); err != nil {
		return nil, err
	}
	page, err := decodeEventPage(raw)
	return page.Data, err
}

func (cl *Client) CreateEvent(ctx context.Context, form EventForm) error {
	return cl.sendEventForm(ctx, http.MethodPost, "/events", form)
}

func (cl *Client) UpdateEvent(ctx context.Context, id string, form EventForm) error {
	return cl.sendEventForm(ctx, http.MethodPut, "/events/"+url.PathEscape(id), form)
}

func (cl *Client) sendEventForm(ctx context.Context, method, path string, form EventForm) error {
	body, contentType, err := form.encode()
	if err != nil {
		return err
	}
	return cl.do(ctx, request{
		method:      method,
		path:        path,
		raw:         body,
		contentType: contentType,
		protected:   true,
	}, nil)
}

func (cl *Client) DeleteEvent(ctx context.Context, id string) error {
	return cl.do(ctx, request{method: http.MethodDelete, path: "/api/events/" + url.PathEscape(id), protected: true}, nil)
}

// decodeEventPage accepts a bare array or a {data,total} object.
func decodeEventPage(raw json.RawMessage) (model.EventPage, error) {
	if isJSONArray(raw) {
		var events []model.Event
		if err := json.Unmarshal(raw, &events); err != nil {
			return model.EventPage{}, fmt.Errorf("decodeEventPage: %v: %w", err, ErrMalformedResponse)
		}
		return model.EventPage{Data: events, Total: len(events)}, nil
	}

	var page model.EventPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return model.EventPage{}, fmt.Errorf("decodeEventPage: %v: %w", err, ErrMalformedResponse)
	}
	if page.Data == nil {
		page.Data = []model.Event{}
	}
	return page, nil
}
