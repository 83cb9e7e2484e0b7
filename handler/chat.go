package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"eventspot/chat"
	"eventspot/response"
)

type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat answers with {reply}. Every failure gets the same apology so the
// widget always has something to show.
func Chat(assistant Replier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.SuccessResponse{Data: chatResponse{Reply: chat.FallbackReply}, StatusCode: http.StatusInternalServerError}.Send(w)
			return
		}

		reply, err := assistant.Reply(ctx, req.Message)
		if err != nil {
			response.SuccessResponse{Data: chatResponse{Reply: chat.FallbackReply}, StatusCode: http.StatusInternalServerError}.Send(w)
			return
		}
		response.OK(chatResponse{Reply: reply}).Send(w)
	}
}
