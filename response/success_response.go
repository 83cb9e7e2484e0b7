package response

import (
	"encoding/json"
	"net/http"
)

// SuccessResponse writes Data as the whole JSON body.
type SuccessResponse struct {
	Data       interface{}
	StatusCode int
}

func (r SuccessResponse) Send(w http.ResponseWriter) {
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r.Data)
}

func OK(data interface{}) SuccessResponse {
	return SuccessResponse{Data: data, StatusCode: http.StatusOK}
}
