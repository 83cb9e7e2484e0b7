package handler

import (
	"net/http"

	"eventspot/response"
)

func Healthcheck(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(map[string]string{"status": "ok", "version": version}).Send(w)
	}
}
