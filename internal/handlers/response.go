package handlers

import (
	"encoding/json"
	"net/http"
)

// Payload: одно поле ответа; ответ собирается из набора полей.
type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func toJSON(storage map[string]any, payload Payload) {
	storage[payload.Key] = payload.Payload
}

func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	storage := make(map[string]any)
	for _, pl := range payload {
		toJSON(storage, pl)
	}
	json.NewEncoder(w).Encode(storage)
}

// responseWithData пишет конверт {success, data, message}.
func responseWithData(w http.ResponseWriter, code int, data any, message string) {
	payload := []Payload{
		toPayload("success", true),
		toPayload("data", data),
	}
	if message != "" {
		payload = append(payload, toPayload("message", message))
	}
	responseWithJSON(w, code, payload...)
}

// responseWithError пишет конверт {success: false, message, errors}.
func responseWithError(w http.ResponseWriter, code int, message string, errs ...string) {
	if len(errs) == 0 {
		errs = []string{message}
	}
	responseWithJSON(w, code,
		toPayload("success", false),
		toPayload("message", message),
		toPayload("errors", errs),
	)
}
