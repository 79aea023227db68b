package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	mw "github.com/rogerio-castellano/product-catalog/internal/http/middleware"
	log "github.com/sirupsen/logrus"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	msgNotFound      = "Produto não encontrado"
	msgInvalidInput  = "Entrada inválida"
	msgInvalidID     = "ID de produto inválido"
	msgInvalidData   = "Os dados fornecidos são inválidos."
	msgDuplicate     = "Já existe um produto com este nome e categoria."
	msgInternalError = "Erro interno do servidor"
)

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

func respond(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	if err := writeJSON(w, status, env); err != nil {
		log.WithError(err).WithField("request_id", mw.GetRequestID(r.Context())).Error("failed to write response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respond(w, r, status, Envelope{Status: false, Message: message})
}

// respondInternal hides err from the client and logs it.
func respondInternal(w http.ResponseWriter, r *http.Request, err error, action string) {
	log.WithError(err).WithFields(log.Fields{
		"request_id": mw.GetRequestID(r.Context()),
		"action":     action,
	}).Error("request failed")
	respondError(w, r, http.StatusInternalServerError, msgInternalError)
}

func productIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageParams reads page and limit, falling back to the defaults on missing or
// non-numeric values. Both are at least 1 and limit is capped.
func pageParams(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page = queryInt(q.Get("page"), defaultPage)
	limit = queryInt(q.Get("limit"), defaultLimit)
	return max(1, page), min(max(1, limit), maxLimit)
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
