package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupEnvelopeRouter(r *gin.Engine, h *EnvelopeHandler) {
	r.POST("/envelopes", h.CreateEnvelope)
	r.GET("/envelopes", h.ListEnvelopes)
	r.GET("/envelopes/groups", h.ListGroups)
	r.GET("/envelopes/:id", h.GetEnvelope)
	r.PATCH("/envelopes/:id", h.UpdateEnvelope)
}

func TestEnvelopeHandlerCreateEnvelopeReturns201(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewEnvelopeHandler(newHandlerFactory(db))
	r := gin.New()
	setupEnvelopeRouter(r, h)

	rec := doRequest(r, "POST", "/envelopes", `{"name":"Groceries","group":"Everyday","color":"#FF0000"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := parseJSON(t, rec)
	if body["name"] != "Groceries" {
		t.Fatalf("name = %v, want Groceries", body["name"])
	}
	if body["group"] != "Everyday" {
		t.Fatalf("group = %v, want Everyday", body["group"])
	}
}

func TestEnvelopeHandlerCreateEnvelopeRejectsEmptyName(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewEnvelopeHandler(newHandlerFactory(db))
	r := gin.New()
	setupEnvelopeRouter(r, h)

	rec := doRequest(r, "POST", "/envelopes", `{"name":"","group":"Everyday"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestEnvelopeHandlerListGroupsReturnsDistinctGroups(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewEnvelopeHandler(newHandlerFactory(db))
	r := gin.New()
	setupEnvelopeRouter(r, h)

	doRequest(r, "POST", "/envelopes", `{"name":"Groceries","group":"Everyday"}`)
	doRequest(r, "POST", "/envelopes", `{"name":"Gas","group":"Everyday"}`)
	doRequest(r, "POST", "/envelopes", `{"name":"Rent","group":"Fixed"}`)

	rec := doRequest(r, "GET", "/envelopes/groups", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var groups []string
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("parse groups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %v, want 2 distinct entries", groups)
	}
}

func TestEnvelopeHandlerUpdateEnvelopeArchives(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewEnvelopeHandler(newHandlerFactory(db))
	r := gin.New()
	setupEnvelopeRouter(r, h)

	created := parseJSON(t, doRequest(r, "POST", "/envelopes", `{"name":"Groceries","group":"Everyday"}`))
	id := created["id"].(string)

	rec := doRequest(r, "PATCH", "/envelopes/"+id, `{"archive":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := parseJSON(t, rec)
	if body["isActive"] != false {
		t.Fatalf("isActive = %v, want false after archiving", body["isActive"])
	}
}
