package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

func TestProfileHandler_Engineers_ParsesFilter(t *testing.T) {
	var got domain.EngineerFilter
	rate := 40.0
	stub := &stubProfileService{
		searchFn: func(_ context.Context, f domain.EngineerFilter) ([]ports.EngineerListing, error) {
			got = f
			return []ports.EngineerListing{
				{Profile: &domain.Profile{ID: "e1", Role: domain.RoleEngineer, HourlyRate: &rate}, Rating: domain.RatingSummary{Average: 4.4, Count: 5}},
				{Profile: &domain.Profile{ID: "e2", Role: domain.RoleEngineer}},
			}, nil
		},
	}
	h := NewProfileHandler(stub, nil)
	c, rec := newContext(t, http.MethodGet,
		"/v1/engineers?search=ana&specialty=Structural&min_rate=20&max_rate=60&min_experience=3&availability=available", nil, client)

	if err := h.Engineers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Search != "ana" || got.Specialty != "Structural" || *got.MinRate != 20 || *got.MaxRate != 60 ||
		*got.MinExperience != 3 || got.Availability != domain.AvailabilityAvailable {
		t.Fatalf("unexpected filter: %+v", got)
	}

	var resp struct {
		Items []struct {
			ID     string          `json:"id"`
			Rating *ratingResponse `json:"rating"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Items[0].Rating.Label != "Bueno" {
		t.Fatalf("expected label for 4.4, got %+v", resp.Items[0].Rating)
	}
	if resp.Items[1].Rating.Count != 0 || resp.Items[1].Rating.Label != "" {
		t.Fatalf("unrated engineer must have no label: %+v", resp.Items[1].Rating)
	}
}

func TestProfileHandler_Engineers_BadQuery(t *testing.T) {
	cases := []string{
		"/v1/engineers?min_rate=cheap",
		"/v1/engineers?min_experience=1.5",
		"/v1/engineers?availability=sometimes",
	}
	for _, target := range cases {
		t.Run(target, func(t *testing.T) {
			h := NewProfileHandler(&stubProfileService{}, nil)
			c, _ := newContext(t, http.MethodGet, target, nil, client)
			assertHTTPError(t, h.Engineers(c), http.StatusBadRequest)
		})
	}
}

func TestProfileHandler_Update_ForwardsPatch(t *testing.T) {
	var got domain.ProfilePatch
	stub := &stubProfileService{
		updateFn: func(_ context.Context, actorID, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
			if actorID != engineer.ID || id != engineer.ID {
				t.Fatalf("unexpected ids %s %s", actorID, id)
			}
			got = patch
			return &domain.Profile{ID: id}, nil
		},
	}
	h := NewProfileHandler(stub, nil)
	c, _ := newContext(t, http.MethodPatch, "/v1/profiles/eng-1",
		strings.NewReader(`{"hourly_rate":55.5,"availability":"busy"}`), engineer)
	c.SetParamNames("id")
	c.SetParamValues(engineer.ID)

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.HourlyRate == nil || *got.HourlyRate != 55.5 || got.Availability == nil || *got.Availability != domain.AvailabilityBusy {
		t.Fatalf("unexpected patch: %+v", got)
	}
	if got.FullName != nil {
		t.Fatalf("absent fields must stay nil")
	}
}

func TestProfileHandler_Update_InvalidURL(t *testing.T) {
	h := NewProfileHandler(&stubProfileService{}, nil)
	c, _ := newContext(t, http.MethodPatch, "/v1/profiles/eng-1", strings.NewReader(`{"portfolio_url":"not a url"}`), engineer)

	assertHTTPError(t, h.Update(c), http.StatusUnprocessableEntity)
}
