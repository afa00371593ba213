package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/infra/cache"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"
	"github.com/calder/taxlead-crm-go/internal/service"

	"go.uber.org/zap"
)

func newLeadService(store *mockLeadStore, activityStore *mockActivityStore) *service.LeadService {
	activities := service.NewActivityService(activityStore, nil, observability.NewMetrics(), zap.NewNop())
	return service.NewLeadService(store, cache.New[[]domain.Lead](5*time.Minute), activities, observability.NewMetrics(), zap.NewNop())
}

func TestLeadList_CachesCollection(t *testing.T) {
	store := &mockLeadStore{leads: []domain.Lead{
		{ID: "l1", OwnerName: "John Carter", Status: domain.StatusNew},
	}}
	svc := newLeadService(store, &mockActivityStore{})

	first, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(first))
	}

	// Second call must come from cache: a store failure stays invisible
	store.err = errors.New("backend down")
	second, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("expected cached list, got %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected cached lead, got %d", len(second))
	}
}

func TestLeadCreate_DefaultsStatusAndRecordsActivity(t *testing.T) {
	store := &mockLeadStore{}
	activityStore := &mockActivityStore{}
	svc := newLeadService(store, activityStore)

	created, err := svc.Create(context.Background(), "actor-1", &domain.CreateLeadRequest{
		OwnerName:       "John Carter",
		PropertyAddress: "12 Main St",
	})
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if created.Status != domain.StatusNew {
		t.Errorf("expected default status NEW, got %s", created.Status)
	}

	types := activityStore.loggedTypes()
	if len(types) != 1 || types[0] != domain.ActivityLeadCreated {
		t.Errorf("expected one lead_created activity, got %v", types)
	}
}

func TestLeadCreate_RejectsUnknownStatus(t *testing.T) {
	svc := newLeadService(&mockLeadStore{}, &mockActivityStore{})

	_, err := svc.Create(context.Background(), "actor-1", &domain.CreateLeadRequest{
		OwnerName:       "John Carter",
		PropertyAddress: "12 Main St",
		Status:          domain.LeadStatus("BOGUS"),
	})

	var verr *domain.ErrValidation
	if err == nil || !asErr(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLeadCreate_InvalidatesCache(t *testing.T) {
	store := &mockLeadStore{leads: []domain.Lead{{ID: "l1", OwnerName: "A", Status: domain.StatusNew}}}
	svc := newLeadService(store, &mockActivityStore{})

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := svc.Create(context.Background(), "actor-1", &domain.CreateLeadRequest{
		OwnerName:       "B",
		PropertyAddress: "34 Side St",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Cache was dropped, so the next list hits the store again
	store.leads = append(store.leads, domain.Lead{ID: "l2", OwnerName: "B", Status: domain.StatusNew})
	leads, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if len(leads) != 2 {
		t.Errorf("expected refreshed list with 2 leads, got %d", len(leads))
	}
}

func TestLeadUpdate_StatusTransitionActivity(t *testing.T) {
	store := &mockLeadStore{lead: &domain.Lead{ID: "l1", OwnerName: "John Carter", Status: domain.StatusNew}}
	activityStore := &mockActivityStore{}
	svc := newLeadService(store, activityStore)

	status := domain.StatusHot
	_, err := svc.Update(context.Background(), "actor-1", "l1", &domain.UpdateLeadRequest{Status: &status})
	if err != nil {
		t.Fatalf("expected update to succeed, got %v", err)
	}

	types := activityStore.loggedTypes()
	if len(types) != 1 || types[0] != domain.ActivityStatusChanged {
		t.Errorf("expected one status_changed activity, got %v", types)
	}
	if activityStore.logged[0].Metadata["from"] != string(domain.StatusNew) {
		t.Errorf("expected from=NEW, got %v", activityStore.logged[0].Metadata["from"])
	}
	if activityStore.logged[0].Metadata["to"] != string(domain.StatusHot) {
		t.Errorf("expected to=HOT, got %v", activityStore.logged[0].Metadata["to"])
	}
}

func TestLeadUpdate_EmptyBody(t *testing.T) {
	svc := newLeadService(&mockLeadStore{}, &mockActivityStore{})

	_, err := svc.Update(context.Background(), "actor-1", "l1", &domain.UpdateLeadRequest{})

	var verr *domain.ErrValidation
	if err == nil || !asErr(err, &verr) {
		t.Fatalf("expected validation error for empty update, got %v", err)
	}
}

func TestLeadUpdate_RejectsClearedStatus(t *testing.T) {
	svc := newLeadService(&mockLeadStore{}, &mockActivityStore{})

	empty := domain.LeadStatus("")
	_, err := svc.Update(context.Background(), "actor-1", "l1", &domain.UpdateLeadRequest{Status: &empty})

	var verr *domain.ErrValidation
	if err == nil || !asErr(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLeadDelete_MissingLead(t *testing.T) {
	svc := newLeadService(&mockLeadStore{}, &mockActivityStore{})

	err := svc.Delete(context.Background(), "actor-1", "missing")

	var notFound *domain.ErrNotFound
	if err == nil || !asErr(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLeadQuery_FiltersAndCounts(t *testing.T) {
	store := &mockLeadStore{leads: []domain.Lead{
		{ID: "l1", OwnerName: "John Carter", Status: domain.StatusHot},
		{ID: "l2", OwnerName: "Mary Shaw", Status: domain.StatusCold},
		{ID: "l3", OwnerName: "John Doe", Status: domain.StatusHot},
	}}
	svc := newLeadService(store, &mockActivityStore{})

	resp, err := svc.Query(context.Background(), &domain.QueryLeadsRequest{
		Search: "john",
		Status: string(domain.StatusHot),
	})
	if err != nil {
		t.Fatalf("expected query to succeed, got %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected 2 matches, got %d", resp.Total)
	}
	for _, lead := range resp.Leads {
		if lead.Status != domain.StatusHot {
			t.Errorf("unexpected status %s in results", lead.Status)
		}
	}
}

func TestLeadActivityFailureDoesNotFailCreate(t *testing.T) {
	store := &mockLeadStore{}
	activityStore := &mockActivityStore{logErr: errors.New("rpc unavailable")}
	svc := newLeadService(store, activityStore)

	if _, err := svc.Create(context.Background(), "actor-1", &domain.CreateLeadRequest{
		OwnerName:       "John Carter",
		PropertyAddress: "12 Main St",
	}); err != nil {
		t.Fatalf("audit failure must not fail the create, got %v", err)
	}
}
