package event

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/auth"
)

type noopAudit struct{}

func (noopAudit) LogAction(ctx context.Context, userID *string, eventID *string, action string, details map[string]interface{}, ip string, status string) error {
	return nil
}

func (noopAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(NewRepository(rdb), noopAudit{})
}

var owner = &auth.User{ID: "user-owner", Name: "Rita", Role: auth.RoleOwner}

func TestCreateEventDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, owner, &CreateEventRequest{
		Name:        "Launch Party",
		Date:        "2026-10-01",
		Location:    "Warehouse 12",
		MaxCapacity: 100,
	}, "1.2.3.4")
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "user-owner", ev.OwnerID)
	assert.Equal(t, "Rita", ev.OwnerName)
	assert.True(t, ev.Settings.AllowPromoterInvites)
	assert.True(t, ev.Settings.EnableCheckIn)
	assert.Empty(t, ev.Guests)
}

func TestCreateEventRejectsBadDate(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateEvent(context.Background(), owner, &CreateEventRequest{
		Name:        "Launch Party",
		Date:        "01/10/2026",
		MaxCapacity: 100,
	}, "1.2.3.4")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestListEventsFiltersByAccess(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mine, err := svc.CreateEvent(ctx, owner, &CreateEventRequest{Name: "Mine", Date: "2026-10-01", MaxCapacity: 10}, "")
	require.NoError(t, err)

	other := &auth.User{ID: "user-other", Name: "Bo"}
	_, err = svc.CreateEvent(ctx, other, &CreateEventRequest{Name: "Not Mine", Date: "2026-10-02", MaxCapacity: 10}, "")
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx, owner)
	require.NoError(t, err)
	if assert.Len(t, events, 1) {
		assert.Equal(t, mine.ID, events[0].ID)
	}

	// A promoter record on the other event makes it visible too.
	err = svc.Repo.Mutate(ctx, func(events []Event) ([]Event, error) {
		for i := range events {
			if events[i].Name == "Not Mine" {
				events[i].Promoters = append(events[i].Promoters, Promoter{ID: "promo-1", UserID: owner.ID})
			}
		}
		return events, nil
	})
	require.NoError(t, err)

	events, err = svc.ListEvents(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestGetEventDeniedForStranger(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, owner, &CreateEventRequest{Name: "Launch", Date: "2026-10-01", MaxCapacity: 10}, "")
	require.NoError(t, err)

	_, _, err = svc.GetEvent(ctx, &auth.User{ID: "user-nobody"}, ev.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, owner, &CreateEventRequest{Name: "Launch", Date: "2026-10-01", MaxCapacity: 10}, "")
	require.NoError(t, err)

	newName := "Launch v2"
	disabled := false
	updated, err := svc.UpdateEvent(ctx, owner, ev.ID, &UpdateEventRequest{
		Name:     &newName,
		Settings: &SettingsRequest{EnableCheckIn: &disabled},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", updated.Name)
	assert.False(t, updated.Settings.EnableCheckIn)
	assert.True(t, updated.Settings.AllowPromoterInvites)

	_, err = svc.UpdateEvent(ctx, &auth.User{ID: "user-nobody"}, ev.ID, &UpdateEventRequest{Name: &newName}, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDeleteEventCascadesAndPicksNext(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateEvent(ctx, owner, &CreateEventRequest{Name: "First", Date: "2026-10-01", MaxCapacity: 10}, "")
	require.NoError(t, err)
	second, err := svc.CreateEvent(ctx, owner, &CreateEventRequest{Name: "Second", Date: "2026-10-02", MaxCapacity: 10}, "")
	require.NoError(t, err)

	// Give the first event embedded state that must go down with it.
	err = svc.Repo.Mutate(ctx, func(events []Event) ([]Event, error) {
		idx := findEvent(events, first.ID)
		events[idx].Guests = append(events[idx].Guests, Guest{ID: "g-1", Name: "Zed"})
		events[idx].Promoters = append(events[idx].Promoters, Promoter{ID: "promo-1", UserID: "user-x"})
		return events, nil
	})
	require.NoError(t, err)

	nextID, err := svc.DeleteEvent(ctx, owner, first.ID, "")
	require.NoError(t, err)
	assert.Equal(t, second.ID, nextID)

	_, err = svc.Repo.EventByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	// Last one out: no fallback to select.
	nextID, err = svc.DeleteEvent(ctx, owner, second.ID, "")
	require.NoError(t, err)
	assert.Empty(t, nextID)
}

func TestRepositoryRoundTripPreservesOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRepository(rdb)
	ctx := context.Background()

	in := []Event{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	require.NoError(t, repo.SaveEvents(ctx, in))

	out, err := repo.Events(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
}

func TestRepositoryMissingKeyIsEmptyCollection(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRepository(rdb)

	events, err := repo.Events(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRepositorySurfacesStorageFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRepository(rdb)
	mr.Close()

	_, err := repo.Events(context.Background())
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
}
