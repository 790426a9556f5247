package guest

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomenalista/guestlist-backend/config"
	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/auth"
	"github.com/nomenalista/guestlist-backend/internal/event"
)

type noopAudit struct{}

func (noopAudit) LogAction(ctx context.Context, userID *string, eventID *string, action string, details map[string]interface{}, ip string, status string) error {
	return nil
}

func (noopAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}

var (
	owner    = &auth.User{ID: "user-owner", Name: "Rita", Role: auth.RoleOwner}
	promoUsr = &auth.User{ID: "user-promoter", Name: "Ana", Role: auth.RolePromoter}
)

// seedEvent stores one event with a promoter whose quota is two guests.
func seedEvent(t *testing.T, repo *event.Repository) *event.Event {
	t.Helper()
	quota := 2
	ev := event.Event{
		ID:          "ev-1",
		Name:        "Launch Party",
		Date:        "2026-10-01",
		MaxCapacity: 50,
		OwnerID:     owner.ID,
		OwnerName:   owner.Name,
		Settings:    event.EventSettings{AllowPromoterInvites: true, EnableCheckIn: true},
		Promoters: []event.Promoter{
			{
				ID:          "promo-1",
				UserID:      promoUsr.ID,
				Name:        "Ana",
				Permissions: event.DefaultPromoterPermissions(),
				GuestQuota:  &quota,
			},
		},
	}
	require.NoError(t, repo.SaveEvents(context.Background(), []event.Event{ev}))
	return &ev
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{BaseURL: "https://lists.example.com"}
	return NewService(event.NewRepository(rdb), noopAudit{}, nil, cfg)
}

func TestAddGuestByOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	g, err := svc.AddGuest(ctx, owner, "ev-1", &AddGuestRequest{Name: "Zed", Phone: "555-0001"}, "")
	require.NoError(t, err)

	assert.Equal(t, event.RefOwner, g.AddedBy.Kind)
	assert.Equal(t, owner.ID, g.AddedBy.ID)
	assert.Empty(t, g.PromoterID)
	assert.Equal(t, event.ListNormal, g.ListType)
	assert.False(t, g.Confirmed)
	assert.NotEmpty(t, g.ConfirmationToken)
	assert.NotEmpty(t, g.ConfirmationCode)
}

func TestAddGuestByPromoterCountsAgainstQuota(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	first, err := svc.AddGuest(ctx, promoUsr, "ev-1", &AddGuestRequest{Name: "One", Phone: "555-0001"}, "")
	require.NoError(t, err)
	assert.Equal(t, event.RefPromoter, first.AddedBy.Kind)
	assert.Equal(t, "promo-1", first.AddedBy.ID)
	assert.Equal(t, "promo-1", first.PromoterID)

	_, err = svc.AddGuest(ctx, promoUsr, "ev-1", &AddGuestRequest{Name: "Two", Phone: "555-0002"}, "")
	require.NoError(t, err)

	// Third guest exceeds the quota of two.
	_, err = svc.AddGuest(ctx, promoUsr, "ev-1", &AddGuestRequest{Name: "Three", Phone: "555-0003"}, "")
	assert.ErrorIs(t, err, event.ErrQuotaExceeded)

	quota, err := svc.Quota(ctx, promoUsr, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, 2, quota.Used)
	require.NotNil(t, quota.Remaining)
	assert.Equal(t, 0, *quota.Remaining)
}

func TestQuotaRemainingReportsOverrun(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	// Force the counter past the quota of two, as a lost race would.
	err := svc.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		events[0].Promoters[0].GuestsAdded = 3
		return events, nil
	})
	require.NoError(t, err)

	quota, err := svc.Quota(ctx, promoUsr, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, 3, quota.Used)
	require.NotNil(t, quota.Remaining)
	assert.Equal(t, -1, *quota.Remaining)

	// The overrun still denies further adds.
	_, err = svc.AddGuest(ctx, promoUsr, "ev-1", &AddGuestRequest{Name: "Late", Phone: "555-0009"}, "")
	assert.ErrorIs(t, err, event.ErrQuotaExceeded)
}

func TestDeleteGuestFreesQuota(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	g, err := svc.AddGuest(ctx, promoUsr, "ev-1", &AddGuestRequest{Name: "One", Phone: "555-0001"}, "")
	require.NoError(t, err)

	// Promoters start without delete permission; the owner removes.
	require.NoError(t, svc.DeleteGuest(ctx, owner, "ev-1", g.ID, ""))

	quota, err := svc.Quota(ctx, promoUsr, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, 0, quota.Used)
}

func TestVisibilityScopesMutations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	ownerGuest, err := svc.AddGuest(ctx, owner, "ev-1", &AddGuestRequest{Name: "Owner Guest", Phone: "555-0001"}, "")
	require.NoError(t, err)
	promoGuest, err := svc.AddGuest(ctx, promoUsr, "ev-1", &AddGuestRequest{Name: "Promo Guest", Phone: "555-0002"}, "")
	require.NoError(t, err)

	// The promoter lists only their own guest.
	visible, err := svc.ListGuests(ctx, promoUsr, "ev-1")
	require.NoError(t, err)
	if assert.Len(t, visible, 1) {
		assert.Equal(t, promoGuest.ID, visible[0].ID)
	}

	// The owner sees both.
	all, err := svc.ListGuests(ctx, owner, "ev-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A guest outside the promoter's slice reads as not found, even for an
	// operation the promoter is otherwise allowed to perform.
	_, err = svc.ConfirmGuest(ctx, promoUsr, "ev-1", ownerGuest.ID, "")
	assert.ErrorIs(t, err, event.ErrGuestNotFound)
}

func TestConfirmGuestIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	g, err := svc.AddGuest(ctx, owner, "ev-1", &AddGuestRequest{Name: "Zed", Phone: "555-0001"}, "")
	require.NoError(t, err)

	first, err := svc.ConfirmGuest(ctx, owner, "ev-1", g.ID, "")
	require.NoError(t, err)
	assert.True(t, first.Confirmed)
	require.NotNil(t, first.ConfirmedAt)

	second, err := svc.ConfirmGuest(ctx, owner, "ev-1", g.ID, "")
	require.NoError(t, err)
	assert.True(t, second.Confirmed)
	assert.Equal(t, first.ConfirmedAt.Unix(), second.ConfirmedAt.Unix())
}

func TestCheckInRespectsEventSetting(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	g, err := svc.AddGuest(ctx, owner, "ev-1", &AddGuestRequest{Name: "Zed", Phone: "555-0001"}, "")
	require.NoError(t, err)

	checked, err := svc.CheckInGuest(ctx, owner, "ev-1", g.ID, "")
	require.NoError(t, err)
	assert.True(t, checked.CheckedIn)

	// Disable check-in; further attempts are refused even for the owner.
	err = svc.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		events[0].Settings.EnableCheckIn = false
		return events, nil
	})
	require.NoError(t, err)

	_, err = svc.CheckInGuest(ctx, owner, "ev-1", g.ID, "")
	assert.ErrorIs(t, err, event.ErrCheckInDisabled)
}

func TestConfirmationLinkUsesBaseURL(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	g, err := svc.AddGuest(ctx, owner, "ev-1", &AddGuestRequest{Name: "Zed", Phone: "555-0001"}, "")
	require.NoError(t, err)

	link, err := svc.ConfirmationLink(ctx, owner, "ev-1", g.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://lists.example.com/public/confirm/"+g.ConfirmationToken, link.ConfirmURL)
	assert.Equal(t, "https://lists.example.com/public/decline/"+g.ConfirmationToken, link.DeclineURL)
	assert.Equal(t, g.ConfirmationCode, link.Code)
}

func TestStatsPerPromoter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	g1, err := svc.AddGuest(ctx, promoUsr, "ev-1", &AddGuestRequest{Name: "One", Phone: "555-0001"}, "")
	require.NoError(t, err)
	_, err = svc.AddGuest(ctx, promoUsr, "ev-1", &AddGuestRequest{Name: "Two", Phone: "555-0002"}, "")
	require.NoError(t, err)
	_, err = svc.AddGuest(ctx, owner, "ev-1", &AddGuestRequest{Name: "Owner Guest", Phone: "555-0003"}, "")
	require.NoError(t, err)

	_, err = svc.ConfirmGuest(ctx, promoUsr, "ev-1", g1.ID, "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, promoUsr, "ev-1")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "promo-1", stats[0].PromoterID)
	assert.Equal(t, 2, stats[0].Total)
	assert.Equal(t, 1, stats[0].Confirmed)
	assert.Equal(t, 0, stats[0].CheckedIn)
}

func TestAddGuestStrangerDenied(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedEvent(t, svc.Repo)

	_, err := svc.AddGuest(ctx, &auth.User{ID: "user-nobody"}, "ev-1", &AddGuestRequest{Name: "Zed", Phone: "555-0001"}, "")
	assert.ErrorIs(t, err, event.ErrPermissionDenied)
}
