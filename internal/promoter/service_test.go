package promoter

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// stubAuth hands out deterministic users without touching a database.
type stubAuth struct {
	nextID string
}

func (s *stubAuth) StartSession(in auth.SessionRequest) (*auth.TokenPair, *auth.User, error) {
	return &auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		&auth.User{ID: s.nextID, Name: in.Name, Email: in.Email, Phone: in.Phone, Role: in.Role}, nil
}

func (s *stubAuth) Refresh(refreshToken string) (string, error) { return "access", nil }

func (s *stubAuth) GetUserByID(id string) (auth.User, error) { return auth.User{ID: id}, nil }

func (s *stubAuth) CreateUser(name, email, phone, role string) (*auth.User, error) {
	return &auth.User{ID: s.nextID, Name: name, Email: email, Phone: phone, Role: role}, nil
}

var owner = &auth.User{ID: "user-owner", Name: "Rita", Role: auth.RoleOwner}

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(event.NewRepository(rdb), &stubAuth{nextID: "user-new"}, noopAudit{}, nil)
}

func seedEvent(t *testing.T, svc *Service, allowInvites bool) {
	t.Helper()
	ev := event.Event{
		ID:       "ev-1",
		Name:     "Launch Party",
		OwnerID:  owner.ID,
		Settings: event.EventSettings{AllowPromoterInvites: allowInvites, EnableCheckIn: true},
		Promoters: []event.Promoter{
			{ID: "promo-1", UserID: "user-promoter", Name: "Ana", Permissions: event.DefaultPromoterPermissions()},
		},
		Guests: []event.Guest{
			{ID: "g-1", Name: "Zed", AddedBy: event.AddedBy{Kind: event.RefPromoter, ID: "promo-1"}, PromoterID: "promo-1"},
			{ID: "g-2", Name: "Joy", AddedBy: event.AddedBy{Kind: event.RefOwner, ID: owner.ID}},
		},
	}
	require.NoError(t, svc.Repo.SaveEvents(context.Background(), []event.Event{ev}))
}

func TestAddPromoterCreatesIdentity(t *testing.T) {
	svc := newTestService(t)
	seedEvent(t, svc, true)

	quota := 10
	p, err := svc.AddPromoter(context.Background(), owner, "ev-1", &AddPromoterRequest{
		Name:       "Bo",
		Email:      "bo@example.com",
		GuestQuota: &quota,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "user-new", p.UserID)
	assert.Equal(t, owner.ID, p.InvitedBy)
	assert.Equal(t, event.DefaultPromoterPermissions(), p.Permissions)
	require.NotNil(t, p.GuestQuota)
	assert.Equal(t, 10, *p.GuestQuota)
}

func TestAddPromoterRejectsDuplicate(t *testing.T) {
	svc := newTestService(t)
	seedEvent(t, svc, true)

	_, err := svc.AddPromoter(context.Background(), owner, "ev-1", &AddPromoterRequest{
		UserID: "user-promoter",
		Name:   "Ana Again",
		Email:  "ana@example.com",
	}, "")
	assert.ErrorIs(t, err, event.ErrPromoterExists)
}

func TestAddPromoterOwnerOnly(t *testing.T) {
	svc := newTestService(t)
	seedEvent(t, svc, true)

	_, err := svc.AddPromoter(context.Background(), &auth.User{ID: "user-promoter"}, "ev-1", &AddPromoterRequest{
		Name:  "Bo",
		Email: "bo@example.com",
	}, "")
	assert.ErrorIs(t, err, event.ErrPermissionDenied)
}

func TestUpdatePromoterPermissionsAndQuota(t *testing.T) {
	svc := newTestService(t)
	seedEvent(t, svc, true)
	ctx := context.Background()

	perms := event.PromoterPermissions{CanAddGuests: true, CanViewAllGuests: true}
	quota := 3
	p, err := svc.UpdatePromoter(ctx, owner, "ev-1", "promo-1", &UpdatePromoterRequest{
		Permissions: &perms,
		GuestQuota:  &quota,
	}, "")
	require.NoError(t, err)
	assert.True(t, p.Permissions.CanViewAllGuests)
	require.NotNil(t, p.GuestQuota)
	assert.Equal(t, 3, *p.GuestQuota)

	p, err = svc.UpdatePromoter(ctx, owner, "ev-1", "promo-1", &UpdatePromoterRequest{RemoveQuota: true}, "")
	require.NoError(t, err)
	assert.Nil(t, p.GuestQuota)
}

func TestDeletePromoterReassignsGuestsToOwner(t *testing.T) {
	svc := newTestService(t)
	seedEvent(t, svc, true)
	ctx := context.Background()

	require.NoError(t, svc.DeletePromoter(ctx, owner, "ev-1", "promo-1", ""))

	ev, err := svc.Repo.EventByID(ctx, "ev-1")
	require.NoError(t, err)
	assert.Empty(t, ev.Promoters)

	// Guests survive the promoter and now point at the owner.
	require.Len(t, ev.Guests, 2)
	for _, g := range ev.Guests {
		assert.Equal(t, event.RefOwner, g.AddedBy.Kind)
		assert.Equal(t, owner.ID, g.AddedBy.ID)
		assert.Empty(t, g.PromoterID)
	}
}

func TestPublicJoin(t *testing.T) {
	svc := newTestService(t)
	seedEvent(t, svc, true)

	p, tokens, err := svc.PublicJoin(context.Background(), "ev-1", &PublicJoinRequest{
		Name:  "Cai",
		Email: "cai@example.com",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "user-new", p.UserID)
	assert.Equal(t, event.DefaultPromoterPermissions(), p.Permissions)
	assert.Nil(t, p.GuestQuota)
	assert.Equal(t, owner.ID, p.InvitedBy)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestPublicJoinBlockedWhenInvitesDisabled(t *testing.T) {
	svc := newTestService(t)
	seedEvent(t, svc, false)

	_, _, err := svc.PublicJoin(context.Background(), "ev-1", &PublicJoinRequest{
		Name:  "Cai",
		Email: "cai@example.com",
	}, "")
	assert.ErrorIs(t, err, event.ErrInvitesDisabled)
}
