package schedule_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/provider"
	"github.com/okapitech/ratiba/core/schedule"
	"github.com/okapitech/ratiba/tests"
)

type fakeRepo struct {
	mu       sync.Mutex
	sessions []schedule.Session
	students []schedule.Student
	creates  int
	pkCount  int

	studentQueries [][]string
}

func (r *fakeRepo) QuerySessionsRange(ctx context.Context, providerID string, start, end time.Time) ([]schedule.Session, error) {
	return r.sessions, nil
}

func (r *fakeRepo) GetSessionByID(ctx context.Context, id string) (schedule.Session, error) {
	for _, s := range r.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return schedule.Session{}, schedule.ErrNotFound
}

func (r *fakeRepo) CreateSession(ctx context.Context, s schedule.Session) (schedule.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	r.pkCount++
	s.ID = fmt.Sprintf("sess-%d", r.pkCount)
	r.sessions = append(r.sessions, s)
	return s, nil
}

func (r *fakeRepo) UpdateSessionAssignment(ctx context.Context, id string, specialistID, seaID null.String) (schedule.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sessions {
		if s.ID == id {
			r.sessions[i].AssignedToSpecialistID = specialistID
			r.sessions[i].AssignedToSEAID = seaID
			return r.sessions[i], nil
		}
	}
	return schedule.Session{}, schedule.ErrNotFound
}

func (r *fakeRepo) UpdateSessionNotes(ctx context.Context, id string, notes null.String) (schedule.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sessions {
		if s.ID == id {
			r.sessions[i].SessionNotes = notes
			return r.sessions[i], nil
		}
	}
	return schedule.Session{}, schedule.ErrNotFound
}

func (r *fakeRepo) QueryStudentsByID(ctx context.Context, ids []string) ([]schedule.Student, error) {
	r.mu.Lock()
	r.studentQueries = append(r.studentQueries, ids)
	r.mu.Unlock()

	out := make([]schedule.Student, 0, len(ids))
	for _, st := range r.students {
		for _, id := range ids {
			if st.ID == id {
				out = append(out, st)
			}
		}
	}
	return out, nil
}

type fakeProvSvc struct{ provs map[string]provider.Provider }

func (f fakeProvSvc) Create(ctx context.Context, np provider.NewProvider) (provider.Provider, error) {
	return provider.Provider{}, nil
}
func (f fakeProvSvc) GetByID(ctx context.Context, id string) (provider.Provider, error) {
	if p, ok := f.provs[id]; ok {
		return p, nil
	}
	return provider.Provider{}, provider.ErrNotFound
}
func (f fakeProvSvc) GetByEmail(ctx context.Context, email string) (provider.Provider, error) {
	return provider.Provider{}, provider.ErrNotFound
}
func (f fakeProvSvc) QueryAll(ctx context.Context) ([]provider.Provider, error) { return nil, nil }

type captureMail struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *captureMail) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

func newTestService(repo *fakeRepo, mail *captureMail) *schedule.Service {
	provs := fakeProvSvc{provs: map[string]provider.Provider{
		seaX: {ID: seaX, Name: "Sam", Email: "sam@test.cd", Role: provider.RoleSEA},
	}}
	return schedule.NewService(repo, provs, mail, testutil.NopLogger{})
}

func TestService_QueryWeek(t *testing.T) {
	repo := &fakeRepo{
		sessions: []schedule.Session{
			testutil.MakeSession("S1", me, testutil.WithStudent("st-1")),
			testutil.MakeSession("S2", me, testutil.WithStudent("st-2"), testutil.WithSEA(seaX)),
		},
		students: []schedule.Student{{ID: "st-2", Initials: "CD"}},
	}
	svc := newTestService(repo, &captureMail{})

	usr := provider.Provider{ID: me, Role: provider.RoleSpecialist}
	known := schedule.StudentMap{"st-1": {ID: "st-1", Initials: "AB"}}

	view, err := svc.QueryWeek(context.Background(), usr, testutil.Date(2025, 3, 10), testutil.Date(2025, 3, 14), schedule.ViewAllSessions, known)

	assert.NoError(t, err)
	assert.Equal(t, schedule.ViewAllSessions, view.Mode)
	assert.Len(t, view.Sessions, 2)
	// the missing student was fetched and merged without touching the original
	assert.Equal(t, "CD", view.Students["st-2"].Initials)
	assert.Equal(t, "AB", view.Students["st-1"].Initials)
	assert.Equal(t, [][]string{{"st-2"}}, repo.studentQueries)
}

func TestService_QueryWeek_noIdentity(t *testing.T) {
	repo := &fakeRepo{sessions: []schedule.Session{testutil.MakeSession("S1", me)}}
	svc := newTestService(repo, &captureMail{})

	view, err := svc.QueryWeek(context.Background(), provider.Provider{}, testutil.Date(2025, 3, 10), testutil.Date(2025, 3, 14), schedule.ViewAllSessions, nil)

	assert.NoError(t, err, "missing identity is a blank week, not a failure")
	assert.Empty(t, view.Sessions)
}

func TestService_QueryWeek_forcesSEAView(t *testing.T) {
	repo := &fakeRepo{sessions: []schedule.Session{
		testutil.MakeSession("S1", me, testutil.WithSEA(seaX)),
		testutil.MakeSession("S2", me),
	}}
	svc := newTestService(repo, &captureMail{})

	usr := provider.Provider{ID: seaX, Role: provider.RoleSEA}
	view, err := svc.QueryWeek(context.Background(), usr, testutil.Date(2025, 3, 10), testutil.Date(2025, 3, 14), schedule.ViewAllSessions, nil)

	assert.NoError(t, err)
	assert.Equal(t, schedule.ViewSEA, view.Mode)
	assert.Equal(t, []string{"S1"}, sessionIDs(view.Sessions))
}

func TestService_EnsurePersisted(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &captureMail{})

	tmp := testutil.MakeSession("temp-abc", me)

	persisted, err := svc.EnsurePersisted(context.Background(), tmp)
	assert.NoError(t, err)
	assert.False(t, persisted.IsTemp())

	// second call resolves to the same persisted session without a new row
	again, err := svc.EnsurePersisted(context.Background(), tmp)
	assert.NoError(t, err)
	assert.Equal(t, persisted.ID, again.ID)
	assert.Equal(t, 1, repo.creates)

	// non-temp sessions pass through untouched
	same, err := svc.EnsurePersisted(context.Background(), persisted)
	assert.NoError(t, err)
	assert.Equal(t, persisted, same)
	assert.Equal(t, 1, repo.creates)
}

func TestService_EnsurePersisted_concurrent(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &captureMail{})

	tmp := testutil.MakeSession("temp-race", me)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]schedule.Session, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			s, err := svc.EnsurePersisted(context.Background(), tmp)
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.creates, "one temp placeholder, one permanent row")
	for _, s := range results {
		assert.Equal(t, results[0].ID, s.ID, "all callers converge on the same persisted id")
	}
}

func TestService_AssignSEA_notifiesDelegate(t *testing.T) {
	repo := &fakeRepo{}
	mailbox := &captureMail{}
	svc := newTestService(repo, mailbox)

	tmp := testutil.MakeSession("temp-1", me)
	updated, err := svc.AssignSEA(context.Background(), tmp, seaX)

	assert.NoError(t, err)
	assert.False(t, updated.IsTemp(), "assignment forces persistence")
	assert.Equal(t, seaX, updated.AssignedToSEAID.String)
	if assert.Len(t, mailbox.sent, 1) {
		assert.Equal(t, "sam@test.cd", mailbox.sent[0].To[0].Address)
	}
}

func TestService_SaveNotes_forcesPersistence(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &captureMail{})

	updated, err := svc.SaveNotes(context.Background(), testutil.MakeSession("temp-2", me), "made good progress")

	assert.NoError(t, err)
	assert.False(t, updated.IsTemp())
	assert.Equal(t, "made good progress", updated.SessionNotes.String)
}
