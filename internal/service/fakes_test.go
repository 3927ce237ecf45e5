package service

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"SevenDay/internal/model"
	"SevenDay/internal/program"
	"SevenDay/internal/report"
	"SevenDay/pkg/llm"
)

// memStore 内存版的四张表，所有返回值都是拷贝
type memStore struct {
	mu           sync.Mutex
	participants map[int64]model.Participant
	checkIns     map[int64]model.CheckIn
	reports      map[int64]model.Report
	posts        map[int64]model.Post

	postCreateErr     error
	reportCreateErr   error
	completeErr       error
	postCreateAttempt int
}

func newMemStore() *memStore {
	return &memStore{
		participants: map[int64]model.Participant{},
		checkIns:     map[int64]model.CheckIn{},
		reports:      map[int64]model.Report{},
		posts:        map[int64]model.Post{},
	}
}

func (m *memStore) participant(id int64) model.Participant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.participants[id]
}

func (m *memStore) reportCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

func (m *memStore) postCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

func (m *memStore) checkInsOf(pid int64) []model.CheckIn {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CheckIn
	for _, ci := range m.checkIns {
		if ci.ParticipantID == pid {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInDate.Before(out[j].CheckInDate) })
	return out
}

type participantFake struct{ *memStore }

func (f participantFake) GetByID(_ context.Context, id int64) (*model.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f participantFake) StartProgram(_ context.Context, id int64, start time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok || p.ProgramStatus != model.ProgramNotStarted {
		return false, nil
	}
	p.ProgramStartDate = &start
	p.ProgramStatus = model.ProgramInProgress
	p.SucceededAt = nil
	f.participants[id] = p
	return true, nil
}

func (f participantFake) TransitionStatus(_ context.Context, id int64, from, to model.ProgramStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok || p.ProgramStatus != from {
		return false, nil
	}
	p.ProgramStatus = to
	f.participants[id] = p
	return true, nil
}

func (f participantFake) ResetProgram(_ context.Context, id int64, start time.Time) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok || p.ProgramStatus != model.ProgramInProgress || p.ProgramStartDate == nil || !p.ProgramStartDate.Equal(start) {
		return false, 0, nil
	}
	p.ProgramStartDate = nil
	p.ProgramStatus = model.ProgramNotStarted
	p.SucceededAt = nil
	f.participants[id] = p

	var deleted int64
	for cid, ci := range f.checkIns {
		if ci.ParticipantID == id && ci.ReviewStatus != model.ReviewApproved {
			delete(f.checkIns, cid)
			deleted++
		}
	}
	return true, deleted, nil
}

func (f participantFake) CompleteProgram(_ context.Context, id int64, succeededAt, validUntil time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return false, f.completeErr
	}
	p, ok := f.participants[id]
	if !ok || p.ProgramStatus != model.ProgramAwaitingReport {
		return false, nil
	}
	p.ProgramStatus = model.ProgramSuccess
	p.SucceededAt = &succeededAt
	p.MembershipValidUntil = &validUntil
	f.participants[id] = p
	return true, nil
}

type checkInFake struct{ *memStore }

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (f checkInFake) ListInRange(_ context.Context, pid int64, from, to time.Time) ([]model.CheckIn, error) {
	var out []model.CheckIn
	for _, ci := range f.checkInsOf(pid) {
		if inRange(ci.CheckInDate, from, to) {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (f checkInFake) ListApprovedInRange(_ context.Context, pid int64, from, to time.Time, limit int) ([]model.CheckIn, error) {
	var out []model.CheckIn
	for _, ci := range f.checkInsOf(pid) {
		if ci.ReviewStatus == model.ReviewApproved && inRange(ci.CheckInDate, from, to) && len(out) < limit {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (f checkInFake) Create(_ context.Context, ci *model.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.checkIns {
		if existing.ParticipantID == ci.ParticipantID && existing.CheckInDate.Equal(ci.CheckInDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	f.checkIns[ci.ID] = *ci
	return nil
}

func (f checkInFake) GetByID(_ context.Context, id int64) (*model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ci, ok := f.checkIns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ci, nil
}

func (f checkInFake) UpdateReview(_ context.Context, id int64, status model.ReviewStatus, reviewedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ci, ok := f.checkIns[id]
	if !ok {
		return false, nil
	}
	ci.ReviewStatus = status
	ci.ReviewedAt = &reviewedAt
	f.checkIns[id] = ci
	return true, nil
}

type reportFake struct{ *memStore }

func (f reportFake) Create(_ context.Context, rep *model.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reportCreateErr != nil {
		return f.reportCreateErr
	}
	for _, existing := range f.reports {
		if !rep.TestMode && !existing.TestMode && existing.ParticipantID == rep.ParticipantID &&
			existing.ProgramStartDate.Equal(rep.ProgramStartDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	f.reports[rep.ID] = *rep
	return nil
}

func (f reportFake) GetByID(_ context.Context, id int64) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rep, ok := f.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rep, nil
}

func (f reportFake) FindForRun(_ context.Context, pid int64, start time.Time) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rep := range f.reports {
		if rep.ParticipantID == pid && !rep.TestMode && rep.ProgramStartDate.Equal(start) {
			return &rep, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f reportFake) LatestByParticipant(_ context.Context, pid int64) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.Report
	for _, rep := range f.reports {
		rep := rep
		if rep.ParticipantID == pid && !rep.TestMode && (latest == nil || rep.GeneratedAt.After(latest.GeneratedAt)) {
			latest = &rep
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f reportFake) LinkPost(_ context.Context, reportID, postID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rep, ok := f.reports[reportID]
	if !ok || rep.PostID != nil {
		return false, nil
	}
	rep.PostID = &postID
	f.reports[reportID] = rep
	return true, nil
}

type postFake struct{ *memStore }

func (f postFake) FindByReport(_ context.Context, reportID int64) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.ReportID == reportID {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f postFake) Create(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postCreateAttempt++
	if f.postCreateErr != nil {
		return f.postCreateErr
	}
	for _, p := range f.posts {
		if p.ReportID == post.ReportID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.posts[post.ID] = *post
	return nil
}

// memLocker 单进程版的 SETNX 锁
type memLocker struct {
	mu    sync.Mutex
	held  map[string]string
	seq   int
	fails error
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]string{}}
}

func (l *memLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fails != nil {
		return "", false, l.fails
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.seq++
	token := time.Duration(l.seq).String()
	l.held[key] = token
	return token, true, nil
}

func (l *memLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

func (l *memLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// fakeModel 默认返回合法报告
type fakeModel struct {
	mu       sync.Mutex
	calls    int
	requests []llm.Request
	respond  func(ctx context.Context, req llm.Request) (string, error)
}

func (m *fakeModel) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	respond := m.respond
	m.mu.Unlock()
	return respond(ctx, req)
}

func (m *fakeModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *fakeModel) lastRequest() llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []model.PublicationRetryMessage
}

func (q *fakeQueue) PublishPublicationRetry(_ context.Context, msg model.PublicationRetryMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *fakeQueue) messages() []model.PublicationRetryMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.PublicationRetryMessage(nil), q.msgs...)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var (
	testCal   = program.NewCalendar(8)
	testStart = program.NewDate(2025, time.March, 3)
)

// at 第 day 天（从 0 开始）当地时间 hour 点
func at(day, hour int) time.Time {
	return testStart.AddDays(day).StartIn(testCal.Location()).Add(time.Duration(hour) * time.Hour)
}

type harness struct {
	store    *memStore
	locker   *memLocker
	model    *fakeModel
	queue    *fakeQueue
	clock    *testClock
	reports  *ReportService
	programs *ProgramService
}

func validReportJSON(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile("../report/testdata/valid_report.json")
	require.NoError(t, err)
	return string(raw)
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()

	cat, err := report.LoadCatalog()
	require.NoError(t, err)

	valid := validReportJSON(t)
	h := &harness{
		store:  newMemStore(),
		locker: newMemLocker(),
		model: &fakeModel{respond: func(context.Context, llm.Request) (string, error) {
			return valid, nil
		}},
		queue: &fakeQueue{},
		clock: &testClock{now: now},
	}

	var seq int64
	var seqMu sync.Mutex
	nextID := func() (int64, error) {
		seqMu.Lock()
		defer seqMu.Unlock()
		seq++
		return 1000 + seq, nil
	}

	h.reports = NewReportService(ReportDeps{
		Participants:    participantFake{h.store},
		CheckIns:        checkInFake{h.store},
		Reports:         reportFake{h.store},
		Posts:           postFake{h.store},
		Locker:          h.locker,
		Model:           h.model,
		Retry:           h.queue,
		Resolver:        report.NewResolver(cat, "zh-CN", map[string]string{"sevenday.app": "en"}),
		Calendar:        testCal,
		NextID:          nextID,
		Now:             h.clock.Now,
		ModelTimeout:    time.Second,
		MembershipGrant: 30 * 24 * time.Hour,
		Version:         "v2",
	})
	h.programs = NewProgramService(ProgramDeps{
		Participants: participantFake{h.store},
		CheckIns:     checkInFake{h.store},
		Reports:      h.reports,
		Calendar:     testCal,
		NextID:       nextID,
		Now:          h.clock.Now,
	})
	return h
}

// addParticipant 已开营的参与者
func (h *harness) addParticipant(id int64, status model.ProgramStatus) {
	start := testStart.Stored()
	p := model.Participant{
		BaseModel:     model.BaseModel{ID: id},
		Nickname:      "Ada",
		YearsActive:   3,
		SkillLevel:    "intermediate",
		Goals:         "run a half marathon",
		ProgramStatus: status,
	}
	if status != model.ProgramNotStarted {
		p.ProgramStartDate = &start
	}
	h.store.mu.Lock()
	h.store.participants[id] = p
	h.store.mu.Unlock()
}

// addCheckIn day 从 0 开始，提交时间为当天 07:00
func (h *harness) addCheckIn(pid int64, day int, status model.ReviewStatus) int64 {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	id := pid*100 + int64(day) + 1
	h.store.checkIns[id] = model.CheckIn{
		BaseModel:     model.BaseModel{ID: id},
		ParticipantID: pid,
		CheckInDate:   testStart.AddDays(day).Stored(),
		ReviewStatus:  status,
		SubmittedAt:   at(day, 7),
		ActivityType:  "running",
		MediaRefs:     model.StringList{"img/" + time.Duration(id).String()},
	}
	return id
}

func (h *harness) addFullWeek(pid int64) {
	for day := 0; day < program.ProgramDays; day++ {
		h.addCheckIn(pid, day, model.ReviewApproved)
	}
}

func self(id string) Actor {
	return Actor{ParticipantID: id}
}
