package service_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/outreachly/outreach-backend/internal/content"
	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/mailer"
	"github.com/outreachly/outreach-backend/internal/model"
	"github.com/outreachly/outreach-backend/internal/repository"
)

// --- Mock Repositories ---

// MockEmailRepo keeps records in memory and applies the same guarded
// transitions as the SQL store
type MockEmailRepo struct {
	mu     sync.Mutex
	emails map[string]*model.Email
	err    error // returned by every call when set

	dueCalls int
}

func NewMockEmailRepo(seed ...*model.Email) *MockEmailRepo {
	m := &MockEmailRepo{emails: map[string]*model.Email{}}
	for _, e := range seed {
		m.emails[e.ID] = e
	}
	return m
}

func (m *MockEmailRepo) Get(id string) *model.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emails[id]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

func (m *MockEmailRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.emails)
}

func (m *MockEmailRepo) Create(ctx context.Context, e *model.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, dup := m.emails[e.ID]; dup {
		return appErrors.NewStore("create email", errors.New("duplicate id"))
	}
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.emails[e.ID] = &cp
	return nil
}

func (m *MockEmailRepo) UpdateContent(ctx context.Context, id, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emails[id]
	if !ok || e.Status != model.StatusDrafting {
		return repository.ErrInvalidTransition
	}
	e.Subject, e.Body, e.Status, e.LastError = subject, body, model.StatusGenerated, ""
	return nil
}

func (m *MockEmailRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emails[id]
	if !ok || e.Status != model.StatusGenerated {
		return repository.ErrInvalidTransition
	}
	e.Status, e.SentAt = model.StatusSent, &at
	if e.Viewed {
		e.Status = model.StatusViewed
	}
	return nil
}

func (m *MockEmailRepo) UpdateStatus(ctx context.Context, id string, from, to model.EmailStatus, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emails[id]
	if !ok || e.Status != from {
		return repository.ErrInvalidTransition
	}
	e.Status, e.LastError = to, lastError
	return nil
}

func (m *MockEmailRepo) MarkViewed(ctx context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	e, ok := m.emails[id]
	if !ok || e.Viewed {
		return false, nil
	}
	switch e.Status {
	case model.StatusGenerated, model.StatusSent, model.StatusFollowedUp:
	default:
		return false, nil
	}
	e.Viewed, e.ViewedAt = true, &at
	if e.Status == model.StatusSent {
		e.Status = model.StatusViewed
	}
	return true, nil
}

func (m *MockEmailRepo) MarkFollowedUp(ctx context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emails[id]
	if !ok || e.FollowUp || (e.Status != model.StatusSent && e.Status != model.StatusViewed) {
		return false, nil
	}
	e.FollowUp, e.Status, e.SentAt = true, model.StatusFollowedUp, &at
	return true, nil
}

func (m *MockEmailRepo) GetByID(ctx context.Context, id string) (*model.Email, error) {
	if e := m.Get(id); e != nil {
		return e, nil
	}
	return nil, appErrors.NewNotFound("email", id)
}

// ListDueForFollowUp orders by (sent_at, id) and honours the cursor and
// limit the way the SQL store does
func (m *MockEmailRepo) ListDueForFollowUp(ctx context.Context, cutoff time.Time, after *repository.DueCursor, limit int) ([]*model.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.dueCalls++
	var due []*model.Email
	for _, e := range m.emails {
		if e.FollowUp || e.SentAt == nil || e.SentAt.After(cutoff) {
			continue
		}
		if e.Status != model.StatusSent && e.Status != model.StatusViewed {
			continue
		}
		if after != nil && !dueAfter(e, after) {
			continue
		}
		cp := *e
		due = append(due, &cp)
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].SentAt.Equal(*due[j].SentAt) {
			return due[i].SentAt.Before(*due[j].SentAt)
		}
		return due[i].ID < due[j].ID
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func dueAfter(e *model.Email, c *repository.DueCursor) bool {
	if e.SentAt.Equal(c.SentAt) {
		return e.ID > c.ID
	}
	return e.SentAt.After(c.SentAt)
}

func (m *MockEmailRepo) DueCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dueCalls
}

func (m *MockEmailRepo) List(ctx context.Context, offset, limit int, status string) ([]*model.Email, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*model.Email
	for _, e := range m.emails {
		if status == "" || string(e.Status) == status {
			cp := *e
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *MockEmailRepo) Stats(ctx context.Context) (*model.EmailStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.EmailStats{Emails: len(m.emails)}
	for _, e := range m.emails {
		if e.Viewed {
			s.Viewed++
		}
		if e.FollowUp {
			s.FollowedUp++
		}
	}
	return s, nil
}

type MockProspectRepo struct {
	mu        sync.Mutex
	prospects []model.Prospect
	findErr   error
}

func (m *MockProspectRepo) InsertBatch(ctx context.Context, prospects []model.Prospect) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range prospects {
		p.ID = int64(len(m.prospects) + 1)
		m.prospects = append(m.prospects, p)
	}
	return len(prospects), nil
}

func (m *MockProspectRepo) GetByID(ctx context.Context, id int64) (*model.Prospect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.prospects {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, appErrors.NewNotFound("prospect", strconv.FormatInt(id, 10))
}

func (m *MockProspectRepo) FindMatch(ctx context.Context, email, company string) (*model.Prospect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, p := range m.prospects {
		if p.Email == email || (company != "" && p.Name == company) {
			cp := p
			return &cp, nil
		}
	}
	return nil, appErrors.NewNotFound("prospect", email)
}

func (m *MockProspectRepo) List(ctx context.Context, offset, limit int) ([]*model.Prospect, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Prospect{}
	for i := range m.prospects {
		out = append(out, &m.prospects[i])
	}
	return out, len(out), nil
}

// --- Mock collaborators ---

type MockGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (g *MockGenerator) Generate(ctx context.Context, prompt string) (content.Content, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return content.Content{}, g.err
	}
	return content.Classify(g.text), nil
}

type MockSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
	// failFor makes delivery fail for one recipient only
	failFor string
}

func (s *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil || (s.failFor != "" && msg.To == s.failFor) {
		if s.err != nil {
			return s.err
		}
		return errors.New("550 mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *MockSender) Sent() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}
