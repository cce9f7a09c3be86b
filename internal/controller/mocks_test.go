package controller_test

import (
	"context"
	"sync"
	"time"

	"github.com/outreachly/outreach-backend/internal/content"
	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/mailer"
	"github.com/outreachly/outreach-backend/internal/model"
	"github.com/outreachly/outreach-backend/internal/repository"
)

// --- Mock Repositories ---

type MockEmailRepo struct {
	mu     sync.Mutex
	emails map[string]*model.Email
	err    error
}

func newMockEmailRepo(seed ...*model.Email) *MockEmailRepo {
	m := &MockEmailRepo{emails: map[string]*model.Email{}}
	for _, e := range seed {
		m.emails[e.ID] = e
	}
	return m
}

func (m *MockEmailRepo) get(id string) *model.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emails[id]
}

func (m *MockEmailRepo) Create(ctx context.Context, e *model.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *e
	m.emails[e.ID] = &cp
	return nil
}

func (m *MockEmailRepo) UpdateContent(ctx context.Context, id, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.emails[id]
	e.Subject, e.Body, e.Status = subject, body, model.StatusGenerated
	return nil
}

func (m *MockEmailRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.emails[id]
	e.Status, e.SentAt = model.StatusSent, &at
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
	e.Viewed, e.ViewedAt, e.Status = true, &at, model.StatusViewed
	return true, nil
}

func (m *MockEmailRepo) MarkFollowedUp(ctx context.Context, id string, at time.Time) (bool, error) {
	return false, nil
}

func (m *MockEmailRepo) GetByID(ctx context.Context, id string) (*model.Email, error) {
	if e := m.get(id); e != nil {
		return e, nil
	}
	return nil, appErrors.NewNotFound("email", id)
}

func (m *MockEmailRepo) ListDueForFollowUp(ctx context.Context, cutoff time.Time, after *repository.DueCursor, limit int) ([]*model.Email, error) {
	return nil, nil
}

func (m *MockEmailRepo) List(ctx context.Context, offset, limit int, status string) ([]*model.Email, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Email{}
	for _, e := range m.emails {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *MockEmailRepo) Stats(ctx context.Context) (*model.EmailStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.EmailStats{Emails: len(m.emails)}, nil
}

type MockProspectRepo struct {
	prospects []model.Prospect
}

func (m *MockProspectRepo) InsertBatch(ctx context.Context, prospects []model.Prospect) (int, error) {
	m.prospects = append(m.prospects, prospects...)
	return len(prospects), nil
}

func (m *MockProspectRepo) GetByID(ctx context.Context, id int64) (*model.Prospect, error) {
	return nil, appErrors.NewNotFound("prospect", "")
}

func (m *MockProspectRepo) FindMatch(ctx context.Context, email, company string) (*model.Prospect, error) {
	return nil, appErrors.NewNotFound("prospect", email)
}

func (m *MockProspectRepo) List(ctx context.Context, offset, limit int) ([]*model.Prospect, int, error) {
	out := []*model.Prospect{}
	for i := range m.prospects {
		out = append(out, &m.prospects[i])
	}
	return out, len(out), nil
}

// --- Mock collaborators ---

type MockGenerator struct{ text string }

func (g *MockGenerator) Generate(ctx context.Context, prompt string) (content.Content, error) {
	return content.Classify(g.text), nil
}

type MockSender struct{ err error }

func (s *MockSender) Send(ctx context.Context, msg mailer.Message) error { return s.err }
