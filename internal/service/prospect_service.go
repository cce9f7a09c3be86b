package service

import (
	"context"

	"github.com/outreachly/outreach-backend/internal/model"
	"github.com/outreachly/outreach-backend/internal/repository"
)

type ProspectService struct {
	ProspectRepo repository.ProspectRepositoryInterface
}

// ProspectPage is one page of the prospect listing
type ProspectPage struct {
	Data       []*model.Prospect `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

func (s *ProspectService) ListProspects(ctx context.Context, page, pageSize int) (*ProspectPage, error) {
	page, pageSize, offset := normalizePage(page, pageSize)

	prospects, total, err := s.ProspectRepo.List(ctx, offset, pageSize)
	if err != nil {
		return nil, err
	}
	return &ProspectPage{Data: prospects, Pagination: newPagination(page, pageSize, total)}, nil
}
