package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/model"
	"github.com/outreachly/outreach-backend/internal/repository"
	"github.com/outreachly/outreach-backend/internal/storage"
)

// maxImportBytes bounds one uploaded file
const maxImportBytes = 32 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportResult reports one CSV import
type ImportResult struct {
	Message       string `json:"message"`
	InsertedCount int    `json:"inserted_count"`
}

type ImportService struct {
	Source       storage.Source
	ProspectRepo repository.ProspectRepositoryInterface
	Log          *logger.Logger
}

// ImportCSV loads the uploaded file at path into the prospect store. A
// file without data rows imports nothing and succeeds.
func (s *ImportService) ImportCSV(ctx context.Context, path string) (*ImportResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, appErrors.NewValidation("", "Missing path")
	}

	rc, err := s.Source.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) > maxImportBytes {
		return nil, fmt.Errorf("read %s: file exceeds %d bytes", path, maxImportBytes)
	}

	prospects, err := ParseProspects(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(prospects) == 0 {
		return &ImportResult{Message: "No rows to insert"}, nil
	}

	inserted, err := s.ProspectRepo.InsertBatch(ctx, prospects)
	if err != nil {
		return nil, err
	}

	s.Log.Info().Str("path", path).Int("inserted", inserted).Msg("prospects imported")
	return &ImportResult{
		Message:       "CSV processed successfully",
		InsertedCount: inserted,
	}, nil
}

// ParseProspects reads header-keyed CSV rows. name and email columns are
// required (case-insensitive); known optional columns map to prospect
// fields and any other column is kept verbatim in Attributes. Rows with a
// blank email are dropped.
func ParseProspects(raw []byte) ([]model.Prospect, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, errors.New("file is not valid UTF-8")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cols := make([]string, len(header))
	index := map[string]int{}
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[cols[i]]; !dup {
			index[cols[i]] = i
		}
	}
	for _, required := range []string{"name", "email"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var prospects []model.Prospect
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		p := model.Prospect{
			Name:  field("name"),
			Email: field("email"),
		}
		if p.Email == "" {
			continue
		}
		p.CompanyName = optional(field("company_name"))
		p.Website = optional(field("website"))
		p.LinkedIn = optional(field("linkedin"))
		p.Industry = optional(field("industry"))
		p.TechStack = optional(field("tech_stack"))

		for i, col := range cols {
			if knownColumns[col] || i >= len(record) || col == "" {
				continue
			}
			if p.Attributes == nil {
				p.Attributes = model.Attributes{}
			}
			p.Attributes[strings.TrimSpace(header[i])] = record[i]
		}
		prospects = append(prospects, p)
	}
	return prospects, nil
}

var knownColumns = map[string]bool{
	"name": true, "email": true, "company_name": true, "website": true,
	"linkedin": true, "industry": true, "tech_stack": true,
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
