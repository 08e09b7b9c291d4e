package prestation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const basePath = "/api/prestation-types"

var ErrInvalid = errors.New("invalid prestation type")

type ServicePrestation interface {
	GetAll(ctx context.Context) ([]PrestationType, error)
	GetByCode(ctx context.Context, code string) (*PrestationType, error)
	Create(ctx context.Context, p *PrestationType) (*PrestationType, error)
	Update(ctx context.Context, id int64, p *PrestationType) (*PrestationType, error)
	Delete(ctx context.Context, id int64) error
}

type PrestationService struct {
	API Requester
}

func NewService(api Requester) *PrestationService {
	return &PrestationService{API: api}
}

func (s *PrestationService) GetAll(ctx context.Context) ([]PrestationType, error) {
	types := make([]PrestationType, 0)
	if err := s.API.Do(ctx, http.MethodGet, basePath, nil, nil, &types); err != nil {
		return nil, fmt.Errorf("list prestation types: %w", err)
	}
	return types, nil
}

func (s *PrestationService) GetByCode(ctx context.Context, code string) (*PrestationType, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalid)
	}

	var p PrestationType
	if err := s.API.Do(ctx, http.MethodGet, itemPath(url.PathEscape(code)), nil, nil, &p); err != nil {
		return nil, fmt.Errorf("get prestation type %s: %w", code, err)
	}
	return &p, nil
}

func (s *PrestationService) Create(ctx context.Context, p *PrestationType) (*PrestationType, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	payload := *p
	payload.ID = nil

	var created PrestationType
	if err := s.API.Do(ctx, http.MethodPost, basePath, nil, payload, &created); err != nil {
		return nil, fmt.Errorf("create prestation type: %w", err)
	}
	return &created, nil
}

func (s *PrestationService) Update(ctx context.Context, id int64, p *PrestationType) (*PrestationType, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	payload := *p
	payload.ID = &id

	var updated PrestationType
	if err := s.API.Do(ctx, http.MethodPut, itemPath(strconv.FormatInt(id, 10)), nil, payload, &updated); err != nil {
		return nil, fmt.Errorf("update prestation type %d: %w", id, err)
	}
	return &updated, nil
}

func (s *PrestationService) Delete(ctx context.Context, id int64) error {
	if err := s.API.Do(ctx, http.MethodDelete, itemPath(strconv.FormatInt(id, 10)), nil, nil, nil); err != nil {
		return fmt.Errorf("delete prestation type %d: %w", id, err)
	}
	return nil
}

func itemPath(segment string) string {
	return basePath + "/" + segment
}

func validate(p *PrestationType) error {
	if p == nil {
		return fmt.Errorf("%w: body is required", ErrInvalid)
	}
	p.Code = strings.TrimSpace(p.Code)
	p.Description = strings.TrimSpace(p.Description)
	if p.Code == "" || p.Description == "" {
		return fmt.Errorf("%w: code and description are required", ErrInvalid)
	}
	return nil
}
