package catalog

import (
	"context"
	"errors"
	"fmt"

	"roomstay/internal/domain"
	"roomstay/internal/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("room not found")
	ErrValidation = errors.New("room failed validation")
)

// ValidationError wraps ErrValidation and carries the per-field tag map so
// the handler can return it as structured details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%v: %v", ErrValidation, e.Fields) }
func (e *ValidationError) Unwrap() error { return ErrValidation }

type roomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, city string, limit, offset int) ([]domain.Room, error)
}

type Service struct {
	rooms roomStore
}

func NewService(rooms roomStore) *Service {
	return &Service{rooms: rooms}
}

func (s *Service) CreateRoom(ctx context.Context, ownerID int64, req CreateRoomRequest) (*domain.Room, error) {
	room := &domain.Room{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
		Address:     req.Address,
		Rent:        req.Rent,
		Available:   true,
	}
	if fields := validator.Validate(room); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *Service) ListRooms(ctx context.Context, q ListQuery) ([]domain.Room, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return s.rooms.List(ctx, q.City, limit, offset)
}
