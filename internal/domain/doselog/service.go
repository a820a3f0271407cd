package doselog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	doses    DoseRepository
	symptoms SymptomRepository
	now      func() time.Time
}

func NewService(doses DoseRepository, symptoms SymptomRepository) *Service {
	return &Service{
		doses:    doses,
		symptoms: symptoms,
		now:      time.Now,
	}
}

type LogDoseInput struct {
	MedicationID string
	ScheduledAt  time.Time
	GivenAt      *time.Time
	Status       DoseStatus
	Notes        string
}

// LogDose registra una observación de dosis contra su instante programado.
// Si el cliente re-loggea el mismo instante, se agrega un evento nuevo;
// el motor de adherencia se queda con el último por LoggedAt (last write wins).
func (s *Service) LogDose(ctx context.Context, visitID string, in LogDoseInput) (LoggedDoseEvent, error) {
	visitID = strings.TrimSpace(visitID)
	medID := strings.TrimSpace(in.MedicationID)

	if visitID == "" || medID == "" {
		return LoggedDoseEvent{}, ErrInvalidInput
	}
	if in.ScheduledAt.IsZero() {
		return LoggedDoseEvent{}, fmt.Errorf("%w: scheduled_at required", ErrInvalidInput)
	}

	switch in.Status {
	case DoseGiven, DoseMissed, DoseSkipped:
	default:
		return LoggedDoseEvent{}, fmt.Errorf("%w: bad status %q", ErrInvalidInput, in.Status)
	}

	if in.Status != DoseGiven && in.GivenAt != nil {
		return LoggedDoseEvent{}, fmt.Errorf("%w: given_at only valid for status given", ErrInvalidInput)
	}

	e := LoggedDoseEvent{
		ID:           uuid.NewString(),
		VisitID:      visitID,
		MedicationID: medID,
		ScheduledAt:  in.ScheduledAt,
		GivenAt:      in.GivenAt,
		Status:       in.Status,
		LoggedAt:     s.now(),
		Notes:        strings.TrimSpace(in.Notes),
	}

	if err := s.doses.Append(ctx, e); err != nil {
		return LoggedDoseEvent{}, err
	}
	return e, nil
}

type LogSymptomInput struct {
	Date     time.Time
	Appetite int
	Energy   int
	Panting  bool
	Note     string
}

func (s *Service) LogSymptom(ctx context.Context, visitID string, in LogSymptomInput) (SymptomEntry, error) {
	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return SymptomEntry{}, ErrInvalidInput
	}
	if in.Date.IsZero() {
		return SymptomEntry{}, fmt.Errorf("%w: date required", ErrInvalidInput)
	}
	if in.Appetite < 1 || in.Appetite > 5 || in.Energy < 1 || in.Energy > 5 {
		return SymptomEntry{}, fmt.Errorf("%w: appetite/energy must be 1-5", ErrInvalidInput)
	}

	e := SymptomEntry{
		ID:       uuid.NewString(),
		VisitID:  visitID,
		Date:     in.Date,
		Appetite: in.Appetite,
		Energy:   in.Energy,
		Panting:  in.Panting,
		Note:     strings.TrimSpace(in.Note),
		LoggedAt: s.now(),
	}

	if err := s.symptoms.Append(ctx, e); err != nil {
		return SymptomEntry{}, err
	}
	return e, nil
}

func (s *Service) ListDoses(ctx context.Context, visitID string, filter DoseFilter) ([]LoggedDoseEvent, error) {
	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return nil, ErrInvalidInput
	}
	return s.doses.ListByVisit(ctx, visitID, filter)
}

func (s *Service) ListSymptoms(ctx context.Context, visitID string, from, to time.Time) ([]SymptomEntry, error) {
	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return nil, ErrInvalidInput
	}
	return s.symptoms.ListByVisit(ctx, visitID, from, to)
}
