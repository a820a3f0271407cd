package sharing

import "context"

type Repository interface {
	Create(ctx context.Context, sh Share) error
	Update(ctx context.Context, sh Share) error
	GetByID(ctx context.Context, id string) (Share, error)
	ListByVisit(ctx context.Context, visitID string) ([]Share, error)
	GetActiveShare(ctx context.Context, visitID, granteeUserID string) (Share, error)
	ListByGrantee(ctx context.Context, granteeUserID string) ([]Share, error)
}
