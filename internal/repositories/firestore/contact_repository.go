package firestore

import (
	"context"
	"errors"
	"time"

	domain "github.com/absign/storefront/internal/domain"
	pfirestore "github.com/absign/storefront/internal/platform/firestore"
	"github.com/absign/storefront/internal/repositories"
)

const contactMessagesCollection = "contactMessages"

// ContactRepository appends contact form submissions.
type ContactRepository struct {
	base *pfirestore.BaseRepository[contactMessageDocument]
	now  func() time.Time
}

var _ repositories.ContactRepository = (*ContactRepository)(nil)

func NewContactRepository(provider *pfirestore.Provider) (*ContactRepository, error) {
	if provider == nil {
		return nil, errors.New("contact repository: firestore provider is required")
	}
	return &ContactRepository{
		base: pfirestore.NewBaseRepository[contactMessageDocument](provider, contactMessagesCollection),
		now:  time.Now,
	}, nil
}

// Insert fails with a conflict when the id is already used.
func (r *ContactRepository) Insert(ctx context.Context, msg domain.ContactMessage) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	return r.base.Create(ctx, msg.ID, contactMessageDocument{
		Name:      msg.Name,
		Email:     msg.Email,
		Phone:     msg.Phone,
		Product:   msg.Product,
		Message:   msg.Message,
		CreatedAt: createdAt.UTC(),
	})
}

type contactMessageDocument struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Phone     string    `firestore:"phone"`
	Product   string    `firestore:"product,omitempty"`
	Message   string    `firestore:"message"`
	CreatedAt time.Time `firestore:"createdAt"`
}
