package repository

import "github.com/facturino/ledger-api/internal/domain/entity"

// UserRepository defines the persistence port for users (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	GetByEmailAndCompany(email, companyID string) (*entity.User, error)
}
