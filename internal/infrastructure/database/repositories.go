package database

import (
	"github.com/niteshmahajan-63/thewell-checkout/internal/adapter/repository"
	domainRepo "github.com/niteshmahajan-63/thewell-checkout/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Mirror       domainRepo.MirrorRepository
	WebhookEvent domainRepo.WebhookEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Mirror:       repository.NewMirrorRepository(db, logger),
		WebhookEvent: repository.NewWebhookEventRepository(db, logger),
	}
}
