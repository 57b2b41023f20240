package repository

import (
	"context"
	"maps"
	"strings"

	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
	"github.com/brandlink/engine/internal/validators"
	appErr "github.com/brandlink/engine/pkg/errors"
)

type UserRepository interface {
	Create(ctx context.Context, in CreateUserInput) (string, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (models.User, error)
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, role *models.Role) ([]models.User, error)
}

type CreateUserInput struct {
	Role          models.Role       `json:"role" validate:"required,oneof=brand influencer"`
	Name          string            `json:"name" validate:"required,notblank,max=200"`
	Email         string            `json:"email" validate:"required,email"`
	Phone         *string           `json:"phone" validate:"omitempty,max=32"`
	Bio           *string           `json:"bio" validate:"omitempty,max=2000"`
	SocialLinks   map[string]string `json:"social_links" validate:"omitempty,dive,url"`
	Platform      *models.Platform  `json:"platform" validate:"omitempty,oneof=Instagram TikTok Facebook Snapchat"`
	FollowerCount int64             `json:"follower_count" validate:"gte=0"`
}

// UserPatch updates a user. Role and rating_avg cannot be patched.
type UserPatch struct {
	Name          models.Opt[string]            `json:"name"`
	Email         models.Opt[string]            `json:"email"`
	Phone         models.Opt[string]            `json:"phone"`
	Bio           models.Opt[string]            `json:"bio"`
	SocialLinks   models.Opt[map[string]string] `json:"social_links"`
	Platform      models.Opt[models.Platform]   `json:"platform"`
	FollowerCount models.Opt[int64]             `json:"follower_count"`
}

func (p UserPatch) validate() error {
	return firstErr(
		checkOpt("name", p.Name, false, "required,notblank,max=200"),
		checkOpt("email", p.Email, false, "required,email"),
		checkOpt("phone", p.Phone, true, "max=32"),
		checkOpt("bio", p.Bio, true, "max=2000"),
		checkOpt("social_links", p.SocialLinks, true, "omitempty,dive,url"),
		checkOpt("platform", p.Platform, true, "oneof=Instagram TikTok Facebook Snapchat"),
		checkOpt("follower_count", p.FollowerCount, false, "gte=0"),
	)
}

type userRepository struct {
	baseRepository[models.User, *models.User]
}

var _ UserRepository = (*userRepository)(nil)

func NewUserRepository(store *storage.Engine, rec *audit.Recorder) UserRepository {
	return &userRepository{baseRepository[models.User, *models.User]{
		store: store,
		audit: rec,
		kind:  models.KindUser,
		rows:  func(doc *models.Document) *[]models.User { return &doc.Users },
	}}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailTaken reports whether another live user already uses email.
func emailTaken(doc *models.Document, email, exceptID string) bool {
	for _, u := range doc.Users {
		if u.ID != exceptID && !u.IsDeleted() && u.Email == email {
			return true
		}
	}
	return false
}

func (r *userRepository) Create(ctx context.Context, in CreateUserInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validators.Check(in); err != nil {
		return "", err
	}

	id := r.store.NewID()
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		if emailTaken(doc, in.Email, "") {
			return appErr.Conflict("email %q is already registered", in.Email)
		}
		doc.Users = append(doc.Users, models.User{
			ID:            id,
			Role:          in.Role,
			Name:          in.Name,
			Email:         in.Email,
			Phone:         models.ClonePtr(in.Phone),
			Bio:           models.ClonePtr(in.Bio),
			SocialLinks:   maps.Clone(in.SocialLinks),
			Platform:      models.ClonePtr(in.Platform),
			FollowerCount: in.FollowerCount,
			Lifecycle:     models.NewLifecycle(r.store.Now()),
		})
		return nil
	})
	if err := r.finish(ctx, err, models.ActionCreate, id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	email = normalizeEmail(email)
	users, err := r.list(ctx, func(_ *models.Document, u *models.User) bool { return u.Email == email })
	if err != nil {
		return models.User{}, err
	}
	if len(users) == 0 {
		return models.User{}, appErr.NotFound(models.KindUser, email)
	}
	return users[0], nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch UserPatch) (models.User, error) {
	if patch.Email.HasValue() {
		patch.Email.Val = normalizeEmail(patch.Email.Val)
	}
	if err := patch.validate(); err != nil {
		return models.User{}, err
	}

	var out models.User
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		u, err := r.find(doc, id)
		if err != nil {
			return err
		}
		if patch.Email.HasValue() && emailTaken(doc, patch.Email.Val, id) {
			return appErr.Conflict("email %q is already registered", patch.Email.Val)
		}
		if patch.Name.HasValue() {
			u.Name = strings.TrimSpace(patch.Name.Val)
		}
		if patch.Email.HasValue() {
			u.Email = patch.Email.Val
		}
		patch.Phone.ApplyTo(&u.Phone)
		patch.Bio.ApplyTo(&u.Bio)
		patch.Platform.ApplyTo(&u.Platform)
		if patch.SocialLinks.Set {
			u.SocialLinks = maps.Clone(patch.SocialLinks.Val)
		}
		if patch.FollowerCount.HasValue() {
			u.FollowerCount = patch.FollowerCount.Val
		}
		u.Touch(r.store.Now())
		out = detach(*u)
		return nil
	})
	if err := r.finish(ctx, err, models.ActionUpdate, id); err != nil {
		return models.User{}, err
	}
	return out, nil
}

func (r *userRepository) List(ctx context.Context, role *models.Role) ([]models.User, error) {
	return r.list(ctx, func(_ *models.Document, u *models.User) bool {
		return role == nil || u.Role == *role
	})
}
