package catalog

import (
	"context"

	"rewardgate/pkg/db/option"
	"rewardgate/pkg/repository"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("catalog",
	fx.Provide(
		NewStore,
		func(s *Store) VideoCatalog { return s },
		func(s *Store) CommentStore { return s },
		func(s *Store) ProfileStore { return s },
		func(s *Store) SignupOrigins { return s },
	),
)

// Store reads the collaborator tables from the shared database.
type Store struct {
	db       *gorm.DB
	videos   repository.Repository[Video]
	comments repository.Repository[Comment]
	profiles repository.Repository[UserProfile]
}

type Params struct {
	fx.In
	DB *gorm.DB
}

func NewStore(p Params) *Store {
	return &Store{
		db:       p.DB,
		videos:   repository.ProvideStore[Video](p.DB),
		comments: repository.ProvideStore[Comment](p.DB),
		profiles: repository.ProvideStore[UserProfile](p.DB),
	}
}

func (s *Store) Duration(ctx context.Context, videoID string) (int64, bool, error) {
	v, err := s.videos.FindOne(ctx, &Video{ID: videoID})
	if err != nil {
		return 0, false, err
	}
	if v == nil || v.DurationSeconds == nil {
		return 0, false, nil
	}
	return *v.DurationSeconds, true, nil
}

var commentSort = map[string]bool{"created_at": true}

func (s *Store) LatestComment(ctx context.Context, userID, videoID string) (string, bool, error) {
	c, err := s.comments.FindOne(ctx, &Comment{UserID: userID, VideoID: videoID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: commentSort}),
	)
	if err != nil {
		return "", false, err
	}
	if c == nil {
		return "", false, nil
	}
	return c.Content, true, nil
}

func (s *Store) Profile(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.profiles.FindOne(ctx, &UserProfile{UserID: userID})
	if err != nil || p == nil {
		return nil, err
	}
	return &Profile{
		UserID:           p.UserID,
		AvatarURL:        p.AvatarURL,
		AvatarVerified:   p.AvatarVerified,
		DisplayName:      p.DisplayName,
		SignupOriginHash: p.SignupOriginHash,
	}, nil
}

func (s *Store) CountOthersByOrigin(ctx context.Context, originHash, userID string) (int64, error) {
	if originHash == "" {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&UserProfile{}).
		Where("signup_origin_hash = ? AND user_id <> ?", originHash, userID).
		Count(&n).Error
	return n, err
}
