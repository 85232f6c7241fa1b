package catalog

import "context"

//go:generate mockgen -source=catalog.go -destination=mocks/catalog.go -package=mocks

// VideoCatalog reports the authoritative duration of an uploaded video.
// known is false while the duration has not been probed yet.
type VideoCatalog interface {
	Duration(ctx context.Context, videoID string) (seconds int64, known bool, err error)
}

type CommentStore interface {
	// LatestComment returns the most recent comment text of userID on videoID.
	LatestComment(ctx context.Context, userID, videoID string) (text string, found bool, err error)
}

// ProfileStore returns nil, nil for an unknown user.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// SignupOrigins counts the other accounts that signed up from the same hashed
// origin. userID itself is never counted.
type SignupOrigins interface {
	CountOthersByOrigin(ctx context.Context, originHash, userID string) (int64, error)
}

type Profile struct {
	UserID           string
	AvatarURL        string
	AvatarVerified   bool
	DisplayName      string
	SignupOriginHash string
}
