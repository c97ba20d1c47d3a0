package catalog

import "time"

const (
	DirectionLeft  = "left"
	DirectionRight = "right"
)

// Swipe is a single directional interaction with a catalog video. Written by
// the mobile client; read-only to this service.
type Swipe struct {
	UserID    string    `firestore:"userId" json:"user_id"`
	VideoID   string    `firestore:"videoId" json:"video_id"`
	Direction string    `firestore:"direction" json:"direction"`
	CreatedAt time.Time `firestore:"createdAt" json:"created_at"`
}

// Valid reports whether the swipe direction is one of the two recognized
// values. Anything else is discarded during aggregation.
func (s Swipe) Valid() bool {
	return s.Direction == DirectionLeft || s.Direction == DirectionRight
}

type Stats struct {
	Views      int64 `firestore:"views" json:"views"`
	Likes      int64 `firestore:"likes" json:"likes"`
	SuperLikes int64 `firestore:"superLikes" json:"super_likes"`
	Dislikes   int64 `firestore:"dislikes" json:"dislikes"`
	Comments   int64 `firestore:"comments" json:"comments"`
	Tips       int64 `firestore:"tips" json:"tips"`
}

// Video is one catalog entry. The document ID doubles as the storage object
// filename.
type Video struct {
	ID          string    `firestore:"-" json:"id"`
	Description string    `firestore:"description" json:"description"`
	CreatorID   string    `firestore:"creatorId" json:"creator_id"`
	DisplayName string    `firestore:"displayName" json:"display_name"`
	AvatarURL   *string   `firestore:"avatarUrl" json:"avatar_url"`
	Title       string    `firestore:"title" json:"title"`
	VideoURL    string    `firestore:"videoUrl" json:"video_url"`
	IsGenerated bool      `firestore:"isGenerated" json:"is_generated"`
	Stats       Stats     `firestore:"stats" json:"stats"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
}
