package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Platform identifies a delivery channel type.
type Platform string

const (
	PlatformTelegram  Platform = "TELEGRAM"
	PlatformWordpress Platform = "WORDPRESS"
)

// ContentPlatforms are the per-platform translation variants the content
// processor can generate. These are request tokens, distinct from the
// Platform delivery enum above.
var ContentPlatforms = []string{"telegram", "instagram", "twitter"}

// IsContentPlatform reports whether name is a known per-platform content
// variant.
func IsContentPlatform(name string) bool {
	for _, p := range ContentPlatforms {
		if p == name {
			return true
		}
	}
	return false
}

// Destination is a configured delivery target.
// Credentials is an opaque secret bundle interpreted by the publisher
// (e.g. bot_token/chat_id for Telegram, site_url/username/app_password
// for WordPress).
// Collection: destinations (unique index on name).
type Destination struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Platform    Platform           `bson:"platform" json:"platform"`
	Language    string             `bson:"language" json:"language"`
	Credentials map[string]string  `bson:"credentials" json:"credentials"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
