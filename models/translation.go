package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostTranslation accumulates generated content for one post and language.
// The preprocessor fills title/score first; the content processor later
// merges per-platform bodies into the same document.
// Collection: post_translations (unique index on post_id+language).
type PostTranslation struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID            primitive.ObjectID `bson:"post_id" json:"post_id"`
	Language          string             `bson:"language" json:"language"`
	Score             float64            `bson:"score" json:"score"`
	TitleTranslated   string             `bson:"title_translated" json:"title_translated"`
	ContentTranslated string             `bson:"content_translated" json:"content_translated"`
	FeaturedImageURL  string             `bson:"featured_image_url" json:"featured_image_url"`
	ContentTelegram   string             `bson:"content_telegram" json:"content_telegram"`
	ContentInstagram  string             `bson:"content_instagram" json:"content_instagram"`
	ContentTwitter    string             `bson:"content_twitter" json:"content_twitter"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// TranslationUpdate is the create-or-merge payload for
// POST /posts/{id}/translations. Nil fields are left untouched on merge so
// a platform pass can never blank out previously generated content.
type TranslationUpdate struct {
	Language          string   `json:"language"`
	Score             *float64 `json:"score,omitempty"`
	TitleTranslated   *string  `json:"title_translated,omitempty"`
	ContentTranslated *string  `json:"content_translated,omitempty"`
	FeaturedImageURL  *string  `json:"featured_image_url,omitempty"`
	ContentTelegram   *string  `json:"content_telegram,omitempty"`
	ContentInstagram  *string  `json:"content_instagram,omitempty"`
	ContentTwitter    *string  `json:"content_twitter,omitempty"`
}

// SetFields returns the bson $set document for the update, containing only
// the populated fields.
func (u TranslationUpdate) SetFields() map[string]interface{} {
	set := map[string]interface{}{}
	if u.Score != nil {
		set["score"] = *u.Score
	}
	if u.TitleTranslated != nil {
		set["title_translated"] = *u.TitleTranslated
	}
	if u.ContentTranslated != nil {
		set["content_translated"] = *u.ContentTranslated
	}
	if u.FeaturedImageURL != nil {
		set["featured_image_url"] = *u.FeaturedImageURL
	}
	if u.ContentTelegram != nil {
		set["content_telegram"] = *u.ContentTelegram
	}
	if u.ContentInstagram != nil {
		set["content_instagram"] = *u.ContentInstagram
	}
	if u.ContentTwitter != nil {
		set["content_twitter"] = *u.ContentTwitter
	}
	return set
}
