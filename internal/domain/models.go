// Package domain defines the persistence models for seen posts, infractions,
// and punishments. These types are mapped with GORM and form the core data
// layer of the moderation bot.
package domain

import "time"

// SeenPost records a content fingerprint that has been posted in a guild.
// Rows are append-only: once inserted they are never updated or deleted, so
// a fingerprint that has been seen stays seen for the lifetime of the store.
//
// Fields:
//   - Key: the guild-scoped fingerprint ("<guild_id>:<hex digest>"), unique.
//   - GuildID: the community the fingerprint was seen in; indexed for audits.
//   - CreatedAt: insert timestamp managed by GORM.
type SeenPost struct {
	Key       string    `json:"key"      gorm:"type:TEXT NOT NULL;primaryKey"`
	GuildID   string    `json:"guild_id" gorm:"type:varchar(64);not null;index:idx_seen_guild"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for SeenPost.
func (SeenPost) TableName() string { return "seen_posts" }

// Infraction is the per-user violation counter. One row per user who has
// ever posted a duplicate; Count starts at 1 and only ever grows.
type Infraction struct {
	UserID    string    `json:"user_id" gorm:"type:varchar(64);primaryKey"`
	Count     int64     `json:"count"   gorm:"not null;check:count >= 1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Infraction.
func (Infraction) TableName() string { return "infractions" }

// Punishment is an audit record of one applied posting restriction. Unlike
// the infraction counter it is best-effort: a failed audit write never undoes
// a recorded violation.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID / GuildID / MessageID: who was punished, where, and for what.
//   - Count: the user's infraction count at decision time.
//   - DurationSecs: restriction length in whole seconds.
//   - Reason: the human-readable reason sent to the platform.
//   - CreatedAt: timestamp managed by GORM.
type Punishment struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string    `json:"user_id"       gorm:"type:varchar(64);not null;index:idx_punishments_user"`
	GuildID      string    `json:"guild_id"      gorm:"type:varchar(64);not null"`
	MessageID    string    `json:"message_id"    gorm:"type:varchar(64);not null"`
	Count        int64     `json:"count"         gorm:"not null"`
	DurationSecs int64     `json:"duration_secs" gorm:"not null"`
	Reason       string    `json:"reason"        gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Punishment.
func (Punishment) TableName() string { return "punishments" }
