package model

import "time"

// Like is a row in the `user_likes` table: a user's membership in the set
// of people who liked a resource.  The (user_id, resource_id) pair is the
// primary key, so liking twice cannot produce a second row.
type Like struct {
    UserID     uint64 // user_likes.user_id
    ResourceID uint64 // user_likes.resource_id
}

// Save mirrors `user_saves`, the bookmark set.  Same composite-key shape as
// likes.
type Save struct {
    UserID     uint64 // user_saves.user_id
    ResourceID uint64 // user_saves.resource_id
}

// Rating is a row in the `ratings` table.  The (resource_id, user_id)
// unique key plus an ON DUPLICATE KEY write gives re-rating upsert
// semantics without a read-check-insert race.
//
// Fields:
//  ID         – primary key identifier.
//  ResourceID – rated resource.
//  UserID     – rating user.
//  Value      – integer 1..5.
//  CreatedAt  – first time this user rated the resource.
//  UpdatedAt  – last overwrite.
type Rating struct {
    ID         uint64    // ratings.id
    ResourceID uint64    // ratings.resource_id
    UserID     uint64    // ratings.user_id
    Value      int       // ratings.value
    CreatedAt  time.Time // ratings.created_at
    UpdatedAt  time.Time // ratings.updated_at
}

// Comment is a row in the `comments` table.  Comments are free text owned
// by (resource, user) and deletable by their author or an admin.
type Comment struct {
    ID         uint64    // comments.id
    ResourceID uint64    // comments.resource_id
    UserID     uint64    // comments.user_id
    Body       string    // comments.body
    CreatedAt  time.Time // comments.created_at
}
