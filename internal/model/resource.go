package model

import "time"

// Resource represents a learning resource in the `resources` table.  A
// resource is created by an authenticated user in PENDING status and moves
// between PENDING, APPROVED and REJECTED exclusively through admin
// moderation.  The hidden and problematic flags toggle independently of the
// status and of each other.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – short display title.
//  Description    – summary shown in listings.
//  Content        – full text body (may be empty for link resources).
//  URL            – optional external link or stored file location.
//  ResourceType   – kind of material (BOOK, LECTURE, ARTICLE, LINK).
//  Status         – moderation state (PENDING, APPROVED, REJECTED).
//  IsHidden       – admin flag removing the resource from public listings.
//  IsProblematic  – admin flag marking the resource for follow-up review.
//  ViewsCount     – monotonic counter of single-resource reads.
//  DownloadsCount – monotonic counter of explicit download actions.
//  TopicID        – owning topic (single, required).
//  AuthorID       – creating user; immutable after creation.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Resource struct {
    ID             uint64    // resources.id
    Title          string    // resources.title
    Description    string    // resources.description
    Content        string    // resources.content
    URL            *string   // resources.url (nullable)
    ResourceType   string    // resources.resource_type
    Status         string    // resources.status
    IsHidden       bool      // resources.is_hidden
    IsProblematic  bool      // resources.is_problematic
    ViewsCount     uint64    // resources.views_count
    DownloadsCount uint64    // resources.downloads_count
    TopicID        uint64    // resources.topic_id
    AuthorID       uint64    // resources.author_id
    CreatedAt      time.Time // resources.created_at
    UpdatedAt      time.Time // resources.updated_at
}

// ResourceTag links a resource to a tag in the `resource_tags` association
// table.  The pair is the primary key, which is what makes tag add/remove
// idempotent at the database level.
type ResourceTag struct {
    ResourceID uint64 // resource_tags.resource_id
    TagID      uint64 // resource_tags.tag_id
}
