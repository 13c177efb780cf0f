// Package queue defines message payloads exchanged over the message broker.
package queue

// ResourceModeratedEvent is published when an admin applies a moderation
// decision to a resource (status change or flag toggle). It carries enough
// information for downstream consumers to log, notify the author, or feed
// analytics without querying the primary database.
type ResourceModeratedEvent struct {
    ResourceID  uint64 `json:"resource_id"`
    Title       string `json:"title"`
    AuthorID    uint64 `json:"author_id"`
    ModeratorID uint64 `json:"moderator_id"`
    OldStatus   string `json:"old_status"`
    NewStatus   string `json:"new_status"`
    IsHidden    bool   `json:"is_hidden"`
    Problematic bool   `json:"is_problematic"`
    DecidedAt   string `json:"decided_at"`
}
