// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios. Not-found sentinels
// exist per entity so a handler can report which id in a multi-entity
// operation was missing; existence is always checked before authorization,
// so these map to HTTP 404 while policy errors map to 403/400/409.
package repository

import "errors"

// ErrUserNotFound is returned when a user id does not resolve to a row.
var ErrUserNotFound = errors.New("user not found")

// ErrResourceNotFound is returned when a resource id does not resolve to a
// row. Handlers should translate this into an HTTP 404 response.
var ErrResourceNotFound = errors.New("resource not found")

// ErrTopicNotFound is returned when a topic id does not resolve to a row.
var ErrTopicNotFound = errors.New("topic not found")

// ErrTagNotFound is returned when a tag id does not resolve to a row.
var ErrTagNotFound = errors.New("tag not found")

// ErrCommentNotFound is returned when a comment id does not resolve to a row.
var ErrCommentNotFound = errors.New("comment not found")

// ErrNameExists is returned when inserting a topic or tag whose unique name
// is already taken.
var ErrNameExists = errors.New("name already exists")
