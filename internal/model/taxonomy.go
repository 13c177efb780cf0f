package model

// Topic is a row in the `topics` table.  Every resource belongs to exactly
// one topic.  Topic names are globally unique and created by admins.
type Topic struct {
    ID   uint64 // topics.id
    Name string // topics.name
}

// Tag is a row in the `tags` table.  Tags attach to resources through the
// resource_tags association table.  Names are globally unique; whether
// non-admins may create tags is a deployment policy switch.
type Tag struct {
    ID   uint64 // tags.id
    Name string // tags.name
}
