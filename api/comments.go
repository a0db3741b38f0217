package api

import (
	"encoding/json"
	"time"

	"github.com/crmlite/leadboard/log"
	"github.com/crmlite/leadboard/model"
)

// The comments endpoint has shipped three response shapes over time: a bare
// array, {"data": [...]}, and {"comments": [...]}. Element keys also vary
// between the normalized form and the legacy comment_id/comment/admin_name
// columns. NormalizeComments is total over all of them: an unrecognized
// shape yields an empty list with a logged warning, never an error.

type rawComment struct {
	ID        string `json:"id"`
	CommentID string `json:"comment_id"`
	Text      string `json:"text"`
	Comment   string `json:"comment"`
	Author    string `json:"author"`
	AdminName string `json:"admin_name"`
	CreatedAt string `json:"created_at"`
}

func (rc rawComment) normalize() model.Comment {
	c := model.Comment{
		ID:     rc.ID,
		Text:   rc.Text,
		Author: rc.Author,
	}
	if c.ID == "" {
		c.ID = rc.CommentID
	}
	if c.Text == "" {
		c.Text = rc.Comment
	}
	if c.Author == "" {
		c.Author = rc.AdminName
	}
	if rc.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, rc.CreatedAt); err == nil {
			c.CreatedAt = t
		} else {
			log.Warnf("api.comments: unparseable created_at %q", rc.CreatedAt)
		}
	}
	return c
}

// NormalizeComments converts any known comments response shape to the
// internal comment list.
func NormalizeComments(raw json.RawMessage) []model.Comment {
	list, ok := extractCommentList(raw)
	if !ok {
		log.Warnf("api.comments: unrecognized response shape, defaulting to empty")
		return []model.Comment{}
	}

	comments := make([]model.Comment, len(list))
	for i, rc := range list {
		comments[i] = rc.normalize()
	}
	return comments
}

// NormalizeCreatedComment handles the create-comment response, which may be
// a single object, a wrapped object, or any of the list shapes with the
// created comment as sole element. A zero comment means the server gave us
// nothing usable; the caller falls back to its local copy.
func NormalizeCreatedComment(raw json.RawMessage) model.Comment {
	if list, ok := extractCommentList(raw); ok && len(list) > 0 {
		return list[0].normalize()
	}

	var rc rawComment
	if err := json.Unmarshal(raw, &rc); err == nil {
		return rc.normalize()
	}
	return model.Comment{}
}

func extractCommentList(raw json.RawMessage) ([]rawComment, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	// Bare array.
	var list []rawComment
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}

	// Wrapped array, either key.
	var wrapped struct {
		Data     json.RawMessage `json:"data"`
		Comments json.RawMessage `json:"comments"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, false
	}
	for _, inner := range []json.RawMessage{wrapped.Data, wrapped.Comments} {
		if len(inner) == 0 {
			continue
		}
		if err := json.Unmarshal(inner, &list); err == nil {
			return list, true
		}
	}
	return nil, false
}
