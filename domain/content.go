package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// RootParentID marks a content node without a parent. The content API uses
// -1 on the wire instead of omitting the field.
const RootParentID = -1

var (
	ErrInvalidParent = errors.New("parent id must be -1 or a positive id")
	ErrOrphanNode    = errors.New("declared parent is not present")
	ErrNodeNotFound  = errors.New("content node not found")
)

type FileRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type ContentNode struct {
	ID         uint64         `json:"id"`
	Author     uint64         `json:"author"`
	Body       string         `json:"body"`
	Subtitle   string         `json:"subtitle,omitempty"`
	TargetType string         `json:"targetType"`
	TargetID   uint64         `json:"targetId"`
	ParentID   int64          `json:"parentId"`
	Depth      int            `json:"depth"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	HasFile    bool           `json:"hasFile"`
	Files      []FileRef      `json:"files,omitempty"`
	Replies    []*ContentNode `json:"replies"`
}

func (n *ContentNode) IsRoot() bool {
	return n.ParentID == RootParentID
}

// AttachReply appends reply under n and fixes its parent linkage and depth.
func (n *ContentNode) AttachReply(reply *ContentNode) error {
	if reply.ParentID != RootParentID && reply.ParentID != int64(n.ID) {
		return fmt.Errorf("attach reply %d under %d: %w", reply.ID, n.ID, ErrInvalidParent)
	}

	reply.ParentID = int64(n.ID)
	reply.Depth = n.Depth + 1

	n.Replies = append(n.Replies, reply)

	return nil
}

// FindNode searches the subtree rooted at n for id.
func (n *ContentNode) FindNode(id uint64) *ContentNode {
	if n.ID == id {
		return n
	}

	for _, reply := range n.Replies {
		if found := reply.FindNode(id); found != nil {
			return found
		}
	}

	return nil
}

// RemoveReply removes the node with id from the subtree rooted at n. The
// removed node keeps its own replies; only its parent forgets it.
func (n *ContentNode) RemoveReply(id uint64) bool {
	for i, reply := range n.Replies {
		if reply.ID == id {
			n.Replies = append(n.Replies[:i], n.Replies[i+1:]...)
			return true
		}

		if reply.RemoveReply(id) {
			return true
		}
	}

	return false
}

// UpdateBody edits a node in place wherever it sits in the subtree.
func (n *ContentNode) UpdateBody(id uint64, body string, at time.Time) bool {
	node := n.FindNode(id)
	if node == nil {
		return false
	}

	node.Body = body
	node.UpdatedAt = at

	return true
}

// BuildTree reconstructs the reply forest from a flat list, regardless of
// input order. Depths are recomputed from the roots; nodes whose declared
// parent is absent from the list are rejected.
func BuildTree(flat []ContentNode) ([]*ContentNode, error) {
	byID := make(map[uint64]*ContentNode, len(flat))

	for i := range flat {
		node := flat[i]

		if node.ParentID < RootParentID {
			return nil, fmt.Errorf("node %d: %w", node.ID, ErrInvalidParent)
		}

		node.Replies = nil
		byID[node.ID] = &node
	}

	var roots []*ContentNode

	for _, node := range byID {
		if node.IsRoot() {
			continue
		}

		parent, ok := byID[uint64(node.ParentID)]
		if !ok {
			return nil, fmt.Errorf("node %d declares parent %d: %w", node.ID, node.ParentID, ErrOrphanNode)
		}

		parent.Replies = append(parent.Replies, node)
	}

	for _, node := range byID {
		if node.IsRoot() {
			roots = append(roots, node)
		}
	}

	sortByID(roots)
	for _, root := range roots {
		root.Depth = 0
		normalize(root)
	}

	return roots, nil
}

func normalize(node *ContentNode) {
	sortByID(node.Replies)

	for _, reply := range node.Replies {
		reply.Depth = node.Depth + 1
		normalize(reply)
	}
}

func sortByID(nodes []*ContentNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
}

// ContentReader lists content trees for each feed scope.
type ContentReader interface {
	Global(ctx context.Context) ([]*ContentNode, error)
	AllSources(ctx context.Context) ([]*ContentNode, error)
	ByTarget(ctx context.Context, targetType string, targetID uint64) ([]*ContentNode, error)
	ByUser(ctx context.Context, userID uint64) ([]*ContentNode, error)
}

type ContentWriter interface {
	Insert(ctx context.Context, node *ContentNode) error
}

type CreateReplyRequest struct {
	Author     uint64    `json:"author"`
	Body       string    `json:"body"`
	Subtitle   string    `json:"subtitle"`
	TargetType string    `json:"targetType" binding:"required"`
	TargetID   uint64    `json:"targetId"`
	ParentID   int64     `json:"parentId"`
	Files      []FileRef `json:"files"`
}

type CreateReplyUseCase interface {
	Execute(ctx context.Context, req *CreateReplyRequest) (*ContentNode, error)
}
