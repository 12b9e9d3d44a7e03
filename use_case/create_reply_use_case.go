package use_case

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyengiapalth/flowx-sync/domain"
)

// ContentByID resolves a node within its target so a reply can inherit its
// parent's depth.
type ContentByID interface {
	TreeByTarget(ctx context.Context, targetType string, targetID uint64) ([]*domain.ContentNode, error)
}

type createReply struct {
	contentWriter domain.ContentWriter
	contentReader ContentByID
	uidGenerator  domain.UIDGenerator
}

// Execute persists a new node under req.ParentID at the parent's depth + 1.
// A ParentID of -1 creates a new root post.
func (uc *createReply) Execute(ctx context.Context, req *domain.CreateReplyRequest) (*domain.ContentNode, error) {
	if req.ParentID < domain.RootParentID {
		return nil, fmt.Errorf("parent %d: %w", req.ParentID, domain.ErrInvalidParent)
	}

	id, err := uc.uidGenerator.NewUID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate a new unique id: %w", err)
	}

	now := time.Now()

	node := &domain.ContentNode{
		ID:         id,
		Author:     req.Author,
		Body:       req.Body,
		Subtitle:   req.Subtitle,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ParentID:   req.ParentID,
		HasFile:    len(req.Files) > 0,
		Files:      req.Files,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if req.ParentID != domain.RootParentID {
		parent, err := uc.findParent(ctx, req)
		if err != nil {
			return nil, err
		}

		node.Depth = parent.Depth + 1
	}

	if err = uc.contentWriter.Insert(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}

	return node, nil
}

func (uc *createReply) findParent(ctx context.Context, req *domain.CreateReplyRequest) (*domain.ContentNode, error) {
	roots, err := uc.contentReader.TreeByTarget(ctx, req.TargetType, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load target tree: %w", err)
	}

	for _, root := range roots {
		if parent := root.FindNode(uint64(req.ParentID)); parent != nil {
			return parent, nil
		}
	}

	return nil, fmt.Errorf("parent %d: %w", req.ParentID, domain.ErrNodeNotFound)
}

func NewCreateReply(
	contentWriter domain.ContentWriter,
	contentReader ContentByID,
	uidGenerator domain.UIDGenerator,
) *createReply {
	return &createReply{
		contentWriter: contentWriter,
		contentReader: contentReader,
		uidGenerator:  uidGenerator,
	}
}
