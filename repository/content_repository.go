package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gocql/gocql"
	"github.com/nguyengiapalth/flowx-sync/domain"
)

// content stores nodes as flat rows partitioned by target; trees are
// rebuilt from the flat list on read.
type content struct {
	db *gocql.Session
}

func (r *content) Insert(ctx context.Context, node *domain.ContentNode) error {
	files, err := json.Marshal(node.Files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}

	return r.db.Query(
		`INSERT INTO contents
			(id, author, body, subtitle, target_type, target_id, parent_id, depth, has_file, files, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.ID,
		node.Author,
		node.Body,
		node.Subtitle,
		node.TargetType,
		node.TargetID,
		node.ParentID,
		node.Depth,
		node.HasFile,
		string(files),
		node.CreatedAt,
		node.UpdatedAt,
	).WithContext(ctx).Exec()
}

// ListByTarget returns the flat node list of one target, oldest first.
func (r *content) ListByTarget(ctx context.Context, targetType string, targetID uint64) ([]domain.ContentNode, error) {
	scanner := r.db.Query(
		`SELECT
			id, author, body, subtitle, target_type, target_id, parent_id, depth, has_file, files, created_at, updated_at
		FROM
			contents
		WHERE
			target_type = ?
			AND target_id = ?
		ORDER BY id ASC`,
		targetType,
		targetID,
	).WithContext(ctx).Iter().Scanner()

	var (
		nodes []domain.ContentNode
		err   error
	)

	for scanner.Next() {
		var (
			node  domain.ContentNode
			files string
		)

		err = scanner.Scan(
			&node.ID,
			&node.Author,
			&node.Body,
			&node.Subtitle,
			&node.TargetType,
			&node.TargetID,
			&node.ParentID,
			&node.Depth,
			&node.HasFile,
			&files,
			&node.CreatedAt,
			&node.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if files != "" {
			if err = json.Unmarshal([]byte(files), &node.Files); err != nil {
				return nil, fmt.Errorf("decode files for node %d: %w", node.ID, err)
			}
		}

		nodes = append(nodes, node)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to close scanner: %w", err)
	}

	return nodes, nil
}

// TreeByTarget rebuilds the reply forest of one target from its flat rows.
func (r *content) TreeByTarget(ctx context.Context, targetType string, targetID uint64) ([]*domain.ContentNode, error) {
	flat, err := r.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	return domain.BuildTree(flat)
}

func (r *content) Delete(ctx context.Context, targetType string, targetID, id uint64) error {
	return r.db.Query(
		"DELETE FROM contents WHERE target_type = ? AND target_id = ? AND id = ?",
		targetType,
		targetID,
		id,
	).WithContext(ctx).Exec()
}

func NewContent(session *gocql.Session) *content {
	return &content{
		db: session,
	}
}
