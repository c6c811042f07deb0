package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/specbench/internal/model"
)

// InsertBlogs writes blogs in one transaction through a prepared statement.
func (s *Store) InsertBlogs(ctx context.Context, blogs []model.Blog) error {
	return s.inTx(ctx, "insert blogs", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO blogs (id, name, url, rating) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, b := range blogs {
			if _, err := stmt.ExecContext(ctx, b.ID, b.Name, b.URL, b.Rating); err != nil {
				return fmt.Errorf("blog %q: %w", b.ID, err)
			}
		}
		return nil
	})
}

// SelectBlogs returns blogs ordered by id. A limit of zero or less returns all.
func (s *Store) SelectBlogs(ctx context.Context, limit int) ([]model.Blog, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, url, rating
		FROM blogs
		ORDER BY id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select blogs: %w", err)
	}
	defer rows.Close()

	blogs := []model.Blog{}
	for rows.Next() {
		var b model.Blog
		if err := rows.Scan(&b.ID, &b.Name, &b.URL, &b.Rating); err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blogs: %w", err)
	}
	return blogs, nil
}

// UpdateBlogRatings writes each blog's rating by id in one transaction and
// returns the number of rows changed.
func (s *Store) UpdateBlogRatings(ctx context.Context, blogs []model.Blog) (int64, error) {
	var changed int64
	err := s.inTx(ctx, "update blogs", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE blogs SET rating = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, b := range blogs {
			res, err := stmt.ExecContext(ctx, b.Rating, b.ID)
			if err != nil {
				return fmt.Errorf("blog %q: %w", b.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			changed += n
		}
		return nil
	})
	return changed, err
}

// DeleteBlogs removes blogs by id in one transaction and returns the number
// of rows deleted. Unknown ids are ignored.
func (s *Store) DeleteBlogs(ctx context.Context, ids []string) (int64, error) {
	var deleted int64
	err := s.inTx(ctx, "delete blogs", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM blogs WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, id := range ids {
			res, err := stmt.ExecContext(ctx, id)
			if err != nil {
				return fmt.Errorf("blog %q: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			deleted += n
		}
		return nil
	})
	return deleted, err
}

// TruncateBlogs removes every blog.
func (s *Store) TruncateBlogs(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blogs`); err != nil {
		return fmt.Errorf("truncate blogs: %w", err)
	}
	return nil
}
