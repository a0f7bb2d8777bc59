package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lucascassio/trocalivros/internal/model"
	"github.com/lucascassio/trocalivros/internal/utils"
)

// BookRepo provides CRUD and filtered lookup over the 'books' table.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

// ErrTitleExists is raised when an owner lists (or renames to) a title
// they already have, backed by the unique (owner_id, title) index.
var ErrTitleExists = errors.New("owner already listed this title")

const bookColumns = "id, owner_id, title, author, genre, publisher, pages, year, synopsis, cover_image_url, created_at, is_available"

func scanBookRow(scan func(dest ...interface{}) error) (model.Book, error) {
	var (
		b        model.Book
		synopsis sql.NullString
		cover    sql.NullString
	)
	err := scan(&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Genre, &b.Publisher,
		&b.Pages, &b.Year, &synopsis, &cover, &b.CreatedAt, &b.IsAvailable)
	if err != nil {
		return model.Book{}, err
	}
	if synopsis.Valid {
		s := synopsis.String
		b.Synopsis = &s
	}
	if cover.Valid {
		c := cover.String
		b.CoverImageURL = &c
	}
	return b, nil
}

// Create inserts a listing and populates the generated id and
// timestamp on the provided record.
func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO books (owner_id, title, author, genre, publisher, pages, year, synopsis) VALUES (?,?,?,?,?,?,?,?)",
		b.OwnerID, b.Title, b.Author, b.Genre, b.Publisher, b.Pages, b.Year, b.Synopsis)
	if err != nil {
		if isDuplicate(err) {
			return ErrTitleExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*b = created
	return nil
}

// GetByID fetches a single listing.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id=? LIMIT 1", id)
	return scanBookRow(row.Scan)
}

// GetByIDTx is GetByID inside an existing transaction, used by the
// trade lifecycle when checking availability.
func (r *BookRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Book, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id=? LIMIT 1", id)
	return scanBookRow(row.Scan)
}

func (r *BookRepo) list(ctx context.Context, where string, args ...interface{}) ([]model.Book, error) {
	q := "SELECT " + bookColumns + " FROM books"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY created_at DESC, id DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := []model.Book{}
	for rows.Next() {
		b, err := scanBookRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// List returns every listing, newest first.
func (r *BookRepo) List(ctx context.Context) ([]model.Book, error) {
	return r.list(ctx, "")
}

// ListByOwner returns all listings of one user.
func (r *BookRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Book, error) {
	return r.list(ctx, "owner_id=?", ownerID)
}

// ListByYear filters on the numeric publication year.
func (r *BookRepo) ListByYear(ctx context.Context, year int) ([]model.Book, error) {
	return r.list(ctx, "year=?", year)
}

// listMatching fetches all listings and filters in Go comparing
// normalized text on both sides. The store's collation is not trusted
// with diacritics, and the catalog is small enough that the scan is the
// simpler contract: "Sci-Fi", "SCI-FI" and accented variants all match.
func (r *BookRepo) listMatching(ctx context.Context, q string, field func(model.Book) string) ([]model.Book, error) {
	books, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	want := utils.Normalize(q)
	matched := []model.Book{}
	for _, b := range books {
		if utils.Normalize(field(b)) == want {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// ListByGenre returns listings whose genre matches accent- and
// case-insensitively.
func (r *BookRepo) ListByGenre(ctx context.Context, genre string) ([]model.Book, error) {
	return r.listMatching(ctx, genre, func(b model.Book) string { return b.Genre })
}

// ListByAuthor is the normalized author filter.
func (r *BookRepo) ListByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	return r.listMatching(ctx, author, func(b model.Book) string { return b.Author })
}

// ListByPublisher is the normalized publisher filter.
func (r *BookRepo) ListByPublisher(ctx context.Context, publisher string) ([]model.Book, error) {
	return r.listMatching(ctx, publisher, func(b model.Book) string { return b.Publisher })
}

// ListByTitle is the normalized title filter.
func (r *BookRepo) ListByTitle(ctx context.Context, title string) ([]model.Book, error) {
	return r.listMatching(ctx, title, func(b model.Book) string { return b.Title })
}

// Update writes the full row back. Handlers apply partial-update
// semantics by loading the record first and overwriting only supplied
// fields. A rename colliding with another of the owner's listings
// returns ErrTitleExists.
func (r *BookRepo) Update(ctx context.Context, b *model.Book) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE books SET title=?, author=?, genre=?, publisher=?, pages=?, year=?, synopsis=?, is_available=? WHERE id=?",
		b.Title, b.Author, b.Genre, b.Publisher, b.Pages, b.Year, b.Synopsis, b.IsAvailable, b.ID)
	if isDuplicate(err) {
		return ErrTitleExists
	}
	return err
}

// SetCover stores the relative URL of an uploaded cover image.
func (r *BookRepo) SetCover(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE books SET cover_image_url=? WHERE id=?", url, id)
	return err
}

// Delete removes a listing; dependent trades cascade away with it.
func (r *BookRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkUnavailableTx flips is_available to false for the given books,
// but only counts rows that were still available. The caller compares
// the affected count against len(ids): fewer means another transaction
// reserved one of the books first, and the whole transition must roll
// back.
func (r *BookRepo) MarkUnavailableTx(ctx context.Context, tx *sql.Tx, ids ...uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE books SET is_available=0 WHERE id IN (%s) AND is_available=1", placeholders),
		args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
