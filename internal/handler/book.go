package handler

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lucascassio/trocalivros/internal/config"
	"github.com/lucascassio/trocalivros/internal/model"
	"github.com/lucascassio/trocalivros/internal/repository"
)

// BookHandler serves the catalog endpoints. Create accepts multipart
// form data so a cover image can ride along with the listing.
type BookHandler struct {
	Cfg   config.Config
	Books *repository.BookRepo
}

func NewBookHandler(cfg config.Config, b *repository.BookRepo) *BookHandler {
	return &BookHandler{Cfg: cfg, Books: b}
}

type bookResp struct {
	ID            uint64  `json:"id"`
	OwnerID       uint64  `json:"owner_id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	Publisher     string  `json:"publisher"`
	Pages         int     `json:"pages"`
	Year          int     `json:"year"`
	Synopsis      *string `json:"synopsis,omitempty"`
	CoverImageURL *string `json:"cover_image_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
	IsAvailable   bool    `json:"is_available"`
}

func toBookResp(b model.Book) bookResp {
	return bookResp{
		ID:            b.ID,
		OwnerID:       b.OwnerID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		Publisher:     b.Publisher,
		Pages:         b.Pages,
		Year:          b.Year,
		Synopsis:      b.Synopsis,
		CoverImageURL: b.CoverImageURL,
		CreatedAt:     b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		IsAvailable:   b.IsAvailable,
	}
}

func toBookList(books []model.Book) []bookResp {
	out := make([]bookResp, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResp(b))
	}
	return out
}

// Create registers a listing from multipart form fields. An optional
// "cover" file is stored under the upload directory and referenced by a
// relative URL.
func (h *BookHandler) Create(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	author := strings.TrimSpace(c.FormValue("author"))
	genre := strings.TrimSpace(c.FormValue("genre"))
	publisher := strings.TrimSpace(c.FormValue("publisher"))
	if title == "" || author == "" || genre == "" || publisher == "" {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "title, author, genre and publisher are required")
	}
	pages, err := strconv.Atoi(c.FormValue("pages"))
	if err != nil || pages <= 0 {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "pages must be a positive number")
	}
	year, err := strconv.Atoi(c.FormValue("year"))
	if err != nil || year <= 0 {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "year must be a positive number")
	}

	b := model.Book{
		OwnerID:   caller,
		Title:     title,
		Author:    author,
		Genre:     genre,
		Publisher: publisher,
		Pages:     pages,
		Year:      year,
	}
	if s := strings.TrimSpace(c.FormValue("synopsis")); s != "" {
		b.Synopsis = &s
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Books.Create(ctx, &b); err != nil {
		if err == repository.ErrTitleExists {
			return jsonError(c, http.StatusConflict, kindConflict, "you already listed this title")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "create book failed")
	}

	if file, err := c.FormFile("cover"); err == nil && file != nil {
		url, err := h.saveCover(b.ID, file)
		if err != nil {
			// The listing exists; cover upload failure should not lose it.
			c.Logger().Errorf("save cover for book %d: %v", b.ID, err)
		} else if err := h.Books.SetCover(ctx, b.ID, url); err == nil {
			b.CoverImageURL = &url
		}
	}

	return c.JSON(http.StatusCreated, toBookResp(b))
}

// saveCover writes the uploaded file to <upload_dir>/covers/<id><ext>
// and returns the relative URL it is served under.
func (h *BookHandler) saveCover(bookID uint64, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fmt.Errorf("unsupported cover type %q", ext)
	}

	dir := filepath.Join(h.Cfg.UploadDir, "covers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d%s", bookID, ext)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/covers/" + name, nil
}

// Get returns one listing by id.
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid book id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Books.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "book not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, toBookResp(b))
}

// List returns every listing, newest first.
func (h *BookHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := h.Books.List(ctx)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, toBookList(books))
}

// filterText serves the text filter routes. Matching is accent- and
// case-insensitive on both sides; an empty result is 200 with an empty
// array.
func (h *BookHandler) filterText(c echo.Context, list func(context.Context, string) ([]model.Book, error)) error {
	q := strings.TrimSpace(c.Param("value"))
	if q == "" {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "filter value is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := list(ctx, q)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, toBookList(books))
}

// FilterByGenre lists books whose genre matches the path value.
func (h *BookHandler) FilterByGenre(c echo.Context) error {
	return h.filterText(c, h.Books.ListByGenre)
}

// FilterByAuthor lists books whose author matches the path value.
func (h *BookHandler) FilterByAuthor(c echo.Context) error {
	return h.filterText(c, h.Books.ListByAuthor)
}

// FilterByPublisher lists books whose publisher matches the path value.
func (h *BookHandler) FilterByPublisher(c echo.Context) error {
	return h.filterText(c, h.Books.ListByPublisher)
}

// FilterByTitle lists books whose title matches the path value.
func (h *BookHandler) FilterByTitle(c echo.Context) error {
	return h.filterText(c, h.Books.ListByTitle)
}

// FilterByYear lists books published in the given year.
func (h *BookHandler) FilterByYear(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("value"))
	if err != nil || year <= 0 {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "year must be a positive number")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := h.Books.ListByYear(ctx, year)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, toBookList(books))
}

// ListMine returns the caller's own listings.
func (h *BookHandler) ListMine(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := h.Books.ListByOwner(ctx, caller)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, toBookList(books))
}

// ListByUser returns another user's listings.
func (h *BookHandler) ListByUser(c echo.Context) error {
	ownerID, err := pathID(c, "userId")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid user id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := h.Books.ListByOwner(ctx, ownerID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	return c.JSON(http.StatusOK, toBookList(books))
}

// Update applies the supplied form fields to the caller's listing.
// Fields absent from the form keep their stored values, so a client can
// change only the synopsis without resending the whole record.
func (h *BookHandler) Update(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid book id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Books.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "book not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if b.OwnerID != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you can only update your own books")
	}

	form, err := c.FormParams()
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid form")
	}
	if v, ok := formString(form, "title"); ok {
		if v == "" {
			return jsonError(c, http.StatusBadRequest, kindInvalid, "title cannot be empty")
		}
		b.Title = v
	}
	if v, ok := formString(form, "author"); ok {
		if v == "" {
			return jsonError(c, http.StatusBadRequest, kindInvalid, "author cannot be empty")
		}
		b.Author = v
	}
	if v, ok := formString(form, "genre"); ok {
		if v == "" {
			return jsonError(c, http.StatusBadRequest, kindInvalid, "genre cannot be empty")
		}
		b.Genre = v
	}
	if v, ok := formString(form, "publisher"); ok {
		if v == "" {
			return jsonError(c, http.StatusBadRequest, kindInvalid, "publisher cannot be empty")
		}
		b.Publisher = v
	}
	if v, ok := formString(form, "pages"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return jsonError(c, http.StatusBadRequest, kindInvalid, "pages must be a positive number")
		}
		b.Pages = n
	}
	if v, ok := formString(form, "year"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return jsonError(c, http.StatusBadRequest, kindInvalid, "year must be a positive number")
		}
		b.Year = n
	}
	if v, ok := formString(form, "synopsis"); ok {
		if v == "" {
			b.Synopsis = nil
		} else {
			b.Synopsis = &v
		}
	}
	if v, ok := formString(form, "is_available"); ok {
		avail, err := strconv.ParseBool(v)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, kindInvalid, "is_available must be true or false")
		}
		b.IsAvailable = avail
	}

	if err := h.Books.Update(ctx, &b); err != nil {
		if err == repository.ErrTitleExists {
			return jsonError(c, http.StatusConflict, kindConflict, "you already listed this title")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
	}

	if file, err := c.FormFile("cover"); err == nil && file != nil {
		url, err := h.saveCover(b.ID, file)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid cover image")
		}
		if err := h.Books.SetCover(ctx, b.ID, url); err != nil {
			return jsonError(c, http.StatusInternalServerError, kindInternal, "update failed")
		}
		b.CoverImageURL = &url
	}

	return c.JSON(http.StatusOK, toBookResp(b))
}

// Delete removes the caller's listing and any trades referencing it.
func (h *BookHandler) Delete(c echo.Context) error {
	caller, err := getUserID(c)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, kindInvalid, "invalid book id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Books.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "book not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if b.OwnerID != caller {
		return jsonError(c, http.StatusForbidden, kindForbidden, "you can only delete your own books")
	}
	if err := h.Books.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return jsonError(c, http.StatusNotFound, kindNotFound, "book not found")
		}
		return jsonError(c, http.StatusInternalServerError, kindInternal, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// formString reports whether the field was present in the form and
// returns its trimmed value.
func formString(form map[string][]string, key string) (string, bool) {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return strings.TrimSpace(vs[0]), true
}
