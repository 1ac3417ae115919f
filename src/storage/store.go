package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"astrografia/src/helpers"
	"astrografia/src/logger"
	"astrografia/src/models"
)

// Pagination bounds shared by both backends.
const (
	DefaultPerPage = 10
	MaxPerPage     = 50
)

// sqlStore holds the queries common to sqlite and postgres. Queries are
// written with ? placeholders and rebound for the target driver.
type sqlStore struct {
	DB     *sql.DB
	Logger *logger.Logger

	usersTable        string
	perspectivesTable string

	rebind   func(string) string
	isUnique func(error) bool
}

// -----------------------------------------------------------------------------

// rebindDollar rewrites ? placeholders to $1..$n.
func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func rebindNone(query string) string {
	return query
}

// -----------------------------------------------------------------------------

func (s *sqlStore) q(query string) string {
	query = strings.ReplaceAll(query, "{users}", s.usersTable)
	query = strings.ReplaceAll(query, "{perspectives}", s.perspectivesTable)
	return s.rebind(query)
}

// -----------------------------------------------------------------------------

func (s *sqlStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.MUser, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx,
		s.q(`INSERT INTO {users} (email, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`),
		email, passwordHash, time.Now().UTC().UnixMicro(),
	).Scan(&id)
	if err != nil {
		if s.isUnique(err) {
			return nil, helpers.NewConflictError("email already registered")
		}
		return nil, helpers.NewDatabaseError("creating user", err)
	}
	return &models.MUser{ID: id, Email: email, PasswordHash: passwordHash}, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) GetUserByEmail(ctx context.Context, email string) (*models.MUser, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash FROM {users} WHERE email = ?`, email)
}

// -----------------------------------------------------------------------------

func (s *sqlStore) GetUserByID(ctx context.Context, id int64) (*models.MUser, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash FROM {users} WHERE id = ?`, id)
}

// -----------------------------------------------------------------------------

func (s *sqlStore) getUser(ctx context.Context, query string, arg interface{}) (*models.MUser, error) {
	var u models.MUser
	err := s.DB.QueryRowContext(ctx, s.q(query), arg).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helpers.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, helpers.NewDatabaseError("loading user", err)
	}
	return &u, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) CreatePerspective(ctx context.Context, userID int64, text, responseMD string) (*models.MPerspective, error) {
	created := time.Now().UTC()
	var id int64
	err := s.DB.QueryRowContext(ctx,
		s.q(`INSERT INTO {perspectives} (text, response_md, created_at, user_id) VALUES (?, ?, ?, ?) RETURNING id`),
		text, responseMD, created.UnixMicro(), userID,
	).Scan(&id)
	if err != nil {
		return nil, helpers.NewDatabaseError("saving perspective", err)
	}
	return &models.MPerspective{
		ID:         id,
		Text:       text,
		ResponseMD: responseMD,
		CreatedAt:  time.UnixMicro(created.UnixMicro()).UTC(),
		UserID:     userID,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) ListPerspectives(ctx context.Context, userID int64, page, perPage int) (*models.MPerspectivePage, error) {
	page, perPage = NormalizePage(page, perPage)

	var total int
	if err := s.DB.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM {perspectives} WHERE user_id = ?`), userID).Scan(&total); err != nil {
		return nil, helpers.NewDatabaseError("counting perspectives", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		s.q(`SELECT id, text, response_md, created_at, user_id FROM {perspectives}
			WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`),
		userID, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, helpers.NewDatabaseError("listing perspectives", err)
	}
	defer rows.Close()

	items := make([]models.MPerspective, 0, perPage)
	for rows.Next() {
		p, err := scanPerspective(rows)
		if err != nil {
			return nil, helpers.NewDatabaseError("reading perspective", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("listing perspectives", err)
	}

	pages := (total + perPage - 1) / perPage
	return &models.MPerspectivePage{
		Perspectives: items,
		Total:        total,
		Pages:        pages,
		CurrentPage:  page,
		PerPage:      perPage,
		HasNext:      page < pages,
		HasPrev:      page > 1,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) GetPerspective(ctx context.Context, userID, id int64) (*models.MPerspective, error) {
	row := s.DB.QueryRowContext(ctx,
		s.q(`SELECT id, text, response_md, created_at, user_id FROM {perspectives} WHERE id = ? AND user_id = ?`),
		id, userID,
	)
	p, err := scanPerspective(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helpers.NewNotFoundError(fmt.Sprintf("perspective %d not found", id))
	}
	if err != nil {
		return nil, helpers.NewDatabaseError("loading perspective", err)
	}
	return p, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) Ping(ctx context.Context) error {
	if s.DB == nil {
		return helpers.NewDatabaseError("database not initialized", nil)
	}
	return s.DB.PingContext(ctx)
}

// -----------------------------------------------------------------------------

func (s *sqlStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPerspective(row scanner) (*models.MPerspective, error) {
	var p models.MPerspective
	var created int64
	var response sql.NullString
	if err := row.Scan(&p.ID, &p.Text, &response, &created, &p.UserID); err != nil {
		return nil, err
	}
	p.ResponseMD = response.String
	p.CreatedAt = time.UnixMicro(created).UTC()
	return &p, nil
}

// -----------------------------------------------------------------------------

// NormalizePage applies the default page size and the upper bound.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
