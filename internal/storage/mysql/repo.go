package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"tatler/internal/domain"
)

const mysqlErrDuplicateEntry = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanRestaurant(s rowScanner, extra ...any) (domain.Restaurant, error) {
	var r domain.Restaurant
	dest := []any{
		&r.ID, &r.RestaurantID, &r.Name, &r.Cuisine, &r.Borough,
		&r.Phone, &r.Website, &r.PriceRange,
		&r.Address.Building, &r.Address.Street, &r.Address.Zipcode,
		&r.Address.Coord[0], &r.Address.Coord[1],
		&r.CreatedAt, &r.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := s.Scan(dest...); err != nil {
		return domain.Restaurant{}, err
	}
	r.Grades = []domain.Grade{}
	r.Comments = []domain.Comment{}
	return r, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (domain.Restaurant, error) {
	row := r.db.QueryRowContext(ctx, getRestaurantSQL, id)
	out, err := scanRestaurant(row)
	if err == sql.ErrNoRows {
		return domain.Restaurant{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Restaurant{}, err
	}
	items := []domain.Restaurant{out}
	if err := r.loadChildren(ctx, items); err != nil {
		return domain.Restaurant{}, err
	}
	return items[0], nil
}

func (r *Repo) List(ctx context.Context, q domain.ListQuery) (domain.RestaurantPage, error) {
	where, args := listFilter(q)

	var order string
	switch q.SortBy {
	case domain.SortByRating:
		order = " ORDER BY (SELECT MAX(g.score) FROM grades g WHERE g.restaurant_pk = restaurants.id) DESC, id"
	case domain.SortByName:
		order = " ORDER BY name ASC, id"
	default:
		order = " ORDER BY id"
	}

	query := "SELECT " + restaurantCols + " FROM restaurants" + where + order + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return domain.RestaurantPage{}, err
	}
	defer rows.Close()

	items := []domain.Restaurant{}
	for rows.Next() {
		item, err := scanRestaurant(rows)
		if err != nil {
			return domain.RestaurantPage{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.RestaurantPage{}, err
	}
	if err := r.loadChildren(ctx, items); err != nil {
		return domain.RestaurantPage{}, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM restaurants"+where, args...).Scan(&total); err != nil {
		return domain.RestaurantPage{}, err
	}
	return domain.RestaurantPage{Items: items, Total: total}, nil
}

func listFilter(q domain.ListQuery) (string, []any) {
	var conds []string
	var args []any
	if q.Cuisine != "" {
		conds = append(conds, "cuisine = ?")
		args = append(args, q.Cuisine)
	}
	if q.Borough != "" {
		conds = append(conds, "borough = ?")
		args = append(args, q.Borough)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repo) Search(ctx context.Context, query string) ([]domain.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, searchRestaurantsSQL, query, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.Restaurant{}
	for rows.Next() {
		var relevance float64
		item, err := scanRestaurant(rows, &relevance)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repo) Insert(ctx context.Context, doc domain.Restaurant) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	pk, err := insertTx(ctx, tx, doc)
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ErrDuplicateID
		}
		return 0, err
	}
	return pk, tx.Commit()
}

// insertTx writes the parent row plus its grade and comment rows inside
// the caller's transaction.
func insertTx(ctx context.Context, tx *sql.Tx, doc domain.Restaurant) (int64, error) {
	res, err := tx.ExecContext(ctx, insertRestaurantSQL,
		doc.RestaurantID, doc.Name, doc.Cuisine, doc.Borough,
		doc.Phone, doc.Website, doc.PriceRange,
		doc.Address.Building, doc.Address.Street, doc.Address.Zipcode,
		doc.Address.Coord[0], doc.Address.Coord[1],
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	pk, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for i, g := range doc.Grades {
		if _, err := tx.ExecContext(ctx, insertGradeSQL, pk, i, g.Date, g.Grade, g.Score); err != nil {
			return 0, err
		}
	}
	for i, c := range doc.Comments {
		if _, err := tx.ExecContext(ctx, insertCommentSQL, c.ID, pk, i, c.Date, c.Comment, c.UserID, nullableInt(c.Rating)); err != nil {
			return 0, err
		}
	}
	return pk, nil
}

func (r *Repo) BulkInsert(ctx context.Context, docs []domain.Restaurant, partialTolerant bool) (domain.BulkResult, error) {
	if !partialTolerant {
		return r.bulkInsertStrict(ctx, docs)
	}

	var out domain.BulkResult
	for i, doc := range docs {
		o := domain.BulkOutcome{Index: i, RestaurantID: doc.RestaurantID}
		if _, err := r.Insert(ctx, doc); err != nil {
			switch {
			case errors.Is(err, domain.ErrDuplicateID):
				o.Status = domain.BulkDuplicate
				o.Err = err.Error()
				out.Duplicates++
			default:
				o.Status = domain.BulkFailed
				o.Err = err.Error()
				out.Failed++
			}
		} else {
			o.Status = domain.BulkInserted
			out.Inserted++
		}
		out.Outcomes = append(out.Outcomes, o)
	}
	return out, nil
}

func (r *Repo) bulkInsertStrict(ctx context.Context, docs []domain.Restaurant) (domain.BulkResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.BulkResult{}, err
	}
	defer tx.Rollback()

	var out domain.BulkResult
	for i, doc := range docs {
		if _, err := insertTx(ctx, tx, doc); err != nil {
			if isDuplicate(err) {
				return domain.BulkResult{}, fmt.Errorf("document %d (%s): %w", i, doc.RestaurantID, domain.ErrDuplicateID)
			}
			return domain.BulkResult{}, fmt.Errorf("document %d (%s): %w", i, doc.RestaurantID, err)
		}
		out.Inserted++
		out.Outcomes = append(out.Outcomes, domain.BulkOutcome{
			Index: i, RestaurantID: doc.RestaurantID, Status: domain.BulkInserted,
		})
	}
	return out, tx.Commit()
}

func (r *Repo) Update(ctx context.Context, id int64, p domain.RestaurantPatch) (domain.Restaurant, error) {
	sets, args := patchSets(p)
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE restaurants SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return domain.Restaurant{}, err
	}
	// MATCHED rows, not changed rows: a no-op patch on an existing row
	// must still report success, so the DSN needs clientFoundRows=true.
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Restaurant{}, err
	}
	if n == 0 {
		return domain.Restaurant{}, domain.ErrNotFound
	}
	return r.Get(ctx, id)
}

func patchSets(p domain.RestaurantPatch) ([]string, []any) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Cuisine != nil {
		add("cuisine", *p.Cuisine)
	}
	if p.Borough != nil {
		add("borough", *p.Borough)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Website != nil {
		add("website", *p.Website)
	}
	if p.PriceRange != nil {
		add("price_range", *p.PriceRange)
	}
	if p.Building != nil {
		add("building", *p.Building)
	}
	if p.Street != nil {
		add("street", *p.Street)
	}
	if p.Zipcode != nil {
		add("zipcode", *p.Zipcode)
	}
	if p.Coord != nil {
		add("lon", p.Coord[0])
		add("lat", p.Coord[1])
	}
	return sets, args
}

func (r *Repo) AppendGrade(ctx context.Context, id int64, g domain.Grade) (domain.Restaurant, error) {
	err := r.appendChild(ctx, id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, appendGradeSQL, id, g.Date, g.Grade, g.Score, id)
		return err
	})
	if err != nil {
		return domain.Restaurant{}, err
	}
	return r.Get(ctx, id)
}

func (r *Repo) AppendComment(ctx context.Context, id int64, c domain.Comment) (domain.Restaurant, error) {
	err := r.appendChild(ctx, id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, appendCommentSQL,
			c.ID, id, c.Date, c.Comment, c.UserID, nullableInt(c.Rating), id)
		return err
	})
	if err != nil {
		return domain.Restaurant{}, err
	}
	return r.Get(ctx, id)
}

// appendChild runs the sub-document insert and the parent updated_at touch
// in one transaction, locking the parent row so concurrent appends get
// distinct positions.
func (r *Repo) appendChild(ctx context.Context, id int64, insert func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pk int64
	if err := tx.QueryRowContext(ctx, lockRestaurantSQL, id).Scan(&pk); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, touchRestaurantSQL, time.Now().UTC(), id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteRestaurantSQL, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// loadChildren attaches grades and comments to every restaurant in items
// with one IN query per child table.
func (r *Repo) loadChildren(ctx context.Context, items []domain.Restaurant) error {
	if len(items) == 0 {
		return nil
	}
	byPK := make(map[int64]*domain.Restaurant, len(items))
	placeholders := make([]string, 0, len(items))
	args := make([]any, 0, len(items))
	for i := range items {
		byPK[items[i].ID] = &items[i]
		placeholders = append(placeholders, "?")
		args = append(args, items[i].ID)
	}
	in := "(" + strings.Join(placeholders, ",") + ")"

	rows, err := r.db.QueryContext(ctx, listGradesPrefix+in+childOrderSuffix, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var pk int64
		var g domain.Grade
		if err := rows.Scan(&pk, &g.Date, &g.Grade, &g.Score); err != nil {
			return err
		}
		if p, ok := byPK[pk]; ok {
			p.Grades = append(p.Grades, g)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	crows, err := r.db.QueryContext(ctx, listCommentsPrefix+in+childOrderSuffix, args...)
	if err != nil {
		return err
	}
	defer crows.Close()
	for crows.Next() {
		var pk int64
		var c domain.Comment
		var rating sql.NullInt64
		if err := crows.Scan(&c.ID, &pk, &c.Date, &c.Comment, &c.UserID, &rating); err != nil {
			return err
		}
		if rating.Valid {
			v := int(rating.Int64)
			c.Rating = &v
		}
		if p, ok := byPK[pk]; ok {
			p.Comments = append(p.Comments, c)
		}
	}
	return crows.Err()
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
