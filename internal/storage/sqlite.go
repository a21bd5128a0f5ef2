package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/homescout/homescout/internal/models"
	"github.com/homescout/homescout/pkg/utils"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'OWNER',
		agent_phone TEXT NOT NULL DEFAULT '',
		agent_photo TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL DEFAULT 0,
		price_usd REAL NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'USD',
		property_type TEXT NOT NULL DEFAULT '',
		listing_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING',
		building_class TEXT NOT NULL DEFAULT '',
		renovation TEXT NOT NULL DEFAULT '',
		floor INTEGER NOT NULL DEFAULT 0,
		total_floors INTEGER NOT NULL DEFAULT 0,
		year_built INTEGER NOT NULL DEFAULT 0,
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms INTEGER NOT NULL DEFAULT 0,
		area REAL NOT NULL DEFAULT 0,
		latitude REAL,
		longitude REAL,
		featured INTEGER NOT NULL DEFAULT 0,
		verified INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (owner_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
	CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city);
	CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
	CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at);

	CREATE TABLE IF NOT EXISTS listing_amenities (
		listing_id TEXT NOT NULL,
		amenity TEXT NOT NULL,
		PRIMARY KEY (listing_id, amenity),
		FOREIGN KEY (listing_id) REFERENCES listings(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

const listingColumns = `l.id, l.owner_id, l.title, l.description, l.city, l.address,
	l.price, l.price_usd, l.currency, l.property_type, l.listing_type, l.status,
	l.building_class, l.renovation, l.floor, l.total_floors, l.year_built,
	l.bedrooms, l.bathrooms, l.area, l.latitude, l.longitude,
	l.featured, l.verified, l.views, l.created_at, l.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var l models.Listing
	var lat, lon sql.NullFloat64
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.City, &l.Address,
		&l.Price, &l.PriceUSD, &l.Currency, &l.PropertyType, &l.ListingType, &l.Status,
		&l.BuildingClass, &l.Renovation, &l.Floor, &l.TotalFloors, &l.YearBuilt,
		&l.Bedrooms, &l.Bathrooms, &l.Area, &lat, &lon,
		&l.Featured, &l.Verified, &l.Views, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		l.Latitude = &lat.Float64
	}
	if lon.Valid {
		l.Longitude = &lon.Float64
	}
	return &l, nil
}

// CreateUser inserts a user row.
func (s *SQLiteStorage) CreateUser(ctx context.Context, u *models.UserProjection) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, email, phone, role, agent_phone, agent_photo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.Role, u.AgentPhone, u.AgentPhoto,
	)
	return err
}

// CreateListing inserts a listing and its amenity rows in one transaction.
func (s *SQLiteStorage) CreateListing(ctx context.Context, l *models.Listing) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO listings (id, owner_id, title, description, city, address,
			price, price_usd, currency, property_type, listing_type, status,
			building_class, renovation, floor, total_floors, year_built,
			bedrooms, bathrooms, area, latitude, longitude,
			featured, verified, views, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.OwnerID, l.Title, l.Description, l.City, l.Address,
		l.Price, l.PriceUSD, l.Currency, l.PropertyType, l.ListingType, l.Status,
		l.BuildingClass, l.Renovation, l.Floor, l.TotalFloors, l.YearBuilt,
		l.Bedrooms, l.Bathrooms, l.Area, nullableFloat(l.Latitude), nullableFloat(l.Longitude),
		l.Featured, l.Verified, l.Views, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if err := insertAmenities(ctx, tx, l.ID, l.Amenities); err != nil {
		return err
	}
	return tx.Commit()
}

// GetListing returns a listing by id, optionally with its amenity associations.
func (s *SQLiteStorage) GetListing(ctx context.Context, id string, withAmenities bool) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings l WHERE l.id = ?`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("listing not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	if withAmenities {
		amenities, err := s.amenitiesFor(ctx, []string{id})
		if err != nil {
			return nil, err
		}
		l.Amenities = amenities[id]
	}
	return l, nil
}

// UpdateListing updates a listing row and replaces its amenity rows.
func (s *SQLiteStorage) UpdateListing(ctx context.Context, l *models.Listing) error {
	l.UpdatedAt = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE listings SET title = ?, description = ?, city = ?, address = ?,
			price = ?, price_usd = ?, currency = ?, property_type = ?, listing_type = ?, status = ?,
			building_class = ?, renovation = ?, floor = ?, total_floors = ?, year_built = ?,
			bedrooms = ?, bathrooms = ?, area = ?, latitude = ?, longitude = ?,
			featured = ?, verified = ?, views = ?, updated_at = ?
		 WHERE id = ?`,
		l.Title, l.Description, l.City, l.Address,
		l.Price, l.PriceUSD, l.Currency, l.PropertyType, l.ListingType, l.Status,
		l.BuildingClass, l.Renovation, l.Floor, l.TotalFloors, l.YearBuilt,
		l.Bedrooms, l.Bathrooms, l.Area, nullableFloat(l.Latitude), nullableFloat(l.Longitude),
		l.Featured, l.Verified, l.Views, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("listing not found: %s", l.ID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_amenities WHERE listing_id = ?`, l.ID); err != nil {
		return err
	}
	if err := insertAmenities(ctx, tx, l.ID, l.Amenities); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteListing removes a listing and its amenity rows.
func (s *SQLiteStorage) DeleteListing(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_amenities WHERE listing_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListActiveListings returns every ACTIVE listing with its amenities.
// This feeds the bulk reindex path.
func (s *SQLiteStorage) ListActiveListings(ctx context.Context) ([]*models.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings l WHERE l.status = ? ORDER BY l.created_at`,
		models.StatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*models.Listing
	var ids []string
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	amenities, err := s.amenitiesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		l.Amenities = amenities[l.ID]
	}
	return listings, nil
}

// OwnerProjections batch-fetches the owner projection for each listing id in
// one joined query, keyed by listing id.
func (s *SQLiteStorage) OwnerProjections(ctx context.Context, listingIDs []string) (map[string]*models.UserProjection, error) {
	out := make(map[string]*models.UserProjection, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(listingIDs)), ",")
	args := make([]interface{}, len(listingIDs))
	for i, id := range listingIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, u.id, u.first_name, u.last_name, u.email, u.phone, u.role, u.agent_phone, u.agent_photo
		 FROM listings l JOIN users u ON u.id = l.owner_id
		 WHERE l.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var listingID string
		var u models.UserProjection
		if err := rows.Scan(&listingID, &u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role, &u.AgentPhone, &u.AgentPhoto); err != nil {
			return nil, err
		}
		out[listingID] = &u
	}
	return out, rows.Err()
}

// SearchListings executes the relational fallback search. Owner data is
// joined in the same query, so results come back already enriched; hits have
// no relevance score (substring matching is unscored).
func (s *SQLiteStorage) SearchListings(ctx context.Context, q *models.SearchQuery) (*models.SearchResult, error) {
	pred := BuildFallbackPredicate(q)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM listings l WHERE `+pred.Where, pred.Args...,
	).Scan(&total); err != nil {
		return nil, err
	}

	query := `SELECT ` + listingColumns + `,
		u.id, u.first_name, u.last_name, u.email, u.phone, u.role, u.agent_phone, u.agent_photo
		FROM listings l LEFT JOIN users u ON u.id = l.owner_id
		WHERE ` + pred.Where + ` ORDER BY ` + pred.OrderBy + ` LIMIT ? OFFSET ?`
	args := append(append([]interface{}{}, pred.Args...), pred.Limit, pred.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []*models.Hit
	var ids []string
	for rows.Next() {
		var l models.Listing
		var lat, lon sql.NullFloat64
		var uid, first, last, email, phone, role, agentPhone, agentPhoto sql.NullString
		err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.City, &l.Address,
			&l.Price, &l.PriceUSD, &l.Currency, &l.PropertyType, &l.ListingType, &l.Status,
			&l.BuildingClass, &l.Renovation, &l.Floor, &l.TotalFloors, &l.YearBuilt,
			&l.Bedrooms, &l.Bathrooms, &l.Area, &lat, &lon,
			&l.Featured, &l.Verified, &l.Views, &l.CreatedAt, &l.UpdatedAt,
			&uid, &first, &last, &email, &phone, &role, &agentPhone, &agentPhoto,
		)
		if err != nil {
			return nil, err
		}
		if lat.Valid {
			l.Latitude = &lat.Float64
		}
		if lon.Valid {
			l.Longitude = &lon.Float64
		}
		hit := &models.Hit{ListingDocument: *models.NewListingDocument(&l)}
		if uid.Valid {
			hit.User = &models.UserProjection{
				ID:         uid.String,
				FirstName:  first.String,
				LastName:   last.String,
				Email:      email.String,
				Phone:      phone.String,
				Role:       role.String,
				AgentPhone: agentPhone.String,
				AgentPhoto: agentPhoto.String,
			}
		}
		hits = append(hits, hit)
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	amenities, err := s.amenitiesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, hit := range hits {
		hit.Amenities = amenities[hit.ID]
	}

	return &models.SearchResult{
		Data:      hits,
		Total:     total,
		Page:      q.Page,
		Size:      q.Size,
		PageCount: utils.PageCount(total, q.Size),
	}, nil
}

// CountListings returns the total number of listings.
func (s *SQLiteStorage) CountListings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertAmenities(ctx context.Context, tx execer, listingID string, amenities []string) error {
	for _, a := range amenities {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO listing_amenities (listing_id, amenity) VALUES (?, ?)`,
			listingID, a,
		); err != nil {
			return err
		}
	}
	return nil
}

// amenitiesFor batch-loads amenity tags for the given listing ids.
func (s *SQLiteStorage) amenitiesFor(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT listing_id, amenity FROM listing_amenities WHERE listing_id IN (`+placeholders+`) ORDER BY amenity`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, amenity string
		if err := rows.Scan(&id, &amenity); err != nil {
			return nil, err
		}
		out[id] = append(out[id], amenity)
	}
	return out, rows.Err()
}
