package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/core/query"
	"github.com/samirrijal/devcamper/internal/pkg/geospatial"
)

// BootcampRepo implements ports.BootcampRepository with pgx and PostGIS.
type BootcampRepo struct {
	db *DB
}

// NewBootcampRepo creates a new BootcampRepo.
func NewBootcampRepo(db *DB) *BootcampRepo {
	return &BootcampRepo{db: db}
}

const bootcampColumns = `id, name, slug, description, website, phone, email, address,
	careers, average_rating, average_cost, photo, housing, job_assistance, job_guarantee, accept_gi,
	created_at, ST_Y(location::geometry), ST_X(location::geometry),
	formatted_address, street, city, state, zipcode, country`

func fullRowTargets(r *bootcampRow) []any {
	return []any{
		&r.id, &r.name, &r.slug, &r.description, &r.website, &r.phone, &r.email, &r.address,
		&r.careers, &r.averageRating, &r.averageCost, &r.photo, &r.housing, &r.jobAssistance, &r.jobGuarantee, &r.acceptGi,
		&r.createdAt, &r.lat, &r.lon,
		&r.formattedAddress, &r.street, &r.city, &r.state, &r.zipcode, &r.country,
	}
}

// Find returns one window of bootcamps with only the projected columns loaded.
func (r *BootcampRepo) Find(ctx context.Context, q query.Query) ([]domain.Bootcamp, error) {
	var row bootcampRow
	sql, args, targets, err := findSQL(q, &row)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr("find bootcamps", err)
	}
	defer rows.Close()

	var bootcamps []domain.Bootcamp
	for rows.Next() {
		row = bootcampRow{}
		if err := rows.Scan(targets...); err != nil {
			return nil, mapErr("scan bootcamp", err)
		}
		bootcamps = append(bootcamps, row.toDomain())
	}
	return bootcamps, mapErr("iterate bootcamps", rows.Err())
}

// Count returns how many bootcamps match filter.
func (r *BootcampRepo) Count(ctx context.Context, filter query.Filter) (int, error) {
	sql, args, err := countSQL(filter)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, mapErr("count bootcamps", err)
	}
	return n, nil
}

// GetByID returns a bootcamp by UUID.
func (r *BootcampRepo) GetByID(ctx context.Context, id string) (*domain.Bootcamp, error) {
	var row bootcampRow
	err := r.db.Pool.QueryRow(ctx, `SELECT `+bootcampColumns+` FROM bootcamps WHERE id = $1`, id).
		Scan(fullRowTargets(&row)...)
	if err != nil {
		return nil, mapErr("get bootcamp", err)
	}
	b := row.toDomain()
	return &b, nil
}

// Create inserts b and fills its id and creation time.
func (r *BootcampRepo) Create(ctx context.Context, b *domain.Bootcamp) error {
	var lat, lon *float64
	loc := b.Location
	if loc == nil {
		loc = &domain.Location{}
	} else {
		p := loc.Point()
		lat, lon = &p.Lat, &p.Lon
	}

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO bootcamps (name, slug, description, website, phone, email, address, careers,
		                       average_rating, photo, housing, job_assistance, job_guarantee, accept_gi,
		                       location, formatted_address, street, city, state, zipcode, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        CASE WHEN $15::float8 IS NULL THEN NULL
		             ELSE ST_SetSRID(ST_MakePoint($15, $16), 4326)::geography END,
		        $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at
	`, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email, b.Address, b.Careers,
		b.AverageRating, b.Photo, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGi,
		lon, lat, loc.FormattedAddress, loc.Street, loc.City, loc.State, loc.Zipcode, loc.Country,
	).Scan(&b.ID, &b.CreatedAt)
	return mapErr("insert bootcamp", err)
}

// Update applies the non-nil fields of patch and returns the stored row.
func (r *BootcampRepo) Update(ctx context.Context, id string, patch domain.BootcampPatch) (*domain.Bootcamp, error) {
	var (
		args argList
		sets []string
	)
	set := func(col string, v any) { sets = append(sets, col+" = "+args.add(v)) }

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Slug != nil {
		set("slug", *patch.Slug)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Website != nil {
		set("website", *patch.Website)
	}
	if patch.Phone != nil {
		set("phone", *patch.Phone)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.Address != nil {
		set("address", *patch.Address)
	}
	if patch.Careers != nil {
		set("careers", patch.Careers)
	}
	if patch.AverageRating != nil {
		set("average_rating", *patch.AverageRating)
	}
	if patch.Photo != nil {
		set("photo", *patch.Photo)
	}
	if patch.Housing != nil {
		set("housing", *patch.Housing)
	}
	if patch.JobAssistance != nil {
		set("job_assistance", *patch.JobAssistance)
	}
	if patch.JobGuarantee != nil {
		set("job_guarantee", *patch.JobGuarantee)
	}
	if patch.AcceptGi != nil {
		set("accept_gi", *patch.AcceptGi)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sql := `UPDATE bootcamps SET ` + strings.Join(sets, ", ") +
		` WHERE id = ` + args.add(id) + ` RETURNING ` + bootcampColumns

	var row bootcampRow
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(fullRowTargets(&row)...); err != nil {
		return nil, mapErr("update bootcamp", err)
	}
	b := row.toDomain()
	return &b, nil
}

// Delete removes the bootcamp. Its courses go with it through ON DELETE CASCADE.
func (r *BootcampRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM bootcamps WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete bootcamp", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindWithin returns bootcamps inside a spherical cap. The angular radius is
// converted to metres along the surface for ST_DWithin.
func (r *BootcampRepo) FindWithin(ctx context.Context, region domain.SphereRegion) ([]domain.Bootcamp, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+bootcampColumns+`
		FROM bootcamps
		WHERE location IS NOT NULL
		  AND ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3, false)
		ORDER BY ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, false), id
	`, region.Center.Lon, region.Center.Lat, geospatial.ArcMeters(region.Radius))
	if err != nil {
		return nil, mapErr("find bootcamps within", err)
	}
	return collectBootcamps(rows)
}

// SetLocation replaces the stored location.
func (r *BootcampRepo) SetLocation(ctx context.Context, id string, loc *domain.Location) error {
	p := loc.Point()
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE bootcamps
		SET location = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
		    formatted_address = $4, street = $5, city = $6, state = $7, zipcode = $8, country = $9
		WHERE id = $1
	`, id, p.Lon, p.Lat, loc.FormattedAddress, loc.Street, loc.City, loc.State, loc.Zipcode, loc.Country)
	if err != nil {
		return mapErr("set location", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectBootcamps(rows pgx.Rows) ([]domain.Bootcamp, error) {
	defer rows.Close()
	var bootcamps []domain.Bootcamp
	for rows.Next() {
		var row bootcampRow
		if err := rows.Scan(fullRowTargets(&row)...); err != nil {
			return nil, mapErr("scan bootcamp", err)
		}
		bootcamps = append(bootcamps, row.toDomain())
	}
	return bootcamps, mapErr("iterate bootcamps", rows.Err())
}
