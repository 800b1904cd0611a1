package datastore

import (
	"database/sql"
	"fmt"

	"github.com/huebase/api/models"
	_ "github.com/lib/pq"
)

// ImageRepository is the persistence gateway for indexed images and their
// extracted palettes.
type ImageRepository interface {
	Exists(origin string) (bool, error)
	Replace(image models.Image, colors []models.Color) (models.Image, error)
	Get(id int) (models.Image, error)
	GetColors(id int) ([]models.Color, error)
	SearchByColor(color models.Color, limit, offset int) ([]models.Image, error)
}

// percentageWeight scales how much a stored color's share of its image
// counts against plain Lab distance when ranking search results.
const percentageWeight = 0.2

type ImageDatabase struct {
	database *sql.DB
}

func NewImageDatabase(db *sql.DB) (ImageDatabase, error) {
	var imageDB ImageDatabase
	imageDB.database = db
	return imageDB, nil
}

// Exists reports whether an image with the given origin is already indexed.
func (idb ImageDatabase) Exists(origin string) (bool, error) {
	var id int
	err := idb.database.QueryRow(`SELECT id FROM image WHERE origin = $1`, origin).Scan(&id)
	switch err {
	case sql.ErrNoRows:
		return false, nil
	case nil:
		return true, nil
	default:
		return false, err
	}
}

// Replace atomically swaps the stored palette for an image. Within one
// transaction it creates the image row if needed, removes any prior color
// rows, inserts the fresh palette and bumps indexed_at, so readers never
// observe a half-updated palette.
func (idb ImageDatabase) Replace(image models.Image, colors []models.Color) (models.Image, error) {
	tx, err := idb.database.Begin()
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var imageID int
	err = tx.QueryRow(`SELECT id FROM image WHERE origin = $1`, image.Origin).Scan(&imageID)
	switch err {
	case sql.ErrNoRows:
		insertQuery := `
			INSERT INTO image (origin, url_big, url_thumb)
			VALUES ($1, $2, $3)
			RETURNING id`
		if err := tx.QueryRow(insertQuery, image.Origin, image.URLBig, image.URLThumb).Scan(&imageID); err != nil {
			return models.Image{}, fmt.Errorf("failed to create image: %v", err)
		}
	case nil:
	default:
		return models.Image{}, err
	}

	if _, err := tx.Exec(`DELETE FROM image_color WHERE image_id = $1`, imageID); err != nil {
		return models.Image{}, fmt.Errorf("failed to delete previous colors: %v", err)
	}

	colorQuery := `
		INSERT INTO image_color (image_id, "L", a, b, percentage, name, name_distance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, color := range colors {
		if _, err := tx.Exec(
			colorQuery,
			imageID,
			color.L,
			color.A,
			color.B,
			color.Percentage,
			color.Name,
			color.NameDistance,
		); err != nil {
			return models.Image{}, fmt.Errorf("failed to insert color: %v", err)
		}
	}

	updateQuery := `
		UPDATE image
		SET url_big = $2, url_thumb = $3, indexed_at = (now() AT TIME ZONE 'utc')
		WHERE id = $1`
	if _, err := tx.Exec(updateQuery, imageID, image.URLBig, image.URLThumb); err != nil {
		return models.Image{}, fmt.Errorf("failed to update image: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Image{}, err
	}

	image.ID = imageID
	return image, nil
}

// Get retrieves an image by its database ID.
func (idb ImageDatabase) Get(id int) (models.Image, error) {
	query := `
		SELECT id, origin, url_big, url_thumb, indexed_at
		FROM image
		WHERE id = $1`

	row := idb.database.QueryRow(query, id)

	var image models.Image
	err := row.Scan(
		&image.ID,
		&image.Origin,
		&image.URLBig,
		&image.URLThumb,
		&image.IndexedAt,
	)

	switch err {
	case sql.ErrNoRows:
		return models.Image{}, NoRowsError{true, err}
	case nil:
		return image, nil
	default:
		return models.Image{}, err
	}
}

// GetColors retrieves the stored palette of an image ordered by share.
func (idb ImageDatabase) GetColors(id int) ([]models.Color, error) {
	query := `
		SELECT "L", a, b, percentage, name, name_distance
		FROM image_color
		WHERE image_id = $1
		ORDER BY percentage DESC, id`

	rows, err := idb.database.Query(query, id)
	if err != nil {
		return []models.Color{}, err
	}
	defer rows.Close()

	var colors []models.Color
	for rows.Next() {
		var l, a, b, percentage float64
		var name sql.NullString
		var nameDistance sql.NullFloat64
		if err := rows.Scan(&l, &a, &b, &percentage, &name, &nameDistance); err != nil {
			return []models.Color{}, err
		}
		color := models.NewColor(l, a, b, percentage)
		color.Name = name.String
		color.NameDistance = nameDistance.Float64
		colors = append(colors, color)
	}

	if err = rows.Err(); err != nil {
		return []models.Color{}, err
	}

	return colors, nil
}

// SearchByColor returns images ranked by ascending distance between the
// query color and each image's closest stored color. Lab channels are
// normalized to comparable ranges and a stored color covering only a
// small share of its image is penalized by the percentage term.
func (idb ImageDatabase) SearchByColor(color models.Color, limit, offset int) ([]models.Image, error) {
	query := `
		SELECT
			image.id,
			image.origin,
			image.url_big,
			image.url_thumb,
			image.indexed_at,
			MIN(
				SQRT(
					(c."L" / 100 - $1)^2 +
					((c.a + 128) / 256 - $2)^2 +
					((c.b + 128) / 256 - $3)^2 +
					$4 * (c.percentage - 1)^2
				)
			) AS distance
		FROM image_color AS c JOIN image ON c.image_id = image.id
		GROUP BY image.id
		ORDER BY distance
		LIMIT $5
		OFFSET $6`

	rows, err := idb.database.Query(
		query,
		color.L/100,
		(color.A+128)/256,
		(color.B+128)/256,
		percentageWeight,
		limit,
		offset,
	)
	if err != nil {
		return []models.Image{}, err
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var image models.Image
		var distance float64
		if err := rows.Scan(
			&image.ID,
			&image.Origin,
			&image.URLBig,
			&image.URLThumb,
			&image.IndexedAt,
			&distance,
		); err != nil {
			return []models.Image{}, err
		}
		images = append(images, image)
	}

	if err = rows.Err(); err != nil {
		return []models.Image{}, err
	}

	return images, nil
}
