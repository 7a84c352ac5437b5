package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresUniqueViolation is the SQLSTATE Postgres reports for a unique
// index/constraint violation.
const postgresUniqueViolation = "23505"

// PostgresConfig configures the connection pool. Bounds follow spec §5:
// min 5, max 100 connections.
type PostgresConfig struct {
	DSN         string
	MinConns    int32
	MaxConns    int32
	ConnTimeout time.Duration
}

// Postgres is the pgx-backed Catalog implementation.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a connection pool per cfg and returns a ready Catalog.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	} else {
		poolCfg.MinConns = 5
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	} else {
		poolCfg.MaxConns = 100
	}
	if cfg.ConnTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, Transient.Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, Transient.Wrap(err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolation
	}
	return false
}

func (p *Postgres) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	row := p.pool.QueryRow(ctx, `SELECT id, username, password_hash FROM users WHERE id = $1`, id)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFound.New("user %s", id)
		}
		return User{}, Transient.Wrap(err)
	}
	return u, nil
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	row := p.pool.QueryRow(ctx, `SELECT id, username, password_hash FROM users WHERE username = $1`, username)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFound.New("user %q", username)
		}
		return User{}, Transient.Wrap(err)
	}
	return u, nil
}

func (p *Postgres) AddUser(ctx context.Context, username, passwordHash string) (User, error) {
	u := User{ID: uuid.New(), Username: username, PasswordHash: passwordHash}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`,
		u.ID, u.Username, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, AlreadyExists.New("username %q", username)
		}
		return User{}, Transient.Wrap(err)
	}
	return u, nil
}

func (p *Postgres) QueryMedia(ctx context.Context, userID uuid.UUID, hash string) (bool, error) {
	var exists bool
	row := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM media WHERE user_id = $1 AND hash = $2)`, userID, hash)
	if err := row.Scan(&exists); err != nil {
		return false, Transient.Wrap(err)
	}
	return exists, nil
}

func (p *Postgres) AddMedia(ctx context.Context, m Media) (Media, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.LastModifiedAt = nowMillis()
	m.Deleted = false

	_, err := p.pool.Exec(ctx, `
		INSERT INTO media (
			id, user_id, hash, created_at, last_modified_at, deleted,
			file_size, file_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.UserID, m.Hash, m.CreatedAt, m.LastModifiedAt, m.Deleted,
		m.FileSize, m.FileName)
	if err != nil {
		if isUniqueViolation(err) {
			return Media{}, AlreadyExists.New("media for user %s hash %s", m.UserID, m.Hash)
		}
		return Media{}, Transient.Wrap(err)
	}
	return m, nil
}

func (p *Postgres) UserHasMedia(ctx context.Context, userID, mediaID uuid.UUID) (bool, error) {
	var exists bool
	row := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM media WHERE id = $1 AND user_id = $2 AND deleted = false)`,
		mediaID, userID)
	if err := row.Scan(&exists); err != nil {
		return false, Transient.Wrap(err)
	}
	return exists, nil
}

func (p *Postgres) UpdateMediaPreview(ctx context.Context, mediaID uuid.UUID, previewID string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE media SET preview_id = $1, last_modified_at = $2 WHERE id = $3`,
		previewID, nowMillis(), mediaID)
	if err != nil {
		return Transient.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound.New("media %s", mediaID)
	}
	return nil
}

func (p *Postgres) SetMediaMetadata(ctx context.Context, mediaID uuid.UUID, f MediaMetadataFields) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE media SET
			longitude = COALESCE($1, longitude),
			latitude = COALESCE($2, latitude),
			image_width = COALESCE($3, image_width),
			image_length = COALESCE($4, image_length),
			make = COALESCE($5, make),
			model = COALESCE($6, model),
			fnumber = COALESCE($7, fnumber),
			exposure_time = COALESCE($8, exposure_time),
			photographic_sensitivity = COALESCE($9, photographic_sensitivity),
			orientation = COALESCE($10, orientation),
			last_modified_at = $11
		WHERE id = $12`,
		f.Longitude, f.Latitude, f.ImageWidth, f.ImageLength, f.Make, f.Model,
		f.FNumber, f.ExposureTime, f.PhotographicSensitivity, f.Orientation,
		nowMillis(), mediaID)
	if err != nil {
		return Transient.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound.New("media %s", mediaID)
	}
	return nil
}

func (p *Postgres) SyncFull(ctx context.Context, userID uuid.UUID) ([]MediaSummary, int64, error) {
	since := nowMillis()
	rows, err := p.pool.Query(ctx,
		`SELECT id, created_at, hash FROM media WHERE user_id = $1 AND deleted = false`,
		userID)
	if err != nil {
		return nil, 0, Transient.Wrap(err)
	}
	defer rows.Close()

	var out []MediaSummary
	for rows.Next() {
		var s MediaSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Hash); err != nil {
			return nil, 0, Transient.Wrap(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, Transient.Wrap(err)
	}
	return out, since, nil
}

func (p *Postgres) SyncPartial(ctx context.Context, userID uuid.UUID, since int64) (SyncPartialResult, int64, error) {
	newSince := nowMillis()

	rows, err := p.pool.Query(ctx, `
		SELECT id, created_at, hash, deleted FROM media
		WHERE user_id = $1 AND last_modified_at > $2`,
		userID, since)
	if err != nil {
		return SyncPartialResult{}, 0, Transient.Wrap(err)
	}
	defer rows.Close()

	var res SyncPartialResult
	for rows.Next() {
		var (
			s       MediaSummary
			deleted bool
		)
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Hash, &deleted); err != nil {
			return SyncPartialResult{}, 0, Transient.Wrap(err)
		}
		if deleted {
			res.Deleted = append(res.Deleted, s.ID)
		} else {
			res.Uploaded = append(res.Uploaded, s)
		}
	}
	if err := rows.Err(); err != nil {
		return SyncPartialResult{}, 0, Transient.Wrap(err)
	}
	return res, newSince, nil
}

func (p *Postgres) GetPreviews(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]PreviewRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, preview_id FROM media
		WHERE user_id = $1 AND deleted = false
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, Transient.Wrap(err)
	}
	defer rows.Close()

	var out []PreviewRow
	for rows.Next() {
		var r PreviewRow
		if err := rows.Scan(&r.MediaID, &r.PreviewID); err != nil {
			return nil, Transient.Wrap(err)
		}
		out = append(out, r)
	}
	return out, Transient.Wrap(rows.Err())
}

func (p *Postgres) GetPreviewFromUser(ctx context.Context, userID, mediaID uuid.UUID) (PreviewRow, error) {
	var r PreviewRow
	row := p.pool.QueryRow(ctx, `
		SELECT id, preview_id FROM media
		WHERE id = $1 AND user_id = $2 AND deleted = false`,
		mediaID, userID)
	if err := row.Scan(&r.MediaID, &r.PreviewID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PreviewRow{}, NotFound.New("media %s", mediaID)
		}
		return PreviewRow{}, Transient.Wrap(err)
	}
	return r, nil
}

func (p *Postgres) GetMedia(ctx context.Context, userID, mediaID uuid.UUID) (Media, error) {
	var m Media
	row := p.pool.QueryRow(ctx, `
		SELECT id, user_id, preview_id, hash, created_at, last_modified_at, deleted,
			file_size, file_name, longitude, latitude, image_width, image_length,
			make, model, fnumber, exposure_time, photographic_sensitivity, orientation
		FROM media
		WHERE id = $1 AND user_id = $2 AND deleted = false`,
		mediaID, userID)
	if err := row.Scan(
		&m.ID, &m.UserID, &m.PreviewID, &m.Hash, &m.CreatedAt, &m.LastModifiedAt, &m.Deleted,
		&m.FileSize, &m.FileName, &m.Longitude, &m.Latitude, &m.ImageWidth, &m.ImageLength,
		&m.Make, &m.Model, &m.FNumber, &m.ExposureTime, &m.PhotographicSensitivity, &m.Orientation,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Media{}, NotFound.New("media %s", mediaID)
		}
		return Media{}, Transient.Wrap(err)
	}
	return m, nil
}

func (p *Postgres) GetClusterPreviews(ctx context.Context, userID, clusterID uuid.UUID, page, pageSize int) ([]PreviewRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT m.id, m.preview_id, m.created_at
		FROM media m
		JOIN media_face mf ON mf.media_id = m.id
		WHERE mf.cluster_id = $1 AND m.user_id = $2 AND m.deleted = false
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4`,
		clusterID, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, Transient.Wrap(err)
	}
	defer rows.Close()

	var out []PreviewRow
	for rows.Next() {
		var r PreviewRow
		var createdAt int64
		if err := rows.Scan(&r.MediaID, &r.PreviewID, &createdAt); err != nil {
			return nil, Transient.Wrap(err)
		}
		out = append(out, r)
	}
	return out, Transient.Wrap(rows.Err())
}

func (p *Postgres) GetFacePreviews(ctx context.Context, userID, faceID uuid.UUID, page, pageSize int) ([]PreviewRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT m.id, m.preview_id, m.created_at
		FROM media m
		JOIN media_face mf ON mf.media_id = m.id
		JOIN cluster c ON c.id = mf.cluster_id
		WHERE c.face_id = $1 AND m.user_id = $2 AND m.deleted = false
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4`,
		faceID, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, Transient.Wrap(err)
	}
	defer rows.Close()

	var out []PreviewRow
	for rows.Next() {
		var r PreviewRow
		var createdAt int64
		if err := rows.Scan(&r.MediaID, &r.PreviewID, &createdAt); err != nil {
			return nil, Transient.Wrap(err)
		}
		out = append(out, r)
	}
	return out, Transient.Wrap(rows.Err())
}

func (p *Postgres) GetFaces(ctx context.Context, userID uuid.UUID) ([]FaceRepresentative, []ClusterRepresentative, error) {
	faceRows, err := p.pool.Query(ctx, `
		SELECT DISTINCT ON (f.id) f.id, f.user_id, f.name, f.featured_photo_id,
			mf.id, mf.media_id, mf.bbox
		FROM face f
		JOIN cluster c ON c.face_id = f.id
		JOIN media_face mf ON mf.cluster_id = c.id
		WHERE f.user_id = $1
		ORDER BY f.id, mf.id DESC`,
		userID)
	if err != nil {
		return nil, nil, Transient.Wrap(err)
	}
	defer faceRows.Close()

	var faces []FaceRepresentative
	for faceRows.Next() {
		var fr FaceRepresentative
		var bbox []float64
		if err := faceRows.Scan(&fr.Face.ID, &fr.Face.UserID, &fr.Face.Name, &fr.Face.FeaturedPhotoID,
			&fr.MediaFaceID, &fr.MediaID, &bbox); err != nil {
			return nil, nil, Transient.Wrap(err)
		}
		copy(fr.BBox[:], bbox)
		faces = append(faces, fr)
	}
	if err := faceRows.Err(); err != nil {
		return nil, nil, Transient.Wrap(err)
	}

	clusterRows, err := p.pool.Query(ctx, `
		SELECT DISTINCT ON (c.id) c.id, c.user_id, mf.id, mf.media_id, mf.bbox
		FROM cluster c
		JOIN media_face mf ON mf.cluster_id = c.id
		WHERE c.user_id = $1 AND c.face_id IS NULL
		ORDER BY c.id, mf.id DESC`,
		userID)
	if err != nil {
		return nil, nil, Transient.Wrap(err)
	}
	defer clusterRows.Close()

	var clusters []ClusterRepresentative
	for clusterRows.Next() {
		var cr ClusterRepresentative
		var bbox []float64
		if err := clusterRows.Scan(&cr.Cluster.ID, &cr.Cluster.UserID, &cr.MediaFaceID, &cr.MediaID, &bbox); err != nil {
			return nil, nil, Transient.Wrap(err)
		}
		copy(cr.BBox[:], bbox)
		clusters = append(clusters, cr)
	}
	return faces, clusters, Transient.Wrap(clusterRows.Err())
}

func (p *Postgres) AddLog(ctx context.Context, userID uuid.UUID, level LogLevel, date int64, message string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO log (id, user_id, level, date, message) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), userID, string(level), date, message)
	if err != nil {
		return Transient.Wrap(err)
	}
	return nil
}

func (p *Postgres) GetLogs(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Log, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, level, date, message FROM log
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, Transient.Wrap(err)
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		var l Log
		var level string
		if err := rows.Scan(&l.ID, &l.UserID, &level, &l.Date, &l.Message); err != nil {
			return nil, Transient.Wrap(err)
		}
		l.Level = LogLevel(level)
		out = append(out, l)
	}
	return out, Transient.Wrap(rows.Err())
}

// InsertFace creates a Face row and, in the same transaction, re-points the
// cluster of each media id's most recent detection at it. A partial
// failure rolls back the whole operation, so no orphan Face row can be
// observed (supplemented behavior, see SPEC_FULL.md).
func (p *Postgres) InsertFace(ctx context.Context, userID uuid.UUID, mediaIDs []uuid.UUID, name string) (Face, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Face{}, Transient.Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	face := Face{ID: uuid.New(), UserID: userID, Name: name}
	if _, err := tx.Exec(ctx,
		`INSERT INTO face (id, user_id, name) VALUES ($1, $2, $3)`,
		face.ID, face.UserID, face.Name); err != nil {
		return Face{}, Transient.Wrap(err)
	}

	for _, mediaID := range mediaIDs {
		var clusterID uuid.UUID
		row := tx.QueryRow(ctx, `
			SELECT mf.cluster_id FROM media_face mf
			WHERE mf.media_id = $1
			ORDER BY mf.id DESC
			LIMIT 1`, mediaID)
		if err := row.Scan(&clusterID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Face{}, NotFound.New("no face detection for media %s", mediaID)
			}
			return Face{}, Transient.Wrap(err)
		}
		if _, err := tx.Exec(ctx, `UPDATE cluster SET face_id = $1 WHERE id = $2`, face.ID, clusterID); err != nil {
			return Face{}, Transient.Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Face{}, Transient.Wrap(err)
	}
	return face, nil
}

func (p *Postgres) DeleteMedia(ctx context.Context, userID, mediaID uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE media SET deleted = true, last_modified_at = $1
		WHERE id = $2 AND user_id = $3`,
		nowMillis(), mediaID, userID)
	if err != nil {
		return Transient.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound.New("media %s", mediaID)
	}
	return nil
}

var _ Catalog = (*Postgres)(nil)
