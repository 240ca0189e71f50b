package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/crypto"
)

// CredentialRepository implements credential persistence on PostgreSQL.
// Access tokens pass through the token cipher on the way in and out; the
// database only ever sees sealed values.
type CredentialRepository struct {
	db     *sql.DB
	cipher *crypto.TokenCipher
}

func NewCredentialRepository(db *sql.DB, cipher *crypto.TokenCipher) *CredentialRepository {
	return &CredentialRepository{db: db, cipher: cipher}
}

func (r *CredentialRepository) Upsert(ctx context.Context, cred *model.SocialCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	sealed, err := r.cipher.Encrypt(cred.AccessToken)
	if err != nil {
		return err
	}
	q := `INSERT INTO social_credentials (owner_id, platform, access_token, expires_at, metadata, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7)
		  ON CONFLICT (owner_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			expires_at=EXCLUDED.expires_at,
			metadata=EXCLUDED.metadata,
			updated_at=EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, q, cred.OwnerID, cred.Platform, sealed, cred.ExpiresAt, nullRaw(cred.Metadata), cred.CreatedAt, cred.UpdatedAt)
	return err
}

func (r *CredentialRepository) Get(ctx context.Context, platform model.Platform, ownerID string) (*model.SocialCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, owner_id, platform, access_token, expires_at, metadata, created_at, updated_at FROM social_credentials WHERE owner_id=$1 AND platform=$2`, ownerID, platform)
	cred, err := r.scan(row)
	if err == sql.ErrNoRows {
		// Not connected is a result, not an error.
		return nil, nil
	}
	return cred, err
}

func (r *CredentialRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.SocialCredential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, owner_id, platform, access_token, expires_at, metadata, created_at, updated_at FROM social_credentials WHERE owner_id=$1 ORDER BY platform`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.SocialCredential
	for rows.Next() {
		cred, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cred)
	}
	return list, rows.Err()
}

func (r *CredentialRepository) Delete(ctx context.Context, id int64, ownerID string) error {
	row := r.db.QueryRowContext(ctx, `SELECT owner_id FROM social_credentials WHERE id=$1`, id)
	var owner string
	if err := row.Scan(&owner); err != nil {
		if err == sql.ErrNoRows {
			return model.ErrNotFound
		}
		return err
	}
	if owner != ownerID {
		return model.ErrNotOwner
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM social_credentials WHERE id=$1 AND owner_id=$2`, id, ownerID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CredentialRepository) scan(row rowScanner) (*model.SocialCredential, error) {
	cred := &model.SocialCredential{}
	var sealed string
	var metadata sql.NullString
	if err := row.Scan(&cred.ID, &cred.OwnerID, &cred.Platform, &sealed, &cred.ExpiresAt, &metadata, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		return nil, err
	}
	token, err := r.cipher.Decrypt(sealed)
	if err != nil {
		return nil, err
	}
	cred.AccessToken = token
	if metadata.Valid {
		cred.Metadata = []byte(metadata.String)
	}
	return cred, nil
}

func nullRaw(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
