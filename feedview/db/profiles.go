package db

import (
	"database/sql"

	"quadrangle.org/core/models"
)

// PutProfile upserts one resolved author profile, unknowns included.
func PutProfile(e Execer, p models.Profile) error {
	var unknown int
	if p.Unknown() {
		unknown = 1
	}
	_, err := e.Exec(`
		insert into profiles (id, display_name, avatar_url, unknown)
		values (?, ?, ?, ?)
		on conflict(id) do update set
			display_name=excluded.display_name,
			avatar_url=excluded.avatar_url,
			unknown=excluded.unknown,
			resolved_at=strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
	`, p.ID, p.DisplayName, p.AvatarURL, unknown)
	return err
}

// GetProfile returns a persisted profile, or false when the author has
// never been resolved.
func GetProfile(e Execer, id string) (models.Profile, bool, error) {
	var (
		displayName, avatarURL string
		unknown                int
	)
	err := e.QueryRow(
		`select display_name, avatar_url, unknown from profiles where id = ?`, id,
	).Scan(&displayName, &avatarURL, &unknown)
	if err == sql.ErrNoRows {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}

	if unknown == 1 {
		return models.UnknownProfile(id), true, nil
	}
	return models.Profile{ID: id, DisplayName: displayName, AvatarURL: avatarURL}, true, nil
}
