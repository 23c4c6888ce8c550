package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/store"
)

type buttonsRepo struct {
	q querier
}

const buttonColumns = `id, label, icon, action_type, action_payload, background, icon_color`

func (r *buttonsRepo) ListButtons(ctx context.Context, profileID string) ([]domain.Button, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+buttonColumns+`
		FROM buttons
		WHERE profile_id = ?
		ORDER BY order_index ASC, id ASC;
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buttons := make([]domain.Button, 0)
	for rows.Next() {
		b, err := scanButton(rows)
		if err != nil {
			return nil, err
		}
		buttons = append(buttons, b)
	}
	return buttons, rows.Err()
}

func (r *buttonsRepo) GetButton(ctx context.Context, buttonID, profileID string) (domain.Button, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+buttonColumns+`
		FROM buttons
		WHERE id = ? AND profile_id = ?;
	`, buttonID, profileID)

	b, err := scanButton(row)
	if err != nil {
		return domain.Button{}, mapNotFound(err)
	}
	return b, nil
}

func (r *buttonsRepo) CreateButton(ctx context.Context, b domain.Button, profileID string) error {
	payload, err := encodePayload(b.ActionPayload)
	if err != nil {
		return err
	}

	now := formatTime(time.Now())
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO buttons (
			id, profile_id, label, icon, action_type, action_payload,
			background, icon_color, order_index, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(order_index), -1) + 1 FROM buttons WHERE profile_id = ?),
			?, ?);
	`,
		b.ID, profileID, b.Label, b.Icon, string(b.ActionType), payload,
		mapOptionalString(b.Background), mapOptionalString(b.IconColor),
		profileID, now, now,
	)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *buttonsRepo) UpdateButton(ctx context.Context, b domain.Button, profileID string) error {
	payload, err := encodePayload(b.ActionPayload)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE buttons
		SET label = ?, icon = ?, action_type = ?, action_payload = ?,
		    background = ?, icon_color = ?, updated_at = ?
		WHERE id = ? AND profile_id = ?;
	`,
		b.Label, b.Icon, string(b.ActionType), payload,
		mapOptionalString(b.Background), mapOptionalString(b.IconColor),
		formatTime(time.Now()), b.ID, profileID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *buttonsRepo) DeleteButton(ctx context.Context, buttonID, profileID string) error {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM buttons WHERE id = ? AND profile_id = ?;
	`, buttonID, profileID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *buttonsRepo) ReorderButtons(ctx context.Context, buttonIDs []string, profileID string) error {
	// Listed ids get positions 0..n-1; unlisted buttons are pushed after them
	// keeping their previous relative order. Callers run this inside WithTx so
	// the two passes stay atomic.
	for idx, id := range buttonIDs {
		if _, err := r.q.ExecContext(ctx, `
			UPDATE buttons SET order_index = ? WHERE id = ? AND profile_id = ?;
		`, idx, id, profileID); err != nil {
			return err
		}
	}

	if len(buttonIDs) == 0 {
		return nil
	}

	// Remaining buttons still hold their pre-reorder order_index, which keeps
	// their relative order intact; renumber them after the listed block.
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(buttonIDs)), ",")
	args := make([]any, 0, len(buttonIDs)+1)
	args = append(args, profileID)
	for _, id := range buttonIDs {
		args = append(args, id)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id FROM buttons
		WHERE profile_id = ? AND id NOT IN (`+placeholders+`)
		ORDER BY order_index ASC, id ASC;
	`, args...)
	if err != nil {
		return err
	}

	remaining := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		remaining = append(remaining, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for idx, id := range remaining {
		if _, err := r.q.ExecContext(ctx, `
			UPDATE buttons SET order_index = ? WHERE id = ? AND profile_id = ?;
		`, len(buttonIDs)+idx, id, profileID); err != nil {
			return err
		}
	}
	return nil
}
